// Package playbacksdk connects to the Web Playback SDK bridge over a
// websocket. The bridge hosts the Spotify player; this side registers the
// device, answers credential requests and relays device notifications.
package playbacksdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

const (
	DefaultURL = "ws://127.0.0.1:8765/sdk"

	writeTimeout     = 5 * time.Second
	handshakeTimeout = 10 * time.Second
	eventBuffer      = 32
)

// Config controls the bridge connection.
type Config struct {
	URL         string
	MaxRetries  int
	BaseBackoff time.Duration
}

// Bridge implements ports.PlaybackSDK.
type Bridge struct {
	cfg    Config
	dialer *websocket.Dialer
	log    *zap.Logger
}

// compile-time interface assertion
var _ ports.PlaybackSDK = (*Bridge)(nil)

func NewBridge(cfg Config, log *zap.Logger) *Bridge {
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = DefaultURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		log: log,
	}
}

// Connect dials the bridge and registers the device. The returned channel
// delivers notifications in arrival order and closes when the connection ends
// or ctx is canceled.
func (b *Bridge) Connect(ctx context.Context, reg ports.DeviceRegistration) (<-chan domain.DeviceEvent, error) {
	if reg.Token == nil {
		return nil, errors.New("playbacksdk: registration needs a token callback")
	}

	conn, err := b.dialWithRetry(ctx)
	if err != nil {
		return nil, err
	}

	s := &session{
		conn:   conn,
		reg:    reg,
		log:    b.log,
		events: make(chan domain.DeviceEvent, eventBuffer),
		done:   make(chan struct{}),
	}

	if err := s.writeJSON(registerMessage{Type: typeRegister, Name: reg.Name, Volume: reg.Volume}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("playbacksdk: register: %w", err)
	}
	b.log.Info("playbacksdk: device registered", zap.String("name", reg.Name), zap.String("url", b.cfg.URL))

	go s.readLoop(ctx)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			_ = s.conn.Close()
		case <-s.done:
		}
	}()

	return s.events, nil
}

type session struct {
	conn *websocket.Conn
	reg  ports.DeviceRegistration
	log  *zap.Logger

	writeMu sync.Mutex
	events  chan domain.DeviceEvent
	done    chan struct{}
	pending sync.WaitGroup
}

func (s *session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

func (s *session) readLoop(ctx context.Context) {
	defer func() {
		close(s.done)
		s.pending.Wait()
		close(s.events)
		_ = s.conn.Close()
	}()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				s.log.Warn("playbacksdk: connection lost", zap.Error(err))
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Debug("playbacksdk: skipping malformed message", zap.Error(err))
			continue
		}
		s.dispatch(ctx, msg)
	}
}

func (s *session) dispatch(ctx context.Context, msg inboundMessage) {
	switch msg.Type {
	case typeReady:
		s.emit(ctx, domain.DeviceEvent{Kind: domain.DeviceEventReady, DeviceID: msg.DeviceID})
	case typeNotReady:
		s.emit(ctx, domain.DeviceEvent{Kind: domain.DeviceEventNotReady, DeviceID: msg.DeviceID})
	case typeStateChanged:
		track, err := decodeTrack(msg.State)
		if err != nil {
			s.log.Debug("playbacksdk: unreadable player state", zap.Error(err))
			return
		}
		s.emit(ctx, domain.DeviceEvent{Kind: domain.DeviceEventStateChanged, Track: track})
	case typeTokenRequest:
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			s.answerToken(ctx, msg.RequestID)
		}()
	case typeBridgeError, typeAccountError, typeAuthError, typeInitError, typePlaybackError:
		s.log.Warn("playbacksdk: player reported an error",
			zap.String("type", msg.Type),
			zap.String("message", msg.Message),
		)
	default:
		s.log.Debug("playbacksdk: unknown message type", zap.String("type", msg.Type))
	}
}

// emit blocks so notifications are never dropped or reordered.
func (s *session) emit(ctx context.Context, ev domain.DeviceEvent) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

func (s *session) answerToken(ctx context.Context, requestID string) {
	reply := tokenMessage{Type: typeToken, RequestID: requestID}
	token, err := s.reg.Token(ctx)
	if err != nil {
		s.log.Warn("playbacksdk: credential callback failed", zap.Error(err))
		reply.Error = "token unavailable"
	} else {
		reply.AccessToken = token
	}
	if err := s.writeJSON(reply); err != nil {
		s.log.Warn("playbacksdk: failed to send token", zap.String("request_id", requestID), zap.Error(err))
	}
}

package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
	"github.com/ewilliams-labs/groovi/internal/worker"
)

const (
	msgPlayerNotReady = "Spotify player is not ready. Make sure you are using a Premium account."
	msgPlayerBusy     = "Playback is busy. Please try again."

	DefaultPlayerName   = "Mood Recommender Player"
	DefaultPlayerVolume = 0.5
)

// CommandQueue accepts playback commands for asynchronous delivery.
type CommandQueue interface {
	Submit(cmd worker.Command) error
}

// DeviceConfig describes the device registered with the playback SDK.
type DeviceConfig struct {
	Name   string
	Volume float64
}

// DeviceAdapter tracks the in-process playback device and issues play commands
// to it. Events are applied in arrival order on a single goroutine.
type DeviceAdapter struct {
	sdk     ports.PlaybackSDK
	queue   CommandQueue
	token   ports.TokenFunc
	session *Session
	log     *zap.Logger
	cfg     DeviceConfig

	once sync.Once
	done chan struct{}

	mu       sync.Mutex
	state    domain.DeviceState
	deviceID string
}

func NewDeviceAdapter(
	sdk ports.PlaybackSDK,
	queue CommandQueue,
	token ports.TokenFunc,
	session *Session,
	log *zap.Logger,
	cfg DeviceConfig,
) *DeviceAdapter {
	if cfg.Name == "" {
		cfg.Name = DefaultPlayerName
	}
	if cfg.Volume <= 0 || cfg.Volume > 1 {
		cfg.Volume = DefaultPlayerVolume
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DeviceAdapter{
		sdk:     sdk,
		queue:   queue,
		token:   token,
		session: session,
		log:     log,
		cfg:     cfg,
		done:    make(chan struct{}),
		state:   domain.DeviceUninitialized,
	}
}

// Init registers the device once per process. It returns immediately; the
// outcome is observed only through SDK events.
func (d *DeviceAdapter) Init(ctx context.Context) {
	d.once.Do(func() {
		d.mu.Lock()
		d.state = domain.DeviceConnecting
		d.mu.Unlock()
		d.session.setDevice(domain.DeviceConnecting, "")

		go d.run(ctx)
	})
}

// Done is closed once the SDK connection has ended or failed.
func (d *DeviceAdapter) Done() <-chan struct{} {
	return d.done
}

func (d *DeviceAdapter) run(ctx context.Context) {
	defer close(d.done)

	events, err := d.sdk.Connect(ctx, ports.DeviceRegistration{
		Name:   d.cfg.Name,
		Volume: d.cfg.Volume,
		Token:  d.token,
	})
	if err != nil {
		d.log.Error("playback: failed to connect player", zap.Error(err))
		return
	}

	for ev := range events {
		d.HandleEvent(ev)
	}

	d.log.Info("playback: player connection closed")
	d.mu.Lock()
	wasReady := d.state == domain.DeviceReady
	if wasReady {
		d.state = domain.DeviceOffline
	}
	id := d.deviceID
	d.mu.Unlock()
	if wasReady {
		d.session.setDevice(domain.DeviceOffline, id)
	}
}

// HandleEvent applies one SDK notification.
func (d *DeviceAdapter) HandleEvent(ev domain.DeviceEvent) {
	switch ev.Kind {
	case domain.DeviceEventReady:
		d.mu.Lock()
		d.state = domain.DeviceReady
		d.deviceID = ev.DeviceID
		d.mu.Unlock()
		d.log.Info("playback: player ready", zap.String("device_id", ev.DeviceID))
		d.session.setDevice(domain.DeviceReady, ev.DeviceID)

	case domain.DeviceEventNotReady:
		d.mu.Lock()
		d.state = domain.DeviceOffline
		id := d.deviceID
		d.mu.Unlock()
		d.log.Warn("playback: player went offline", zap.String("device_id", ev.DeviceID))
		d.session.setDevice(domain.DeviceOffline, id)

	case domain.DeviceEventStateChanged:
		if ev.Track == nil {
			return
		}
		d.mu.Lock()
		known := d.deviceID != ""
		d.mu.Unlock()
		if !known {
			return
		}
		track := *ev.Track
		track.Artists = append([]string(nil), ev.Track.Artists...)
		d.session.setNowPlaying(track)

	default:
		d.log.Debug("playback: ignoring unknown event", zap.String("kind", string(ev.Kind)))
	}
}

// Play queues a play command for uri on the registered device. The command is
// not awaited.
func (d *DeviceAdapter) Play(ctx context.Context, uri string) error {
	d.mu.Lock()
	ready := d.state == domain.DeviceReady && d.deviceID != ""
	id := d.deviceID
	d.mu.Unlock()

	if !ready {
		d.session.reportError(msgPlayerNotReady)
		return domain.NewError(domain.KindDeviceNotReady, msgPlayerNotReady, nil)
	}

	cmd := worker.NewCommand(id, uri)
	if err := d.queue.Submit(cmd); err != nil {
		d.log.Warn("playback: failed to queue play command", zap.String("uri", uri), zap.Error(err))
		msg := msgPlayerBusy
		if errors.Is(err, worker.ErrStopped) {
			msg = msgPlayerNotReady
		}
		return domain.NewError(domain.KindDeviceNotReady, msg, err)
	}
	d.log.Info("playback: play command queued",
		zap.String("command_id", cmd.ID),
		zap.String("uri", uri),
	)
	return nil
}

// State returns the device state and id.
func (d *DeviceAdapter) State() (domain.DeviceState, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.deviceID
}

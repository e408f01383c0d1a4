package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

const (
	msgMicDenied         = "Microphone access denied. Please allow microphone access and try again."
	msgTranscribeFailed  = "Failed to transcribe audio"
	defaultChunkSize     = 4096
	defaultDrainTimeout  = 3 * time.Second
	defaultCaptureFormat = "audio/webm"
)

// CaptureConfig tunes the capture pump.
type CaptureConfig struct {
	ChunkSize    int
	DrainTimeout time.Duration
}

// CaptureController drives Idle -> Recording -> Transcribing -> Idle.
type CaptureController struct {
	mic         ports.Microphone
	transcriber ports.Transcriber
	session     *Session
	log         *zap.Logger
	cfg         CaptureConfig

	mu       sync.Mutex
	state    domain.RecordingState
	starting bool
	current  *recording
}

// recording is the single live capture. Chunks are owned here until they are
// moved into the transcription payload.
type recording struct {
	id     string
	stream ports.CaptureStream
	done   chan struct{}

	mu      sync.Mutex
	chunks  [][]byte
	readErr error
}

func NewCaptureController(
	mic ports.Microphone,
	transcriber ports.Transcriber,
	session *Session,
	log *zap.Logger,
	cfg CaptureConfig,
) *CaptureController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CaptureController{
		mic:         mic,
		transcriber: transcriber,
		session:     session,
		log:         log,
		cfg:         cfg,
		state:       domain.RecordingIdle,
	}
}

// State returns the current capture state.
func (c *CaptureController) State() domain.RecordingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartRecording requests the microphone and begins collecting chunks.
// It is a no-op unless the controller is idle.
func (c *CaptureController) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.RecordingIdle || c.starting {
		c.mu.Unlock()
		return nil
	}
	c.starting = true
	c.mu.Unlock()

	stream, err := c.mic.Open(ctx)
	if err != nil {
		c.mu.Lock()
		c.starting = false
		c.mu.Unlock()

		c.log.Warn("capture: microphone access denied", zap.Error(err))
		c.session.reportError(msgMicDenied)
		return domain.NewError(domain.KindPermission, msgMicDenied, err)
	}

	rec := &recording{
		id:     uuid.NewString(),
		stream: stream,
		done:   make(chan struct{}),
	}
	go pumpChunks(rec, c.cfg.ChunkSize)

	c.mu.Lock()
	c.current = rec
	c.state = domain.RecordingActive
	c.starting = false
	c.mu.Unlock()

	c.session.setRecording(domain.RecordingActive)
	c.log.Info("capture: recording started", zap.String("recording_id", rec.id))
	return nil
}

// StopRecording stops the device, releases it, and transcribes what was
// captured. The transcript lands in the session input; it is not submitted.
// It is a no-op unless a recording is active.
func (c *CaptureController) StopRecording(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state != domain.RecordingActive || c.current == nil {
		c.mu.Unlock()
		return "", nil
	}
	rec := c.current
	c.current = nil
	c.state = domain.RecordingTranscribing
	c.mu.Unlock()

	c.session.setRecording(domain.RecordingTranscribing)

	payload := c.drain(rec)
	c.log.Info("capture: recording stopped",
		zap.String("recording_id", rec.id),
		zap.Int("bytes", len(payload.Data)),
	)

	transcript, err := c.transcriber.Transcribe(ctx, payload)

	c.mu.Lock()
	c.state = domain.RecordingIdle
	c.mu.Unlock()
	c.session.setRecording(domain.RecordingIdle)

	if err != nil {
		c.log.Warn("capture: transcription failed", zap.String("recording_id", rec.id), zap.Error(err))
		c.session.reportError(domain.UserMessage(err, msgTranscribeFailed))
		return "", err
	}

	c.session.deliverTranscript(transcript)
	return transcript, nil
}

// drain stops the device, waits for the final chunk, and always releases the
// hardware before handing back the assembled payload.
func (c *CaptureController) drain(rec *recording) domain.AudioPayload {
	if err := rec.stream.Stop(); err != nil {
		c.log.Warn("capture: failed to stop device cleanly", zap.String("recording_id", rec.id), zap.Error(err))
	}

	timer := time.NewTimer(c.cfg.DrainTimeout)
	select {
	case <-rec.done:
		timer.Stop()
	case <-timer.C:
		c.log.Warn("capture: device did not confirm stop, releasing", zap.String("recording_id", rec.id))
	}

	if err := rec.stream.Release(); err != nil {
		c.log.Warn("capture: failed to release device", zap.String("recording_id", rec.id), zap.Error(err))
	}
	<-rec.done

	if err := rec.err(); err != nil {
		c.log.Warn("capture: audio stream error", zap.String("recording_id", rec.id), zap.Error(err))
	}

	format := rec.stream.Format()
	if format == "" {
		format = defaultCaptureFormat
	}
	return domain.AudioPayload{
		Data:     rec.take(),
		Format:   format,
		Filename: "recording" + extensionFor(format),
	}
}

func pumpChunks(rec *recording, chunkSize int) {
	defer close(rec.done)

	buf := make([]byte, chunkSize)
	for {
		n, err := rec.stream.Read(buf)
		if n > 0 {
			rec.append(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				rec.setErr(err)
			}
			return
		}
	}
}

func (r *recording) append(chunk []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, append([]byte(nil), chunk...))
}

// take concatenates the chunks in arrival order and drops them.
func (r *recording) take() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	data := bytes.Join(r.chunks, nil)
	r.chunks = nil
	return data
}

func (r *recording) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readErr = err
}

func (r *recording) err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readErr
}

func extensionFor(format string) string {
	switch format {
	case "audio/ogg":
		return ".ogg"
	case "audio/wav":
		return ".wav"
	case "audio/mpeg":
		return ".mp3"
	case "audio/mp4":
		return ".m4a"
	default:
		return ".webm"
	}
}

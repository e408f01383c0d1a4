// Package microphone captures microphone audio through an ffmpeg child
// process that encodes Opus into a WebM container on stdout.
package microphone

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

const (
	defaultCommand     = "ffmpeg"
	defaultInputFormat = "pulse"
	defaultInputDevice = "default"
	outputFormat       = "audio/webm"

	startupProbe = 250 * time.Millisecond
	exitGrace    = 1200 * time.Millisecond
)

// Config selects the ffmpeg binary and capture device.
type Config struct {
	Command     string
	InputFormat string
	InputDevice string
}

// FFMPEG implements ports.Microphone.
type FFMPEG struct {
	cfg Config
}

// compile-time interface assertion
var _ ports.Microphone = (*FFMPEG)(nil)

func NewFFMPEG(cfg Config) *FFMPEG {
	if cfg.Command == "" {
		cfg.Command = defaultCommand
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = defaultInputFormat
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = defaultInputDevice
	}
	return &FFMPEG{cfg: cfg}
}

func (f *FFMPEG) args() []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", f.cfg.InputFormat,
		"-i", f.cfg.InputDevice,
		"-ac", "1",
		"-c:a", "libopus",
		"-f", "webm",
		"-",
	}
}

// Open starts ffmpeg. ctx bounds only the startup probe: the capture outlives
// the request that opened it and ends with Stop or Release. A process that
// exits during the probe window is treated as denied access.
func (f *FFMPEG) Open(ctx context.Context) (ports.CaptureStream, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("microphone: create pipe: %w", err)
	}

	// #nosec G204 -- command and device come from local configuration
	cmd := exec.Command(f.cfg.Command, f.args()...)
	var stderr lockedBuffer
	cmd.Stdout = pw
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("microphone: start %s: %w", f.cfg.Command, err)
	}
	// the child holds its own copy; EOF arrives when it exits
	_ = pw.Close()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		_ = pr.Close()
		if err != nil {
			return nil, fmt.Errorf("microphone: ffmpeg exited before capture started: %w: %s", err, stderr.Trimmed())
		}
		return nil, errors.New("microphone: ffmpeg exited before capture started")
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-waitErr
		_ = pr.Close()
		return nil, fmt.Errorf("microphone: open canceled: %w", ctx.Err())
	case <-time.After(startupProbe):
	}

	return &stream{
		stdout:  pr,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

type stream struct {
	stdout  *os.File
	stderr  *lockedBuffer
	process *os.Process
	waitErr <-chan error

	stopOnce    sync.Once
	releaseOnce sync.Once
	releaseErr  error
}

func (s *stream) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *stream) Format() string {
	return outputFormat
}

// Stop interrupts ffmpeg so it writes the container trailer and exits.
func (s *stream) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		if sigErr := s.process.Signal(os.Interrupt); sigErr != nil && !errors.Is(sigErr, os.ErrProcessDone) {
			err = fmt.Errorf("microphone: interrupt ffmpeg: %w", sigErr)
		}
	})
	return err
}

// Release waits briefly for ffmpeg to exit, kills it otherwise, and closes
// the pipe.
func (s *stream) Release() error {
	s.releaseOnce.Do(func() {
		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.releaseErr = normalizeExitErr(err)
			}
		case <-time.After(exitGrace):
			_ = s.process.Kill()
			if err, ok := <-s.waitErr; ok {
				s.releaseErr = normalizeExitErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && s.releaseErr == nil {
			s.releaseErr = closeErr
		}
		if s.releaseErr != nil && s.stderr.Len() > 0 {
			s.releaseErr = fmt.Errorf("%w: %s", s.releaseErr, s.stderr.Trimmed())
		}
	})
	return s.releaseErr
}

// normalizeExitErr ignores non-zero exits; ffmpeg reports one when interrupted.
func normalizeExitErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// lockedBuffer guards stderr, which the exec copier writes concurrently.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *lockedBuffer) Trimmed() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}

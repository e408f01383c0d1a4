package ports

import (
	"context"
	"io"
	"time"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
)

// CaptureStream is a granted microphone stream. Read yields encoded audio
// chunks until the device has flushed after Stop.
type CaptureStream interface {
	io.Reader
	// Stop asks the device to stop recording and flush the final chunk.
	Stop() error
	// Release frees the underlying hardware. Safe to call more than once.
	Release() error
	// Format is the container MIME type of the produced audio.
	Format() string
}

// Microphone requests microphone access. Open blocks until access is granted
// or denied.
type Microphone interface {
	Open(ctx context.Context) (CaptureStream, error)
}

// FileSelection is the file-picker state the intake reads from and resets.
type FileSelection interface {
	// Selected returns the chosen file or nil when nothing is selected.
	Selected() *domain.AudioFile
	// Clear resets the selection so the same file can be chosen again.
	Clear() error
}

// DurationProbe estimates how long an audio file plays.
type DurationProbe interface {
	Duration(file domain.AudioFile) (time.Duration, error)
}

// Package audioprobe estimates playback length of uploaded audio files.
package audioprobe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/go-mp3"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

// decoded PCM is 16-bit stereo
const bytesPerFrame = 4

var ErrUnsupported = errors.New("audioprobe: unsupported format")

// MP3 decodes MPEG audio to measure its duration.
type MP3 struct{}

// compile-time interface assertion
var _ ports.DurationProbe = MP3{}

// Duration decodes the whole file; go-mp3 only knows the length up front for
// seekable sources with a parsed frame table.
func (MP3) Duration(file domain.AudioFile) (time.Duration, error) {
	if file.ContentType != "audio/mpeg" {
		return 0, ErrUnsupported
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(file.Data))
	if err != nil {
		return 0, fmt.Errorf("audioprobe: decode header: %w", err)
	}

	if n := decoder.Length(); n > 0 {
		return pcmDuration(n, decoder.SampleRate()), nil
	}

	total, err := io.Copy(io.Discard, decoder)
	if err != nil {
		return 0, fmt.Errorf("audioprobe: decode frames: %w", err)
	}
	if total == 0 {
		return 0, fmt.Errorf("audioprobe: no samples")
	}
	return pcmDuration(total, decoder.SampleRate()), nil
}

func pcmDuration(pcmBytes int64, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	frames := pcmBytes / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

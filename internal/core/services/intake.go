package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

const (
	// MaxUploadBytes is the largest audio file the intake accepts.
	MaxUploadBytes = 10 << 20

	msgNoFile      = "No audio file selected."
	msgInvalidType = "Invalid file type. Please upload mp3, wav, webm, ogg, or m4a files."
	msgTooLarge    = "File too large. Maximum size is 10MB."
	msgUploadFail  = "Failed to upload audio"

	// estimated bytes per second for formats the probe cannot decode
	fallbackByteRate = 16000 * 2
)

var allowedAudioTypes = map[string]bool{
	"audio/mpeg": true,
	"audio/wav":  true,
	"audio/webm": true,
	"audio/ogg":  true,
	"audio/mp4":  true,
}

// Intake validates a user-selected audio file and sends it for transcription.
type Intake struct {
	transcriber ports.Transcriber
	probe       ports.DurationProbe
	session     *Session
	log         *zap.Logger
}

// NewIntake constructs an Intake. probe may be nil.
func NewIntake(transcriber ports.Transcriber, probe ports.DurationProbe, session *Session, log *zap.Logger) *Intake {
	if log == nil {
		log = zap.NewNop()
	}
	return &Intake{
		transcriber: transcriber,
		probe:       probe,
		session:     session,
		log:         log,
	}
}

// Submit validates the selected file, uploads it, and clears the selection
// after the attempt. Validation failures never reach the network.
func (in *Intake) Submit(ctx context.Context, sel ports.FileSelection) (string, error) {
	file := sel.Selected()
	if err := validateAudioFile(file); err != nil {
		in.session.reportError(domain.UserMessage(err, msgNoFile))
		return "", err
	}

	in.log.Info("intake: uploading audio file",
		zap.String("name", file.Name),
		zap.String("content_type", file.ContentType),
		zap.Int64("size", file.Size),
		zap.Duration("estimated_duration", in.estimateDuration(*file)),
	)

	in.session.setUploading(true)
	transcript, err := in.transcriber.Transcribe(ctx, file.Payload())
	in.session.setUploading(false)

	if clearErr := sel.Clear(); clearErr != nil {
		in.log.Warn("intake: failed to reset file selection", zap.Error(clearErr))
	}

	if err != nil {
		in.log.Warn("intake: transcription failed", zap.String("name", file.Name), zap.Error(err))
		in.session.reportError(domain.UserMessage(err, msgUploadFail))
		return "", err
	}

	in.session.deliverTranscript(transcript)
	return transcript, nil
}

func validateAudioFile(file *domain.AudioFile) error {
	switch {
	case file == nil:
		return domain.NewError(domain.KindValidation, msgNoFile, nil)
	case !allowedAudioTypes[file.ContentType]:
		return domain.NewError(domain.KindValidation, msgInvalidType, nil)
	case file.Size > MaxUploadBytes:
		return domain.NewError(domain.KindValidation, msgTooLarge, nil)
	}
	return nil
}

func (in *Intake) estimateDuration(file domain.AudioFile) time.Duration {
	if in.probe != nil && file.ContentType == "audio/mpeg" {
		d, err := in.probe.Duration(file)
		if err == nil {
			return d
		}
		in.log.Debug("intake: duration probe failed", zap.Error(err))
	}
	return time.Duration(file.Size) * time.Second / fallbackByteRate
}

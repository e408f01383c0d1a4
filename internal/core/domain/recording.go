package domain

// RecordingState models the microphone capture lifecycle.
type RecordingState string

const (
	RecordingIdle         RecordingState = "idle"
	RecordingActive       RecordingState = "recording"
	RecordingTranscribing RecordingState = "transcribing"
)

// AudioPayload is an assembled audio buffer ready for transcription.
type AudioPayload struct {
	Data     []byte
	Format   string // MIME type, e.g. "audio/webm"
	Filename string
}

// AudioFile is a user-supplied audio file awaiting intake validation.
type AudioFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Payload converts the file into the transcription payload contract.
func (f AudioFile) Payload() AudioPayload {
	return AudioPayload{Data: f.Data, Format: f.ContentType, Filename: f.Name}
}

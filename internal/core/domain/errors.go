package domain

import "errors"

// ErrorKind classifies failures surfaced to the user.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindTransport      ErrorKind = "transport"
	KindEmptyResult    ErrorKind = "empty_result"
	KindDeviceNotReady ErrorKind = "device_not_ready"
	KindPermission     ErrorKind = "permission"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrTransport      = errors.New("transport failed")
	ErrEmptyResult    = errors.New("empty result")
	ErrDeviceNotReady = errors.New("player not ready")
	ErrPermission     = errors.New("permission denied")
)

var sentinels = map[ErrorKind]error{
	KindValidation:     ErrValidation,
	KindTransport:      ErrTransport,
	KindEmptyResult:    ErrEmptyResult,
	KindDeviceNotReady: ErrDeviceNotReady,
	KindPermission:     ErrPermission,
}

// Error carries a display-ready Message plus the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if s, ok := sentinels[e.Kind]; ok {
		return s.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && target == s
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// UserMessage extracts the display message from err, falling back to fallback
// when err carries none.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}

// KindOf returns the kind of err, or "" for errors outside the domain taxonomy.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

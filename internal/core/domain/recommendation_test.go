package domain

import (
	"errors"
	"testing"
)

func TestRecommendation_Empty(t *testing.T) {
	tests := []struct {
		name  string
		songs []Song
		want  bool
	}{
		{name: "nil songs", songs: nil, want: true},
		{name: "no songs", songs: []Song{}, want: true},
		{name: "repeated URIs still count", songs: []Song{{URI: "spotify:track:1"}, {URI: "spotify:track:1"}}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := (Recommendation{Songs: tc.songs}).Empty(); got != tc.want {
				t.Fatalf("Empty() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestError_IsAndMessage(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewError(KindTransport, "Can't connect to server.", cause)

	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected errors.Is(ErrTransport)")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("transport error must not match ErrValidation")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be unwrapped")
	}
	if got := UserMessage(err, "fallback"); got != "Can't connect to server." {
		t.Fatalf("unexpected message %q", got)
	}
	if got := UserMessage(errors.New("raw"), "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if KindOf(err) != KindTransport {
		t.Fatalf("unexpected kind %q", KindOf(err))
	}
}

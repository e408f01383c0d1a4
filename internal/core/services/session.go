package services

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

const (
	successFlashKey = "success"
	successFlashTTL = 3 * time.Second
)

// Session is the shared view-state every component renders into.
// Each field has exactly one writer: the orchestrator owns mood, songs and
// loading; capture owns recording; intake owns uploading; the device adapter
// owns the device fields. Error and input are written by whichever component
// finished last.
type Session struct {
	publisher ports.ViewPublisher
	flash     *cache.Cache
	flashTTL  time.Duration

	mu         sync.Mutex
	input      string
	mood       *domain.MoodAnalysis
	songs      []domain.Song
	errMsg     string
	loading    bool
	uploading  bool
	recording  domain.RecordingState
	device     domain.DeviceState
	deviceID   string
	nowPlaying *domain.Track
	version    uint64
}

// NewSession creates an idle session. publisher may be nil.
func NewSession(publisher ports.ViewPublisher) *Session {
	return &Session{
		publisher: publisher,
		flash:     cache.New(successFlashTTL, time.Minute),
		flashTTL:  successFlashTTL,
		recording: domain.RecordingIdle,
		device:    domain.DeviceUninitialized,
	}
}

// View returns a snapshot of the current state.
func (s *Session) View() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetInput replaces the text in the mood input surface.
func (s *Session) SetInput(text string) {
	s.update(func() {
		s.input = text
	})
}

func (s *Session) snapshotLocked() domain.View {
	v := domain.View{
		Input:     s.input,
		Error:     s.errMsg,
		Loading:   s.loading,
		Uploading: s.uploading,
		Recording: s.recording,
		Device:    s.device,
		DeviceID:  s.deviceID,
		Version:   s.version,
	}
	if s.mood != nil {
		m := *s.mood
		v.Mood = &m
	}
	if s.songs != nil {
		v.Songs = append([]domain.Song(nil), s.songs...)
	}
	if s.nowPlaying != nil {
		t := *s.nowPlaying
		t.Artists = append([]string(nil), s.nowPlaying.Artists...)
		v.NowPlaying = &t
	}
	_, v.Success = s.flash.Get(successFlashKey)
	return v
}

func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	v := s.snapshotLocked()
	s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.Publish(v)
	}
}

// raiseSuccess shows the success indicator; it clears itself after flashTTL.
func (s *Session) raiseSuccess() {
	ttl := s.flashTTL
	s.update(func() {
		s.flash.Set(successFlashKey, true, ttl)
	})
	time.AfterFunc(ttl, func() {
		s.update(func() {})
	})
}

func (s *Session) beginRecommendation() {
	s.update(func() {
		s.errMsg = ""
		s.flash.Delete(successFlashKey)
		s.mood = nil
		s.songs = nil
		s.loading = true
	})
}

func (s *Session) failRecommendation(message string) {
	s.update(func() {
		s.errMsg = message
		s.mood = nil
		s.songs = nil
		s.loading = false
	})
}

func (s *Session) completeRecommendation(rec domain.Recommendation) {
	mood := rec.Mood
	songs := append([]domain.Song(nil), rec.Songs...)
	s.update(func() {
		s.mood = &mood
		s.songs = songs
		s.loading = false
	})
	s.raiseSuccess()
}

func (s *Session) reportError(message string) {
	s.update(func() {
		s.errMsg = message
	})
}

func (s *Session) setRecording(state domain.RecordingState) {
	s.update(func() {
		s.recording = state
	})
}

func (s *Session) deliverTranscript(text string) {
	s.update(func() {
		s.input = text
	})
	s.raiseSuccess()
}

func (s *Session) setUploading(uploading bool) {
	s.update(func() {
		s.uploading = uploading
	})
}

func (s *Session) setDevice(state domain.DeviceState, deviceID string) {
	s.update(func() {
		s.device = state
		s.deviceID = deviceID
	})
}

func (s *Session) setNowPlaying(track domain.Track) {
	s.update(func() {
		s.nowPlaying = &track
	})
}

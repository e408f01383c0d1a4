package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
	"github.com/ewilliams-labs/groovi/internal/worker"
)

// --- Mocks ---

type fakeRecommender struct {
	mu    sync.Mutex
	rec   domain.Recommendation
	err   error
	calls []string
	// observe runs inside Recommend so tests can inspect the session mid-call.
	observe func()
}

func (f *fakeRecommender) Recommend(ctx context.Context, text string) (domain.Recommendation, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.observe != nil {
		f.observe()
	}
	if f.err != nil {
		return domain.Recommendation{}, f.err
	}
	return f.rec, nil
}

func (f *fakeRecommender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeTranscriber struct {
	mu       sync.Mutex
	text     string
	err      error
	payloads []domain.AudioPayload
	observe  func()
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, payload domain.AudioPayload) (string, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()
	if f.observe != nil {
		f.observe()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeTranscriber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

// fakeStream hands out chunks, then blocks until Stop or Release.
type fakeStream struct {
	chunks   chan []byte
	stopped  chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	released int
	format   string
}

func newFakeStream(chunks ...[]byte) *fakeStream {
	s := &fakeStream{
		chunks:  make(chan []byte, len(chunks)),
		stopped: make(chan struct{}),
		format:  "audio/webm",
	}
	for _, c := range chunks {
		s.chunks <- c
	}
	return s
}

func (s *fakeStream) Read(p []byte) (int, error) {
	select {
	case c := <-s.chunks:
		return copy(p, c), nil
	default:
	}
	select {
	case c := <-s.chunks:
		return copy(p, c), nil
	case <-s.stopped:
		return 0, io.EOF
	}
}

func (s *fakeStream) Stop() error {
	s.stopOnce.Do(func() { close(s.stopped) })
	return nil
}

func (s *fakeStream) Release() error {
	s.stopOnce.Do(func() { close(s.stopped) })
	s.mu.Lock()
	s.released++
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) Format() string { return s.format }

func (s *fakeStream) releaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

type fakeMicrophone struct {
	mu     sync.Mutex
	stream *fakeStream
	err    error
	opens  int
}

func (m *fakeMicrophone) Open(ctx context.Context) (ports.CaptureStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	if m.err != nil {
		return nil, m.err
	}
	return m.stream, nil
}

func (m *fakeMicrophone) openCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

type fakeSelection struct {
	file    *domain.AudioFile
	cleared int
}

func (s *fakeSelection) Selected() *domain.AudioFile { return s.file }

func (s *fakeSelection) Clear() error {
	s.cleared++
	s.file = nil
	return nil
}

type fakeProbe struct {
	d     time.Duration
	calls int
}

func (p *fakeProbe) Duration(domain.AudioFile) (time.Duration, error) {
	p.calls++
	return p.d, nil
}

type fakeQueue struct {
	mu   sync.Mutex
	cmds []worker.Command
	err  error
}

func (q *fakeQueue) Submit(cmd worker.Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.cmds = append(q.cmds, cmd)
	return nil
}

func (q *fakeQueue) commands() []worker.Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]worker.Command(nil), q.cmds...)
}

type fakeSDK struct {
	events chan domain.DeviceEvent
	err    error

	mu  sync.Mutex
	reg *ports.DeviceRegistration
}

func (s *fakeSDK) Connect(ctx context.Context, reg ports.DeviceRegistration) (<-chan domain.DeviceEvent, error) {
	s.mu.Lock()
	s.reg = &reg
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func (s *fakeSDK) registration() *ports.DeviceRegistration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg
}

// viewLog records every published snapshot.
type viewLog struct {
	mu    sync.Mutex
	views []domain.View
}

func (l *viewLog) Publish(v domain.View) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.views = append(l.views, v)
}

func (l *viewLog) all() []domain.View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.View(nil), l.views...)
}

func staticToken(context.Context) (string, error) { return "token", nil }

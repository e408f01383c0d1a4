package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/groovi/internal/core/domain"
	"github.com/ewilliams-labs/groovi/internal/worker"
)

func newTestDevice(sdk *fakeSDK, queue *fakeQueue) (*DeviceAdapter, *Session) {
	session := NewSession(nil)
	d := NewDeviceAdapter(sdk, queue, staticToken, session, nil, DeviceConfig{})
	return d, session
}

func TestDevice_PlayBeforeReady(t *testing.T) {
	queue := &fakeQueue{}
	d, session := newTestDevice(&fakeSDK{}, queue)

	err := d.Play(context.Background(), "spotify:track:xyz")

	require.ErrorIs(t, err, domain.ErrDeviceNotReady)
	assert.Empty(t, queue.commands())
	assert.Equal(t, msgPlayerNotReady, session.View().Error)
}

func TestDevice_PlayAfterReady(t *testing.T) {
	queue := &fakeQueue{}
	d, session := newTestDevice(&fakeSDK{}, queue)

	d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventReady, DeviceID: "abc"})
	require.NoError(t, d.Play(context.Background(), "spotify:track:xyz"))

	cmds := queue.commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "abc", cmds[0].DeviceID)
	assert.Equal(t, []string{"spotify:track:xyz"}, cmds[0].URIs)
	assert.NotEmpty(t, cmds[0].ID)

	view := session.View()
	assert.Equal(t, domain.DeviceReady, view.Device)
	assert.Equal(t, "abc", view.DeviceID)
}

func TestDevice_OfflineRetainsIDButRejectsPlay(t *testing.T) {
	queue := &fakeQueue{}
	d, session := newTestDevice(&fakeSDK{}, queue)

	d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventReady, DeviceID: "abc"})
	d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventNotReady, DeviceID: "abc"})

	state, id := d.State()
	assert.Equal(t, domain.DeviceOffline, state)
	assert.Equal(t, "abc", id)
	assert.Equal(t, domain.DeviceOffline, session.View().Device)

	require.ErrorIs(t, d.Play(context.Background(), "spotify:track:1"), domain.ErrDeviceNotReady)
	assert.Empty(t, queue.commands())

	d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventReady, DeviceID: "def"})
	require.NoError(t, d.Play(context.Background(), "spotify:track:1"))
	assert.Equal(t, "def", queue.commands()[0].DeviceID)
}

func TestDevice_StateChanged(t *testing.T) {
	track := &domain.Track{Name: "Song", Artists: []string{"A", "B"}, AlbumArt: "http://img"}

	t.Run("ignored before an id is known", func(t *testing.T) {
		d, session := newTestDevice(&fakeSDK{}, &fakeQueue{})
		d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventStateChanged, Track: track})
		assert.Nil(t, session.View().NowPlaying)
	})

	t.Run("null payload never mutates current track", func(t *testing.T) {
		d, session := newTestDevice(&fakeSDK{}, &fakeQueue{})
		d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventReady, DeviceID: "abc"})
		d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventStateChanged, Track: track})
		before := session.View().Version

		d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventStateChanged})

		require.NotNil(t, session.View().NowPlaying)
		assert.Equal(t, "Song", session.View().NowPlaying.Name)
		assert.Equal(t, before, session.View().Version)
	})

	t.Run("replaces current wholesale", func(t *testing.T) {
		d, session := newTestDevice(&fakeSDK{}, &fakeQueue{})
		d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventReady, DeviceID: "abc"})
		d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventStateChanged, Track: track})
		d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventStateChanged, Track: &domain.Track{Name: "Next", Artists: []string{"C"}}})

		cur := session.View().NowPlaying
		require.NotNil(t, cur)
		assert.Equal(t, "Next", cur.Name)
		assert.Equal(t, "C", cur.ArtistLine())
		assert.Empty(t, cur.AlbumArt)
	})
}

func TestDevice_InitConsumesEventsOnce(t *testing.T) {
	events := make(chan domain.DeviceEvent, 2)
	sdk := &fakeSDK{events: events}
	d, session := newTestDevice(sdk, &fakeQueue{})

	d.Init(context.Background())
	d.Init(context.Background())
	assert.Equal(t, domain.DeviceConnecting, session.View().Device)

	events <- domain.DeviceEvent{Kind: domain.DeviceEventReady, DeviceID: "abc"}
	assert.Eventually(t, func() bool {
		state, _ := d.State()
		return state == domain.DeviceReady
	}, time.Second, 5*time.Millisecond)

	reg := sdk.registration()
	require.NotNil(t, reg)
	assert.Equal(t, DefaultPlayerName, reg.Name)
	assert.Equal(t, DefaultPlayerVolume, reg.Volume)
	token, err := reg.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token", token)

	close(events)
	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("adapter did not finish after the event stream closed")
	}
	assert.Equal(t, domain.DeviceOffline, session.View().Device)
}

func TestDevice_ConnectFailureStaysConnecting(t *testing.T) {
	sdk := &fakeSDK{err: errors.New("bridge unreachable")}
	d, session := newTestDevice(sdk, &fakeQueue{})

	d.Init(context.Background())
	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("adapter did not finish")
	}

	state, _ := d.State()
	assert.Equal(t, domain.DeviceConnecting, state)
	assert.Equal(t, domain.DeviceConnecting, session.View().Device)
}

func TestDevice_QueueFull(t *testing.T) {
	queue := &fakeQueue{err: worker.ErrQueueFull}
	d, _ := newTestDevice(&fakeSDK{}, queue)
	d.HandleEvent(domain.DeviceEvent{Kind: domain.DeviceEventReady, DeviceID: "abc"})

	err := d.Play(context.Background(), "spotify:track:1")
	require.Error(t, err)
	assert.Equal(t, msgPlayerBusy, domain.UserMessage(err, ""))
}

// Package bootstrap assembles adapters and services into a runnable app.
package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/adapters/audioprobe"
	"github.com/ewilliams-labs/groovi/internal/adapters/backend"
	"github.com/ewilliams-labs/groovi/internal/adapters/eventbus"
	"github.com/ewilliams-labs/groovi/internal/adapters/microphone"
	"github.com/ewilliams-labs/groovi/internal/adapters/playbacksdk"
	"github.com/ewilliams-labs/groovi/internal/adapters/rest"
	"github.com/ewilliams-labs/groovi/internal/adapters/spotify"
	"github.com/ewilliams-labs/groovi/internal/config"
	"github.com/ewilliams-labs/groovi/internal/core/ports"
	"github.com/ewilliams-labs/groovi/internal/core/services"
	"github.com/ewilliams-labs/groovi/internal/worker"
)

// App is the wired process. Close releases the pool and the view bus.
type App struct {
	Handler http.Handler
	Backend *backend.Client
	Device  *services.DeviceAdapter
	Session *services.Session

	// PlaybackEnabled is false when no Spotify credential is configured; the
	// device is then never initialized and play requests report not ready.
	PlaybackEnabled bool

	pool *worker.Pool
	bus  *eventbus.Bus
}

// Build wires every component from cfg. ctx scopes token refreshes.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: nil config")
	}
	if log == nil {
		log = zap.NewNop()
	}

	bus := eventbus.New(log.Named("eventbus"))
	session := services.NewSession(bus)

	backendClient := backend.NewClient(&http.Client{Timeout: cfg.Backend.Timeout}, cfg.Backend.URL)

	creds := spotify.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		AccessToken:  cfg.Spotify.AccessToken,
		RefreshToken: cfg.Spotify.RefreshToken,
		TokenURL:     cfg.Spotify.TokenURL,
	}
	token := missingToken
	playbackEnabled := false
	if ts, err := spotify.NewTokenSource(ctx, creds); err == nil {
		token = spotify.TokenFunc(ts)
		playbackEnabled = true
	} else {
		log.Warn("bootstrap: spotify credentials not configured, playback disabled", zap.Error(err))
	}

	pool := worker.NewPool(spotify.NewClient(nil, cfg.Spotify.APIURL), token, cfg.Worker.QueueSize, log.Named("worker"))
	pool.Start(cfg.Worker.Workers)

	bridge := playbacksdk.NewBridge(playbacksdk.Config{
		URL:        cfg.Player.BridgeURL,
		MaxRetries: cfg.Player.MaxRetries,
	}, log.Named("playbacksdk"))

	device := services.NewDeviceAdapter(bridge, pool, token, session, log.Named("playback"), services.DeviceConfig{
		Name:   cfg.Player.Name,
		Volume: cfg.Player.Volume,
	})

	mic := microphone.NewFFMPEG(microphone.Config{
		Command:     cfg.Mic.Command,
		InputFormat: cfg.Mic.InputFormat,
		InputDevice: cfg.Mic.InputDevice,
	})

	handler := rest.NewHandler(rest.Deps{
		Session:      session,
		Orchestrator: services.NewOrchestrator(backendClient, session, log.Named("orchestrator")),
		Capture:      services.NewCaptureController(mic, backendClient, session, log.Named("capture"), services.CaptureConfig{}),
		Intake:       services.NewIntake(backendClient, audioprobe.MP3{}, session, log.Named("intake")),
		Device:       device,
		Views:        bus,
		Logger:       log.Named("rest"),
	})

	return &App{
		Handler:         handler,
		Backend:         backendClient,
		Device:          device,
		Session:         session,
		PlaybackEnabled: playbackEnabled,
		pool:            pool,
		bus:             bus,
	}, nil
}

// Close stops the play workers, then the view bus.
func (a *App) Close() error {
	a.pool.Stop()
	return a.bus.Close()
}

var missingToken ports.TokenFunc = func(context.Context) (string, error) {
	return "", spotify.ErrNoCredentials
}

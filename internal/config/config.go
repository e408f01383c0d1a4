// Package config loads process settings from the environment, with an
// optional .env file in the working directory.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Spotify  SpotifyConfig
	Player   PlayerConfig
	Mic      MicConfig
	Worker   WorkerConfig
	Tracing  TracingConfig
	EnvFile  bool // a .env file was read
}

type AppConfig struct {
	Port        string
	Environment string
	LogFilePath string
}

type BackendConfig struct {
	URL         string
	Timeout     time.Duration
	StartupWait time.Duration
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	TokenURL     string
	APIURL       string
}

type PlayerConfig struct {
	Name       string
	Volume     float64
	BridgeURL  string
	MaxRetries int
}

type MicConfig struct {
	Command     string
	InputFormat string
	InputDevice string
}

type WorkerConfig struct {
	Workers   int
	QueueSize int
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

// IsProduction reports whether logs should be JSON only.
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads .env when present, then the environment.
func Load() *Config {
	return load(".env")
}

func load(envFile string) *Config {
	loaded := godotenv.Load(envFile) == nil

	return &Config{
		App: AppConfig{
			Port:        envOrDefault("PORT", "8080"),
			Environment: envOrDefault("GO_ENV", "development"),
			LogFilePath: envOrDefault("LOG_FILE_PATH", ""),
		},
		Backend: BackendConfig{
			URL:         envOrDefault("BACKEND_URL", "http://127.0.0.1:8000"),
			Timeout:     envOrDefaultSeconds("BACKEND_TIMEOUT_SECONDS", 30*time.Second),
			StartupWait: envOrDefaultSeconds("BACKEND_WAIT_SECONDS", 30*time.Second),
		},
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			AccessToken:  os.Getenv("SPOTIFY_ACCESS_TOKEN"),
			RefreshToken: os.Getenv("SPOTIFY_REFRESH_TOKEN"),
			TokenURL:     os.Getenv("SPOTIFY_TOKEN_URL"),
			APIURL:       os.Getenv("SPOTIFY_API_URL"),
		},
		Player: PlayerConfig{
			Name:       envOrDefault("PLAYER_NAME", "Mood Recommender Player"),
			Volume:     envOrDefaultFloat("PLAYER_VOLUME", 0.5),
			BridgeURL:  envOrDefault("SDK_BRIDGE_URL", "ws://127.0.0.1:8765/sdk"),
			MaxRetries: envOrDefaultInt("SDK_MAX_RETRIES", 3),
		},
		Mic: MicConfig{
			Command:     envOrDefault("FFMPEG_PATH", "ffmpeg"),
			InputFormat: envOrDefault("MIC_INPUT_FORMAT", "pulse"),
			InputDevice: envOrDefault("MIC_INPUT_DEVICE", "default"),
		},
		Worker: WorkerConfig{
			Workers:   envOrDefaultInt("PLAY_WORKERS", 2),
			QueueSize: envOrDefaultInt("PLAY_QUEUE_SIZE", 100),
		},
		Tracing: TracingConfig{
			Enabled:  envOrDefault("OTEL_ENABLED", "false") == "true",
			Endpoint: envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		EnvFile: loaded,
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	v, err := strconv.Atoi(envOrDefault(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(envOrDefault(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func envOrDefaultSeconds(key string, fallback time.Duration) time.Duration {
	n := envOrDefaultInt(key, 0)
	if n == 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

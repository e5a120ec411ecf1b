package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all settings for the StoryAI Visualizer server.
type Config struct {
	// Server settings
	AppName     string `envconfig:"APP_NAME" default:"StoryAI Visualizer"`
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	BaseURL     string `envconfig:"SERVER_BASE" default:"http://localhost:8080"`
	Environment string `envconfig:"SERVER_ENVN" default:"development"`
	Version     string `envconfig:"SERVER_VER" default:"1.0.0"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Storage settings
	StorageRoot string `envconfig:"STORAGE_ROOT" default:"storage"`

	// PostgreSQL settings
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNECTIONS" default:"10"`

	// Redis settings (optional, voice list cache)
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	VoiceCacheTTL time.Duration `envconfig:"VOICE_CACHE_TTL" default:"1h"`

	// Provider settings
	OpenAIAPIKey    string        `envconfig:"OPENAI_API_KEY"`
	PlayHTAPIKey    string        `envconfig:"PLAYHT_API_KEY"`
	PlayHTUserID    string        `envconfig:"PLAYHT_USER_ID"`
	GoogleAPIKey    string        `envconfig:"GOOGLE_API_KEY"`
	GoogleCSEID     string        `envconfig:"CSE_ID"`
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"60s"`

	// Ledger settings
	StartingPoints int `envconfig:"STARTING_POINTS" default:"25"`

	// Media tooling
	FFmpegPath  string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	FFprobePath string `envconfig:"FFPROBE_PATH" default:"ffprobe"`
}

// Load reads configuration from the environment, optionally seeding it from a
// .env file first. A missing .env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	return &cfg, nil
}

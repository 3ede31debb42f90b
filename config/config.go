package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	// DiscordGuildID scopes command registration to one guild for fast
	// iteration in development; empty registers commands globally.
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Interactive session windows
	SetupSessionTTL time.Duration
	ModalWindow     time.Duration

	// Environment is "development", "production" or "test"
	Environment string
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from a .env file (if present) and the
// environment
func load() (*Config, error) {
	// Optional; absent in production where the environment is injected.
	_ = godotenv.Load()

	config := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		SetupSessionTTL: 10 * time.Minute,
		ModalWindow:     5 * time.Minute,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if ttl := os.Getenv("SETUP_SESSION_TTL_SECONDS"); ttl != "" {
		if parsed, err := strconv.Atoi(ttl); err == nil && parsed > 0 {
			config.SetupSessionTTL = time.Duration(parsed) * time.Second
		}
	}
	if window := os.Getenv("MODAL_WINDOW_SECONDS"); window != "" {
		if parsed, err := strconv.Atoi(window); err == nil && parsed > 0 {
			config.ModalWindow = time.Duration(parsed) * time.Second
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

package config

import (
	"fmt"
	"os"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Storage configuration. When DatabaseURL is set the settings record
	// lives in Postgres; otherwise it is a JSON file at SettingsPath.
	DatabaseURL  string
	SettingsPath string

	// Environment
	Environment string // "development", "production" or "test"
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

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SettingsPath:   os.Getenv("SETTINGS_PATH"),
		Environment:    os.Getenv("ENVIRONMENT"),
	}

	if config.SettingsPath == "" {
		config.SettingsPath = "settings.json"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DiscordGuildID == "" {
			return nil, fmt.Errorf("DISCORD_GUILD_ID is required")
		}
	}

	return config, nil
}

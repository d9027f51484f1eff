package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	AWS    AWSConfig
	Engine EngineConfig
	Auth   AuthConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
}

// AWSConfig holds cloud credential configuration. The keys are only checked
// for presence here; the SDK reads them from the environment itself.
type AWSConfig struct {
	Region          string `env:"AWS_REGION" envDefault:"us-west-2"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

// EngineConfig holds provisioning engine configuration.
type EngineConfig struct {
	// Project is the namespace grouping every stack this server manages.
	Project string `env:"PROJECT_NAME" envDefault:"geostacks"`
	// UseMemory swaps the real engine for the in-memory one (local dev).
	UseMemory bool `env:"ENGINE_MEMORY" envDefault:"false"`
}

// AuthConfig holds API authentication configuration.
type AuthConfig struct {
	APIKey string `env:"API_KEY"` // empty disables auth
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from the environment, layering in a .env file
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.AWS); err != nil {
		return nil, fmt.Errorf("parsing aws config: %w", err)
	}
	if err := env.Parse(&cfg.Engine); err != nil {
		return nil, fmt.Errorf("parsing engine config: %w", err)
	}
	if err := env.Parse(&cfg.Auth); err != nil {
		return nil, fmt.Errorf("parsing auth config: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return nil, fmt.Errorf("parsing log config: %w", err)
	}

	return cfg, nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine.Project == "" {
		return fmt.Errorf("PROJECT_NAME must not be empty")
	}

	// The in-memory engine needs no cloud credentials
	if !c.Engine.UseMemory {
		if c.AWS.AccessKeyID == "" {
			return fmt.Errorf("AWS_ACCESS_KEY_ID is required (or set ENGINE_MEMORY=true for local development)")
		}
		if c.AWS.SecretAccessKey == "" {
			return fmt.Errorf("AWS_SECRET_ACCESS_KEY is required (or set ENGINE_MEMORY=true for local development)")
		}
	}

	return nil
}

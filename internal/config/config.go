// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultAPIKey is the shared secret used when API_KEY is not set.
const DefaultAPIKey = "secret123"

// Config holds the aggregator server configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppHost string `env:"APP_HOST" envDefault:"0.0.0.0"`
	AppPort int    `env:"APP_PORT" envDefault:"8000"`

	// Static shared key expected in the X-API-Key header
	APIKey string `env:"API_KEY" envDefault:"secret123"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Outbound calls
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"5s"`
	Upstreams       Upstreams

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Upstreams holds the third-party endpoints queried on every aggregate request.
type Upstreams struct {
	ISSURL     string `env:"ISS_URL" envDefault:"http://api.open-notify.org/iss-now.json"`
	SpaceXURL  string `env:"SPACEX_URL" envDefault:"https://api.spacexdata.com/v5/launches/latest"`
	CatFactURL string `env:"CAT_FACT_URL" envDefault:"https://catfact.ninja/fact"`
	FXURL      string `env:"FX_URL" envDefault:"https://api.frankfurter.app/latest?from=EUR&to=USD"`
}

// ClientConfig holds defaults for the command-line client.
type ClientConfig struct {
	URL     string        `env:"AGGREGATOR_URL" envDefault:"http://localhost:8000/v1/aggregate"`
	APIKey  string        `env:"API_KEY" envDefault:"secret123"`
	Timeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.AppHost, c.AppPort)
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY must not be empty")
	}
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.AppPort)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	// A slow upstream must not outlive the response write deadline.
	if c.WriteTimeout > 0 && c.UpstreamTimeout >= c.WriteTimeout {
		return fmt.Errorf("UPSTREAM_TIMEOUT (%s) must be below WRITE_TIMEOUT (%s)", c.UpstreamTimeout, c.WriteTimeout)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load parses environment variables and returns a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadClient parses the client environment variables.
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client config: %w", err)
	}
	return cfg, nil
}

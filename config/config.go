package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: upstream commerce API configuration
//   - http.go: HTTP server configuration
//   - storage.go: persistent key-value storage configuration
//   - session.go: session lifecycle configuration
type AppConfig struct {
	// IsDev controls development mode behavior (verbose logging, in-memory
	// storage fallback, etc.). Set DEV=true or NODE_ENV=development.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Upstream commerce API configuration
	API APIConfig `envPrefix:"API_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Persistent key-value storage configuration
	Storage StorageConfig
	Redis   RedisConfig `envPrefix:"REDIS_"`

	// Session configuration
	Session SessionConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.HTTP.Sanitize()
	c.Storage.Sanitize()

	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

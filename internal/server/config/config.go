// Package config handles configuration for the server component: defaults,
// an optional JSON file, environment variables (with .env support) and
// command-line flags, applied in that order.
package config

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

// Config holds runtime settings for the GophAuth server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - EndpointAddrGRPC: bind address for the gRPC health endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing tokens (HS256). Required.
//   - TokenValidityDuration: lifetime of issued tokens.
//   - BcryptCost: password hashing work factor.
//   - WebDir: optional directory of pages served behind the route guard.
type Config struct {
	EndpointAddrHTTP      string
	EndpointAddrGRPC      string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	BcryptCost            int
	WebDir                string
}

// LoadDefaults populates Config with development defaults. No secret is
// defaulted.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3001"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.TokenValidityDuration = 24 * time.Hour
	c.BcryptCost = auth.DefaultBcryptCost
	c.WebDir = ""
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret key is required (-s, secret_key or JWT_SECRET)")
	}
	if c.TokenValidityDuration <= 0 {
		return errors.New("token validity must be positive")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Package config handles configuration for the GophAuth terminal client.
package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - ServerBaseURL: base URL of the HTTP API.
//   - ServerGRPCAddr: host:port of the gRPC health endpoint.
//   - SessionDBPath: sqlite file holding the session between runs.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerBaseURL       string
	ServerGRPCAddr      string
	SessionDBPath       string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:3001"
	c.ServerGRPCAddr = "127.0.0.1:50051"
	c.SessionDBPath = "session.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

package config

import (
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	envSecret = "JWT_SECRET"
	envDSN    = "DATABASE_DSN"
)

// parseEnv overlays the secret and DSN from the environment. A .env file is
// read first: the one passed with -e/-env, or ./.env when present. Variables
// already set in the process environment are not overridden by the file.
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlags()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	if v, ok := os.LookupEnv(envSecret); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv(envDSN); ok && v != "" {
		config.DatabaseDSN = v
	}
}

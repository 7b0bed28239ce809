package config

import (
	"errors"
	"io/fs"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	BackendConfig
	SessionConfig
	StorageConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetAppMode() AppMode
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Backend
	Session
	Storage
	Cors
}

var loadEnvFile sync.Once

// New returns the environment backed configuration. A .env file in the
// working directory is loaded once, without overriding variables that are
// already set.
func New() Config {
	loadEnvFile.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Msg("Failed to load .env file")
		}
	})
	return mainConfig{}
}

package config

import "time"

type BackendConfig interface {
	GetBackendURL() string
	GetBackendTimeout() time.Duration
}

type Backend struct{}

var _ BackendConfig = Backend{}

// GetBackendURL returns the base URL of the MindCare API (e.g. "http://localhost:8000")
func (Backend) GetBackendURL() string {
	return GetEnv("BACKEND_URL", "http://localhost:8000")
}

func (Backend) GetBackendTimeout() time.Duration {
	return GetEnvDuration("BACKEND_TIMEOUT", 10*time.Second)
}

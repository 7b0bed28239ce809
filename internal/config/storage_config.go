package config

type StorageConfig interface {
	GetSessionStore() string
	GetSessionFile() string
	GetSessionSecret() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetSessionKey() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetSessionStore is one of "memory", "file" or "redis"
func (Storage) GetSessionStore() string {
	return GetEnv("SESSION_STORE", "file")
}

func (Storage) GetSessionFile() string {
	return GetEnv("SESSION_FILE", "./data/session.json")
}

// GetSessionSecret seals the session file when set
func (Storage) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

// GetSessionKey is the Redis hash holding the persisted session
func (Storage) GetSessionKey() string {
	return GetEnv("SESSION_KEY", "mindcare:session")
}

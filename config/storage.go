package config

// StorageBackend selects the persistent key-value store implementation.
type StorageBackend string

const (
	// StorageBackendRedis uses Redis for persistent key-value storage.
	StorageBackendRedis StorageBackend = "redis"
	// StorageBackendMemory uses an in-process store (development/tests only;
	// state does not survive a restart).
	StorageBackendMemory StorageBackend = "memory"
)

// StorageConfig selects the persistent key-value store backend.
type StorageConfig struct {
	Backend StorageBackend `env:"STORAGE_BACKEND" envDefault:"redis"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	switch s.Backend {
	case StorageBackendRedis, StorageBackendMemory:
	default:
		s.Backend = StorageBackendRedis
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	// KeyPrefix namespaces every key this service writes.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"storefront:"`
}

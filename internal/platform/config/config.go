package config

import (
	"os"
	"time"
)

// StoreBackend selects where durable state lives.
type StoreBackend string

const (
	BackendMemory   StoreBackend = "memory"
	BackendPostgres StoreBackend = "postgres"
	BackendMongo    StoreBackend = "mongo"
)

// Config captures process-level configuration. All durable state lives in
// external stores; the process itself holds only this value and client
// handles constructed from it at startup.
type Config struct {
	Addr         string
	StoreBackend StoreBackend

	PostgresDSN string
	MongoURI    string
	MongoDB     string
	RedisURL    string

	// StoreTimeout bounds every store operation. On expiry the operation is
	// surfaced as a transient failure; retry policy belongs to the caller.
	StoreTimeout time.Duration

	JWTSigningKey string
	SessionTTL    time.Duration

	SMTPHost string
	SMTPPort string
	SMTPFrom string
	SMTPPass string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:          envOr("RVM_ADDR", ":8080"),
		StoreBackend:  StoreBackend(envOr("RVM_STORE_BACKEND", string(BackendMemory))),
		PostgresDSN:   os.Getenv("RVM_POSTGRES_DSN"),
		MongoURI:      os.Getenv("RVM_MONGO_URI"),
		MongoDB:       envOr("RVM_MONGO_DB", "rvm"),
		RedisURL:      os.Getenv("RVM_REDIS_URL"),
		StoreTimeout:  durationOr("RVM_STORE_TIMEOUT", 5*time.Second),
		JWTSigningKey: envOr("RVM_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:    durationOr("RVM_SESSION_TTL", 24*time.Hour),
		SMTPHost:      os.Getenv("RVM_SMTP_HOST"),
		SMTPPort:      envOr("RVM_SMTP_PORT", "587"),
		SMTPFrom:      os.Getenv("RVM_SMTP_FROM"),
		SMTPPass:      os.Getenv("RVM_SMTP_PASS"),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

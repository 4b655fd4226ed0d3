// Package config collects runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every knob the product service reads at startup.
type Config struct {
	HTTPAddr string
	HTTPPort int

	MongoURI      string
	MongoDatabase string
	StoreBackend  string // "mongo" or "memory"
	SeedData      bool

	RedisHost string
	RedisPort int
	CacheTTL  time.Duration

	RabbitHost     string
	RabbitPort     int
	RabbitUser     string
	RabbitPassword string

	ConsulHost    string
	ConsulPort    int
	ConsulEnabled bool

	JWTSecret string

	WorkerCount    int
	PrefetchCount  int
	HandlerTimeout time.Duration
	DedupTTL       time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

// Load reads configuration from environment variables with defaults that
// match the local docker-compose setup.
func Load() Config {
	port := atoienv("HTTP_PORT", 8081)
	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":"+strconv.Itoa(port)),
		HTTPPort: port,

		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getenv("MONGO_DATABASE", "productdb"),
		StoreBackend:  getenv("STORE_BACKEND", "mongo"),
		SeedData:      boolenv("SEED_DATA", false),

		RedisHost: getenv("REDIS_HOST", "localhost"),
		RedisPort: atoienv("REDIS_PORT", 6379),
		CacheTTL:  durenvs("CACHE_TTL", 300),

		RabbitHost:     getenv("RABBITMQ_HOST", "localhost"),
		RabbitPort:     atoienv("RABBITMQ_PORT", 5672),
		RabbitUser:     getenv("RABBITMQ_USER", "guest"),
		RabbitPassword: getenv("RABBITMQ_PASSWORD", "guest"),

		ConsulHost:    getenv("CONSUL_HOST", "localhost"),
		ConsulPort:    atoienv("CONSUL_PORT", 8500),
		ConsulEnabled: boolenv("CONSUL_ENABLED", true),

		JWTSecret: os.Getenv("JWT_SECRET"),

		WorkerCount:    atoienv("WORKER_COUNT", 4),
		PrefetchCount:  atoienv("PREFETCH_COUNT", 16),
		HandlerTimeout: durenvs("HANDLER_TIMEOUT", 30),
		DedupTTL:       durenvs("DEDUP_TTL", 86400),
	}
}

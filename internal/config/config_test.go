package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c := Load()
	if c.HTTPAddr != ":8081" || c.HTTPPort != 8081 {
		t.Fatalf("HTTP defaults: %+v", c)
	}
	if c.MongoURI != "mongodb://localhost:27017" || c.MongoDatabase != "productdb" {
		t.Fatalf("Mongo defaults")
	}
	if c.StoreBackend != "mongo" || c.SeedData {
		t.Fatalf("store defaults")
	}
	if c.RedisHost != "localhost" || c.RedisPort != 6379 || c.CacheTTL != 5*time.Minute {
		t.Fatalf("Redis defaults")
	}
	if c.RabbitHost != "localhost" || c.RabbitPort != 5672 || c.RabbitUser != "guest" {
		t.Fatalf("RabbitMQ defaults")
	}
	if !c.ConsulEnabled || c.ConsulPort != 8500 {
		t.Fatalf("Consul defaults")
	}
	if c.WorkerCount != 4 || c.PrefetchCount != 16 {
		t.Fatalf("worker defaults")
	}
	if c.HandlerTimeout != 30*time.Second || c.DedupTTL != 24*time.Hour {
		t.Fatalf("timeout defaults")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("SEED_DATA", "true")
	t.Setenv("CONSUL_ENABLED", "false")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("HANDLER_TIMEOUT", "5")
	t.Setenv("JWT_SECRET", "s3cret")

	c := Load()
	if c.HTTPAddr != ":9090" || c.HTTPPort != 9090 {
		t.Fatalf("HTTP env: %+v", c)
	}
	if c.StoreBackend != "memory" || !c.SeedData {
		t.Fatalf("store env")
	}
	if c.ConsulEnabled {
		t.Fatalf("Consul env")
	}
	if c.WorkerCount != 8 {
		t.Fatalf("worker env")
	}
	if c.HandlerTimeout != 5*time.Second {
		t.Fatalf("timeout env")
	}
	if c.JWTSecret != "s3cret" {
		t.Fatalf("jwt env")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")
	t.Setenv("SEED_DATA", "maybe")

	c := Load()
	if c.HTTPPort != 8081 {
		t.Fatalf("expected default port on bad value, got %d", c.HTTPPort)
	}
	if c.SeedData {
		t.Fatalf("expected default seed flag on bad value")
	}
}

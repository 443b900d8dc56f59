package config_test

import (
	"testing"
	"time"

	"memberhub/internal/infra/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected dev env, got %q", cfg.Env)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.MongoDB != "memberhub" {
		t.Fatalf("expected memberhub db, got %q", cfg.MongoDB)
	}
	if cfg.SessionTTL != 72*time.Hour {
		t.Fatalf("expected 72h session ttl, got %v", cfg.SessionTTL)
	}
	if len(cfg.RetryBackoff) != 3 || cfg.RetryBackoff[0] != time.Second {
		t.Fatalf("unexpected retry backoff %v", cfg.RetryBackoff)
	}
	if cfg.S3PublicEndpoint != cfg.S3Endpoint {
		t.Fatalf("public endpoint should fall back to endpoint, got %q", cfg.S3PublicEndpoint)
	}
}

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error without MONGO_URI")
	}
}

func TestLoadParsesBrokersAndDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("OUTBOX_POLL_INTERVAL", "2s")
	t.Setenv("RETRY_BACKOFF", "100ms, 1s")
	t.Setenv("S3_USE_SSL", "yes")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.OutboxPollInterval != 2*time.Second {
		t.Fatalf("unexpected poll interval %v", cfg.OutboxPollInterval)
	}
	if len(cfg.RetryBackoff) != 2 || cfg.RetryBackoff[0] != 100*time.Millisecond {
		t.Fatalf("unexpected backoff %v", cfg.RetryBackoff)
	}
	if !cfg.S3UseSSL {
		t.Fatalf("expected ssl enabled")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "three days")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid SESSION_TTL")
	}
}

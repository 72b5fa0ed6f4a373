package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "4000" || cfg.Addr() != ":4000" {
		t.Errorf("expected default port 4000, got %q", cfg.Port)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("expected 1h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.MongoDB != "foreignDB" {
		t.Errorf("expected foreignDB, got %q", cfg.MongoDB)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Errorf("expected 24h idempotency ttl, got %s", cfg.IdempotencyTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.TokenTTL != 30*time.Minute || cfg.RateLimitPerMin != 7 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestWorkersLoadWithoutSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load without a token secret: %v", err)
	}
	if err := cfg.ValidateAPI(); err == nil {
		t.Fatal("expected the api to require ACCESS_TOKEN_SECRET")
	}
}

func TestValidateAPI(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		t.Fatalf("ValidateAPI: %v", err)
	}
	cfg.RateLimitPerMin = 0
	if err := cfg.ValidateAPI(); err == nil {
		t.Error("expected an error for a zero rate limit")
	}
}

func TestLoadRejectsEmptyOutboxBatch(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for OUTBOX_BATCH_SIZE=0")
	}
}

func TestLoadRejectsSampleRatioOutOfRange(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("OTEL_TRACE_SAMPLE_RATIO", "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a sample ratio above 1")
	}
}

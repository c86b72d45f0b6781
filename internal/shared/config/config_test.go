package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected default env dev, got %s", cfg.Env)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected default store local, got %s", cfg.ObjectStoreType)
	}
	if cfg.LLMModel == "" {
		t.Fatalf("expected default llm model")
	}
	if cfg.RateRPS <= 0 || cfg.RateBurst <= 0 {
		t.Fatalf("expected positive rate limits, got %v/%d", cfg.RateRPS, cfg.RateBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "PROD")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("RATE_RPS", "2.5")
	t.Setenv("RATE_BURST", "7")
	t.Setenv("SEED_USERS", "false")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Fatalf("expected port 9999, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env production, got %s", cfg.Env)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("expected store s3, got %s", cfg.ObjectStoreType)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example.com" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowOrigin)
	}
	if cfg.RateRPS != 2.5 || cfg.RateBurst != 7 {
		t.Fatalf("unexpected rate limits %v/%d", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.SeedUsers {
		t.Fatalf("expected seeding disabled")
	}
}

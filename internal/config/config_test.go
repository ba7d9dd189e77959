package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PERSEUS_RATE_LIMIT_RPS", "")
	t.Setenv("LINE_LIMIT", "not-a-number")
	t.Setenv("CACHE_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PerseusRateLimitRPS != 20 {
		t.Fatalf("rps=%d", cfg.PerseusRateLimitRPS)
	}
	if cfg.LineLimit != 0 {
		t.Fatalf("lineLimit=%d", cfg.LineLimit)
	}
	if cfg.CacheEnabled {
		t.Fatal("cache should stay disabled on a malformed bool")
	}
	if cfg.HTMLCorpusID != "Matthew" {
		t.Fatalf("corpus id=%q", cfg.HTMLCorpusID)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PERSEUS_RATE_LIMIT_RPS", "5")
	t.Setenv("START_MARKER", "1:")
	t.Setenv("CACHE_ENABLED", "on")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PerseusRateLimitRPS != 5 || cfg.StartMarker != "1:" || !cfg.CacheEnabled {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestRequire(t *testing.T) {
	var cfg Config
	if err := cfg.Require("PERSEUS_BASE_URL", "  "); err == nil {
		t.Fatal("expected error for blank value")
	}
	if err := cfg.Require("PERSEUS_BASE_URL", "http://x"); err != nil {
		t.Fatal(err)
	}
}

package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageDriver != "sqlite" {
		t.Fatalf("expected sqlite default, got %s", cfg.StorageDriver)
	}
	if cfg.BlobDriver != "fs" {
		t.Fatalf("expected fs default, got %s", cfg.BlobDriver)
	}
	if cfg.SweepSchedule != "@hourly" || cfg.LookaheadDays != 7 || cfg.LookbackDays != 0 {
		t.Fatalf("unexpected sweep defaults: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected info default, got %s", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BROODCORE_STORAGE_DRIVER", "postgres")
	t.Setenv("BROODCORE_POSTGRES_DSN", "postgres://db/brood")
	t.Setenv("BROODCORE_SWEEP_LOOKAHEAD_DAYS", "14")
	t.Setenv("BROODCORE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageDriver != "postgres" || cfg.PostgresDSN != "postgres://db/brood" {
		t.Fatalf("storage env not applied: %+v", cfg)
	}
	if cfg.LookaheadDays != 14 || cfg.LogLevel != "debug" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("BROODCORE_SWEEP_LOOKAHEAD_DAYS", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error for non-numeric days")
	}
}

package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "feedback.db" {
		t.Fatalf("expected default database feedback.db, got %q", cfg.DatabaseURL)
	}
	if cfg.LLMProvider != "mock" {
		t.Fatalf("expected mock provider by default, got %q", cfg.LLMProvider)
	}
	if cfg.VectorClass != "Knowledge" {
		t.Fatalf("expected Knowledge vector class, got %q", cfg.VectorClass)
	}
	if !cfg.SQLitePragmasEnabled {
		t.Fatalf("expected sqlite pragmas enabled by default")
	}
	if cfg.FineTuneSchedule != "" || cfg.CrawlSchedule != "" {
		t.Fatalf("expected schedules disabled by default")
	}
}

func TestDefaultIgnoresEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LLM_PROVIDER", "openai")

	cfg := Default()
	if cfg.Port != 8000 || cfg.LLMProvider != "mock" {
		t.Fatalf("Default() must not read the process environment, got port=%d provider=%q", cfg.Port, cfg.LLMProvider)
	}
}

package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/edumarket?sslmode=disable")
	t.Setenv("COMMISSION_PERCENT", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("RUN_MIGRATIONS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CommissionPercent != 70 {
		t.Fatalf("unexpected commission: got %d want 70", cfg.CommissionPercent)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr: %q", cfg.HTTPAddr)
	}
	if !cfg.RunMigrations {
		t.Fatalf("migrations should run by default")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadRejectsCommissionOutOfRange(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/edumarket")
	t.Setenv("COMMISSION_PERCENT", "120")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for commission above 100")
	}
}

func TestSplitListTrimsBlanks(t *testing.T) {
	got := splitList(" a , ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected split: %v", got)
	}
}

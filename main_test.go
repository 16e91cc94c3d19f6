package main

import (
	"context"
	"path/filepath"
	"testing"

	"ltv-dashboard/pkg/config"
	"ltv-dashboard/pkg/models"
)

func TestApplyFlags_EnvDSNUsedByDefault(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, map[string]string{}, "sqlite://env.db")
	if cfg.Data.DSN != "sqlite://env.db" {
		t.Fatalf("got DSN %q, want the env DSN", cfg.Data.DSN)
	}
}

func TestApplyFlags_ExplicitCSVDropsEnvDSN(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, map[string]string{"csv": "other.csv"}, "sqlite://env.db")
	if cfg.Data.DSN != "" || cfg.Data.CSV != "other.csv" {
		t.Fatalf("got DSN %q CSV %q, want the CSV only", cfg.Data.DSN, cfg.Data.CSV)
	}
}

func TestApplyFlags_ExplicitDSNWins(t *testing.T) {
	cfg := config.Default()
	cfg.Data.DSN = "sqlite://yaml.db"
	applyFlags(cfg, map[string]string{"csv": "other.csv", "dsn": "sqlite://flag.db"}, "sqlite://env.db")
	if cfg.Data.DSN != "sqlite://flag.db" {
		t.Fatalf("got DSN %q, want the flag DSN", cfg.Data.DSN)
	}
}

func TestApplyFlags_YAMLDSNBeatsEnv(t *testing.T) {
	cfg := config.Default()
	cfg.Data.DSN = "sqlite://yaml.db"
	applyFlags(cfg, map[string]string{"mode": "batch", "v": "true"}, "sqlite://env.db")
	if cfg.Data.DSN != "sqlite://yaml.db" || cfg.Mode != "batch" || !cfg.Verbose {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadData_MissingFileFallsBackToEmptyTable(t *testing.T) {
	cfg := config.Default()
	cfg.Data.CSV = filepath.Join(t.TempDir(), "customer_stats.csv")
	data := loadData(context.Background(), cfg)
	if data.Len() != 0 {
		t.Fatalf("got %d rows, want 0", data.Len())
	}
	for _, s := range models.CustomerSchema {
		if !data.Has(s.Name) {
			t.Fatalf("empty table lost column %q", s.Name)
		}
	}
}

func TestLoadData_MissingSQLTableFallsBackToEmptyTable(t *testing.T) {
	cfg := config.Default()
	cfg.Data.DSN = "sqlite://:memory:"
	if data := loadData(context.Background(), cfg); data.Len() != 0 {
		t.Fatalf("got %d rows, want 0", data.Len())
	}
}

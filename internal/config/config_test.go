package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SPARESLEDGER_CONFIG", "")
	t.Setenv("PORT", "")
	t.Setenv("UNIT_VALUE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBDSN != ":memory:" || cfg.AdminName != "Admin User" || cfg.StoreKeeperName != "Khalid" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if got := cfg.UnitPrice().String(); got != "15" {
		t.Fatalf("unit price = %s, want 15", got)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.toml")
	body := "port = \"9090\"\nstorekeeper_name = \"Ahmed\"\nunit_value = \"12.50\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPARESLEDGER_CONFIG", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("env should override file port, got %s", cfg.Port)
	}
	if cfg.StoreKeeperName != "Ahmed" {
		t.Fatalf("file value lost: %+v", cfg)
	}
	if cfg.AdminName != "Admin User" {
		t.Fatalf("missing key should keep default, got %q", cfg.AdminName)
	}
	if cfg.UnitPrice().String() != "12.5" {
		t.Fatalf("unit price = %s", cfg.UnitPrice())
	}
}

func TestLoadFileBrokenTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("port = = 1"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(path)
	var le *LoadError
	if !errors.As(err, &le) || le.Path != path {
		t.Fatalf("want LoadError for %s, got %v", path, err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.UnitValue = "fifteen"
	if err := cfg.Validate(); err == nil {
		t.Fatal("bad unit value accepted")
	}
	cfg = Default()
	cfg.RateLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero rate limit accepted")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"EXAMCOACH_DB", "EXAMCOACH_CATALOG", "EXAMCOACH_POLICY", "EXAMCOACH_LOG_MODE",
		"EXAMCOACH_LOG_SALT", "EXAMCOACH_SEED", "EXAMCOACH_QUEUE_LIMIT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg != Default() {
		t.Errorf("FromEnv() = %+v, want %+v", cfg, Default())
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXAMCOACH_DB", "/tmp/coach.db")
	t.Setenv("EXAMCOACH_SEED", "week-3")
	t.Setenv("EXAMCOACH_QUEUE_LIMIT", "5")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.DBPath != "/tmp/coach.db" || cfg.DefaultSeed != "week-3" || cfg.QueueLimit != 5 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestFromEnv_BadQueueLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXAMCOACH_QUEUE_LIMIT", "many")
	if _, err := FromEnv(); err == nil {
		t.Error("expected error for non-integer queue limit")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	env := filepath.Join(dir, "test.env")
	if err := os.WriteFile(env, []byte("EXAMCOACH_CATALOG="+dir+"\nEXAMCOACH_LOG_MODE=prod\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("EXAMCOACH_CATALOG")
		os.Unsetenv("EXAMCOACH_LOG_MODE")
	})

	cfg, err := Load(env, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CatalogDir != dir || cfg.LogMode != "prod" {
		t.Errorf("cfg = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{CatalogDir: dir}, false},
		{"empty", Config{}, true},
		{"missing", Config{CatalogDir: filepath.Join(dir, "nope")}, true},
		{"not dir", Config{CatalogDir: file}, true},
		{"missing policy", Config{CatalogDir: dir, PolicyPath: filepath.Join(dir, "p.yaml")}, true},
		{"negative limit", Config{CatalogDir: dir, QueueLimit: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	want := "/custom/config/rwdash/config.yml"
	if got := GlobalConfigPath(); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		"RWDASH_DATA_DIR":        "/tmp/rw",
		"RWDASH_ADDR":            ":9000",
		"RWDASH_WINDOWS":         "4",
		"RWDASH_MATCH_THRESHOLD": "0.9",
		"RWDASH_OUTPUT_DIR":      "",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.DataDir != "/tmp/rw" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Windows != 4 || cfg.MatchThreshold != 0.9 {
		t.Errorf("windows/threshold = %d/%v", cfg.Windows, cfg.MatchThreshold)
	}
	if cfg.OutputDir != "." {
		t.Errorf("empty override changed OutputDir to %q", cfg.OutputDir)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"RWDASH_WINDOWS":         "many",
		"RWDASH_MATCH_THRESHOLD": "high",
	}
	for k, v := range tests {
		t.Run(k, func(t *testing.T) {
			err := Default().ApplyEnv(lookupFrom(map[string]string{k: v}))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("ApplyEnv(%s=%s) error = %v, want ErrInvalid", k, v, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RWDASH_TEST_DOTENV=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RWDASH_TEST_DOTENV", "")
	os.Unsetenv("RWDASH_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("RWDASH_TEST_DOTENV"); got != "from-file" {
		t.Errorf("RWDASH_TEST_DOTENV = %q, want from-file", got)
	}
}

func TestResolve(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfgDir := filepath.Join(dir, GlobalConfigDir)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, GlobalConfigFile), []byte("windows: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RWDASH_MATCH_THRESHOLD", "0.75")

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Windows != 7 {
		t.Errorf("Windows = %d, want 7 from user config", cfg.Windows)
	}
	if cfg.MatchThreshold != 0.75 {
		t.Errorf("MatchThreshold = %v, want 0.75 from env", cfg.MatchThreshold)
	}

	again, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if again != cfg {
		t.Error("second Resolve() should return the cached config")
	}
}

func TestResolve_ExplicitMissing(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	if _, err := Resolve(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("Resolve(missing explicit path) expected error")
	}
}

func TestResolve_EnvInvalid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RWDASH_WINDOWS", "99")
	if _, err := Resolve(""); !errors.Is(err, ErrInvalid) {
		t.Errorf("Resolve() error = %v, want ErrInvalid", err)
	}
}

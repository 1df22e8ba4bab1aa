package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testConfig struct {
	Name string        `yaml:"name" json:"name"`
	Pool testPoolBlock `yaml:"pool" json:"pool"`
}

type testPoolBlock struct {
	Workers      int           `yaml:"workers" json:"workers"`
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`
	Addresses    []string      `yaml:"addresses" json:"addresses"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
name: demo
pool:
  workers: 8
`)

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "demo" {
		t.Errorf("Name = %q, want demo", cfg.Name)
	}
	if cfg.Pool.Workers != 8 {
		t.Errorf("Pool.Workers = %d, want 8", cfg.Pool.Workers)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"name":"demo","pool":{"workers":2}}`)

	var cfg testConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Pool.Workers != 2 {
		t.Errorf("Pool.Workers = %d, want 2", cfg.Pool.Workers)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg testConfig
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); err == nil {
		t.Error("Load() on missing file should fail")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TP_NAME", "from-env")
	t.Setenv("TP_POOL_WORKERS", "16")
	t.Setenv("TP_POOL_POLLINTERVAL", "250ms")
	t.Setenv("TP_POOL_ADDRESSES", "a:1, b:2")

	cfg := testConfig{Name: "from-file"}
	if err := ApplyEnvOverrides("TP", &cfg); err != nil {
		t.Fatalf("ApplyEnvOverrides() error = %v", err)
	}

	if cfg.Name != "from-env" {
		t.Errorf("Name = %q, want from-env", cfg.Name)
	}
	if cfg.Pool.Workers != 16 {
		t.Errorf("Pool.Workers = %d, want 16", cfg.Pool.Workers)
	}
	if cfg.Pool.PollInterval != 250*time.Millisecond {
		t.Errorf("Pool.PollInterval = %v, want 250ms", cfg.Pool.PollInterval)
	}
	if len(cfg.Pool.Addresses) != 2 || cfg.Pool.Addresses[1] != "b:2" {
		t.Errorf("Pool.Addresses = %v, want [a:1 b:2]", cfg.Pool.Addresses)
	}
}

func TestApplyEnvOverrides_InvalidTarget(t *testing.T) {
	var notAStruct int
	if err := ApplyEnvOverrides("TP", &notAStruct); err == nil {
		t.Error("ApplyEnvOverrides() with non-struct target should fail")
	}
}

func TestApplyEnvOverrides_BadValue(t *testing.T) {
	t.Setenv("TP_POOL_WORKERS", "not-a-number")

	var cfg testConfig
	err := ApplyEnvOverrides("TP", &cfg)
	if err == nil || !strings.Contains(err.Error(), "WORKERS") {
		t.Errorf("ApplyEnvOverrides() error = %v, want env key in message", err)
	}
}

func TestLoadWithEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
name: demo
pool:
  workers: 4
`)
	t.Setenv("TP_POOL_WORKERS", "32")

	var cfg testConfig
	if err := LoadWithEnv(path, "TP", &cfg); err != nil {
		t.Fatalf("LoadWithEnv() error = %v", err)
	}
	if cfg.Pool.Workers != 32 {
		t.Errorf("Pool.Workers = %d, want 32 (env should win over file)", cfg.Pool.Workers)
	}
	if cfg.Name != "demo" {
		t.Errorf("Name = %q, want demo (file value kept)", cfg.Name)
	}
}

func TestValidators(t *testing.T) {
	cfg := testConfig{Name: "demo", Pool: testPoolBlock{Workers: 4}}

	if err := Validate(&cfg, RequiredFields("Name", "Pool.Workers")); err != nil {
		t.Errorf("RequiredFields on populated config error = %v", err)
	}
	if err := Validate(&testConfig{}, RequiredFields("Name")); err == nil {
		t.Error("RequiredFields on empty config should fail")
	}

	if err := Validate(&cfg, RangeValidator("Pool.Workers", 1, 64)); err != nil {
		t.Errorf("RangeValidator in range error = %v", err)
	}
	if err := Validate(&cfg, RangeValidator("Pool.Workers", 8, 64)); err == nil {
		t.Error("RangeValidator out of range should fail")
	}

	if err := Validate(&cfg, OneOfValidator("Name", "demo", "prod")); err != nil {
		t.Errorf("OneOfValidator with allowed value error = %v", err)
	}
	if err := Validate(&cfg, OneOfValidator("Name", "prod")); err == nil {
		t.Error("OneOfValidator with disallowed value should fail")
	}
}

func TestSaveAndReloadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := testConfig{Name: "roundtrip", Pool: testPoolBlock{Workers: 3}}

	if err := SaveYAML(path, &cfg); err != nil {
		t.Fatalf("SaveYAML() error = %v", err)
	}

	var loaded testConfig
	if err := LoadYAML(path, &loaded); err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}
	if loaded.Name != "roundtrip" || loaded.Pool.Workers != 3 {
		t.Errorf("reloaded config = %+v, want original values", loaded)
	}
}

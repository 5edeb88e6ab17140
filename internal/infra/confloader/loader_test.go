package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Bench struct {
		Workers int    `koanf:"workers"`
		Rate    int    `koanf:"rate"`
		MaxSize string `koanf:"max_size"`
	} `koanf:"bench"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
bench:
  workers: 8
  max_size: "64KiB"
log:
  level: "debug"
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if n := l.GetInt("bench.workers"); n != 8 {
		t.Errorf("bench.workers = %d, want 8", n)
	}
	if lvl := l.GetString("log.level"); lvl != "debug" {
		t.Errorf("log.level = %q, want %q", lvl, "debug")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("MEMRES_BENCH_WORKERS", "16")
	t.Setenv("MEMRES_LOG_LEVEL", "warn")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if n := l.GetInt("bench.workers"); n != 16 {
		t.Errorf("bench.workers = %d, want 16", n)
	}
	if lvl := l.GetString("log.level"); lvl != "warn" {
		t.Errorf("log.level = %q, want %q", lvl, "warn")
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_BENCH_RATE", "5000")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if rate := l.GetInt("bench.rate"); rate != 5000 {
		t.Errorf("bench.rate = %d, want 5000", rate)
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()

	data := map[string]any{
		"bench.workers": 4,
		"debug":         true,
	}

	if err := l.LoadMap(data); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if n := l.GetInt("bench.workers"); n != 4 {
		t.Errorf("bench.workers = %d, want 4", n)
	}
	if !l.GetBool("debug") {
		t.Error("debug should be true")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
bench:
  workers: 2
`)

	// Environment overrides the file.
	t.Setenv("MEMRES_BENCH_WORKERS", "32")

	l := NewLoader(WithConfigFile(path))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bench.Workers != 32 {
		t.Errorf("Workers = %d, want 32 (env should override file)", cfg.Bench.Workers)
	}
}

func TestLoader_Unmarshal(t *testing.T) {
	path := writeConfig(t, `
bench:
  workers: 8
  rate: 10000
  max_size: "4KiB"
log:
  level: "info"
`)

	l := NewLoader(WithConfigFile(path))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bench.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Bench.Workers)
	}
	if cfg.Bench.Rate != 10000 {
		t.Errorf("Rate = %d, want 10000", cfg.Bench.Rate)
	}
	if cfg.Bench.MaxSize != "4KiB" {
		t.Errorf("MaxSize = %q, want %q", cfg.Bench.MaxSize, "4KiB")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()

	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_Exists(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"bench.rate": 0,
	})

	if !l.Exists("bench.rate") {
		t.Error("Exists(bench.rate) = false for a present key (zero value)")
	}
	if l.Exists("bench.workers") {
		t.Error("Exists(bench.workers) = true for an absent key")
	}
}

func TestLoader_AllAndKeys(t *testing.T) {
	l := NewLoader()
	l.LoadMap(map[string]any{
		"key1": "value1",
		"key2": "value2",
	})

	if all := l.All(); len(all) < 2 {
		t.Errorf("All() returned %d keys, want at least 2", len(all))
	}
	if keys := l.Keys(); len(keys) < 2 {
		t.Errorf("Keys() returned %d keys, want at least 2", len(keys))
	}
}

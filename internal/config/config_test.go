package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
debug: true
server:
  host: 0.0.0.0
  port: 9191
search:
  max_results: 5
  debounce_ms: 150
  weights:
    keyword: 0.5
    semantic: 0.5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not parsed")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9191 {
		t.Errorf("server: %+v", cfg.Server)
	}
	if cfg.Search.MaxResults != 5 || cfg.Search.DebounceMs != 150 {
		t.Errorf("search: %+v", cfg.Search)
	}
	if cfg.Search.Weights.Keyword != 0.5 || cfg.Search.Weights.Semantic != 0.5 {
		t.Errorf("weights: %+v", cfg.Search.Weights)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error")
	}
}

func TestLoad_ExpandDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
storage:
  database_path: ./data/db.sqlite
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(dir, "data/db.sqlite")
	if filepath.Clean(cfg.Storage.DatabasePath) != filepath.Clean(want) {
		t.Errorf("database_path = %q, want %q", cfg.Storage.DatabasePath, want)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Search.DebounceMs != 400 {
		t.Errorf("debounce default: %d", cfg.Search.DebounceMs)
	}
	if cfg.Search.MaxResults != 20 || cfg.Search.TopKCandidates != 50 {
		t.Errorf("search defaults: %+v", cfg.Search)
	}
	if cfg.Search.MemoryHalfLifeHours != 72 || cfg.Search.RecencyHalfLifeHours != 336 {
		t.Errorf("half-life defaults: %+v", cfg.Search)
	}
	sum := cfg.Search.Weights.Keyword + cfg.Search.Weights.Semantic +
		cfg.Search.Weights.Entity + cfg.Search.Weights.Recency +
		cfg.Search.Weights.Relationship
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("default weights sum to %f", sum)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("embedding dims: %d", cfg.Embedding.Dimensions)
	}
	if len(cfg.Search.SelfTestQueries) == 0 {
		t.Error("no default self-test queries")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Search.DebounceMs = 100
	cfg.Search.Weights = ScoreWeights{Keyword: 1}
	ApplyDefaults(cfg)
	if cfg.Search.DebounceMs != 100 {
		t.Errorf("explicit debounce overwritten: %d", cfg.Search.DebounceMs)
	}
	if cfg.Search.Weights.Keyword != 1 || cfg.Search.Weights.Semantic != 0 {
		t.Errorf("explicit weights overwritten: %+v", cfg.Search.Weights)
	}
}

func TestApplyDefaults_WatchRecursiveWhenDirectoriesSet(t *testing.T) {
	cfg := &Config{}
	cfg.Watch.Directories = []string{"/tmp/docs"}
	ApplyDefaults(cfg)
	if cfg.Watch.Recursive == nil || !*cfg.Watch.Recursive {
		t.Error("recursive should default to true when directories are set")
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	var w WatchConfig
	if !w.RecursiveOrDefault() {
		t.Error("unset should default to true")
	}
	f := false
	w.Recursive = &f
	if w.RecursiveOrDefault() {
		t.Error("explicit false should hold")
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Watch.Directories = []string{"/tmp/a", "/tmp/b"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if len(loaded.Watch.Directories) != 2 {
		t.Errorf("round trip lost watch dirs: %v", loaded.Watch.Directories)
	}
}

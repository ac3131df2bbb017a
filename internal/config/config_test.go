package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging defaults: %+v", cfg)
	}
	if cfg.Engine.MaxRetries != 2 {
		t.Errorf("maxRetries default: got %d, want 2", cfg.Engine.MaxRetries)
	}
	if cfg.Engine.Thresholds.MinDataChunks != 5 || cfg.Engine.Thresholds.MinReportLength != 3000 {
		t.Errorf("threshold defaults: %+v", cfg.Engine.Thresholds)
	}
	if cfg.Engine.Temperatures.Writer != 0.5 {
		t.Errorf("writer temperature default: got %v", cfg.Engine.Temperatures.Writer)
	}
}

func TestLoadFromPath_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `log_level: debug
model: llama-3.1-8b-instant
engine:
  max_retries: 4
  thresholds:
    min_report_length: 5000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Model != "llama-3.1-8b-instant" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Engine.MaxRetries != 4 {
		t.Errorf("engine.max_retries: got %d, want 4", cfg.Engine.MaxRetries)
	}
	if cfg.Engine.Thresholds.MinReportLength != 5000 {
		t.Errorf("min_report_length: got %d, want 5000", cfg.Engine.Thresholds.MinReportLength)
	}
	// Untouched fields keep their defaults.
	if cfg.LogFormat != "text" || cfg.SearchDepth != "advanced" {
		t.Errorf("defaults lost on partial load: %+v", cfg)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"log_format":"json","max_search_results":8}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.LogFormat != "json" || cfg.MaxSearchResults != 8 {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoad_DetectJSON(t *testing.T) {
	cfg, err := Load([]byte(`{"log_level":"warn"}`), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("got %q", cfg.LogLevel)
	}
}

func TestLoad_DetectYAML(t *testing.T) {
	cfg, err := Load([]byte("log_level: error\n"), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("got %q", cfg.LogLevel)
	}
}

func TestLoad_Malformed(t *testing.T) {
	if _, err := Load([]byte("{not json"), ".json"); err == nil {
		t.Error("malformed json must error")
	}
	if _, err := Load([]byte("log_level: [unclosed\n"), ".yaml"); err == nil {
		t.Error("malformed yaml must error")
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file must error")
	}
}

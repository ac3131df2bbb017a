// Package config loads the application configuration from YAML or JSON
// files, with compiled-in defaults for every field.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"

	"finsight/internal/generate"
	"finsight/internal/report"
	"finsight/internal/research"
	"finsight/internal/workflow"
)

// Config is the full application configuration.
type Config struct {
	LogLevel  string `json:"log_level" yaml:"log_level"`   // debug, info, warn, error
	LogFormat string `json:"log_format" yaml:"log_format"` // text or json

	// BasePath is the root directory for per-run artifact directories.
	BasePath string `json:"base_path" yaml:"base_path"`

	Model         string `json:"model" yaml:"model"`
	GroqKeyFile   string `json:"groq_key_file" yaml:"groq_key_file"`
	TavilyKeyFile string `json:"tavily_key_file" yaml:"tavily_key_file"`

	MaxSearchResults int    `json:"max_search_results" yaml:"max_search_results"`
	SearchDepth      string `json:"search_depth" yaml:"search_depth"`

	Engine workflow.EngineConfig `json:"engine" yaml:"engine"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		LogLevel:         "info",
		LogFormat:        "text",
		BasePath:         report.DefaultBasePath,
		Model:            generate.DefaultModel,
		GroqKeyFile:      "groq_key.txt",
		TavilyKeyFile:    "tavily_key.txt",
		MaxSearchResults: research.DefaultMaxResults,
		SearchDepth:      research.DefaultSearchDepth,
		Engine:           workflow.DefaultEngineConfig(),
	}
}

// LoadFromPath reads a config file (YAML or JSON) over the defaults.
// Format is detected by extension (.yaml/.yml → YAML, .json → JSON) or by
// content (first non-whitespace char).
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config from bytes onto the defaults. ext is the file extension
// for format hint; empty = detect from content.
func Load(data []byte, ext string) (Config, error) {
	cfg := Default()
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	switch ext {
	case ".yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config json: %w", err)
		}
	default:
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "{") {
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config json: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	return cfg, nil
}

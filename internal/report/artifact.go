package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultBasePath is the default root directory for run artifacts.
const DefaultBasePath = ".finsight/runs"

// Artifact filenames written alongside state.json in the run directory.
const (
	AnalysisFilename = "analysis.json"
	ReportFilename   = "report.md"
)

// Slug derives a filesystem-safe run directory name from a topic.
func Slug(topic string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(topic) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// RunDir returns the per-run directory path: {basePath}/{slug}/
func RunDir(basePath, topic string) string {
	slug := Slug(topic)
	if slug == "" {
		slug = "run"
	}
	return filepath.Join(basePath, slug)
}

// EnsureRunDir creates the per-run directory if it doesn't exist.
func EnsureRunDir(basePath, topic string) (string, error) {
	dir := RunDir(basePath, topic)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	return dir, nil
}

// ListRunDirs lists all run directories under the base path.
func ListRunDirs(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list run dirs: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(basePath, e.Name()))
		}
	}
	return dirs, nil
}

// ReadArtifact reads a typed JSON artifact from the run directory.
// Returns nil without error when the file does not exist.
func ReadArtifact[T any](runDir, filename string) (*T, error) {
	path := filepath.Join(runDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read artifact %s: %w", filename, err)
	}
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", filename, err)
	}
	return &result, nil
}

// WriteArtifact writes a typed JSON artifact to the run directory.
func WriteArtifact(runDir, filename string, data any) error {
	path := filepath.Join(runDir, filename)
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", filename, err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write artifact %s: %w", filename, err)
	}
	return nil
}

// WriteReport writes the report text to the run directory and returns its path.
func WriteReport(runDir, content string) (string, error) {
	path := filepath.Join(runDir, ReportFilename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

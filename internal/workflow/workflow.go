// Package workflow implements the gated report-generation state machine:
// four sequential stages (Collect, Analyze, Write, Edit), a deterministic
// quality gate after Analyze and after Edit, bounded retry budgets, and a
// disclaimer early-exit path when data retries are exhausted.
package workflow

import (
	"context"
	"errors"

	"finsight/internal/report"
)

// Researcher produces raw research material for a set of queries. It must be
// safe to return zero chunks (search or network failure) without breaking
// the run; stages convert its errors into soft failures.
type Researcher interface {
	Search(ctx context.Context, queries []string) ([]report.TextChunk, error)
}

// Generator produces text for a prompt at a given sampling temperature.
// Failures (timeout, empty output) surface as errors the stages degrade
// locally rather than propagate.
type Generator interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// ErrContractViolation marks a programming-logic error: a stage or gate was
// invoked with a required input absent. It is fatal to the run and surfaced
// to the caller, unlike collaborator failures and quality rejections.
var ErrContractViolation = errors.New("workflow contract violation")

// Temperatures holds the per-stage sampling temperatures.
type Temperatures struct {
	Collector float64 `yaml:"collector" json:"collector"`
	Analyst   float64 `yaml:"analyst" json:"analyst"`
	Writer    float64 `yaml:"writer" json:"writer"`
	Editor    float64 `yaml:"editor" json:"editor"`
}

// DefaultTemperatures mirrors the production tuning: near-deterministic
// collection and editing, more freedom for the writer.
func DefaultTemperatures() Temperatures {
	return Temperatures{Collector: 0.1, Analyst: 0.3, Writer: 0.5, Editor: 0.2}
}

// EngineConfig is the immutable per-run configuration. It is read-only for
// the lifetime of a run; concurrent runs may share one value.
type EngineConfig struct {
	Thresholds   Thresholds   `yaml:"thresholds" json:"thresholds"`
	Temperatures Temperatures `yaml:"temperatures" json:"temperatures"`

	// MaxRetries bounds each gate's retry budget independently.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// RunDir, when set, receives state.json and artifacts after every
	// committed transition. Empty disables persistence.
	RunDir string `yaml:"-" json:"-"`
}

// DefaultEngineConfig returns the production configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Thresholds:   DefaultThresholds(),
		Temperatures: DefaultTemperatures(),
		MaxRetries:   2,
	}
}

// Result is what a caller gets back from a run: a terminal status, the
// best-effort report text, the diagnostic trail, and the attempt counts.
type Result struct {
	Status        report.Status `json:"status"`
	FinalReport   string        `json:"final_report"`
	QualityNotes  []string      `json:"quality_notes,omitempty"`
	DataRetries   int           `json:"data_retries"`
	ReportRetries int           `json:"report_retries"`
}

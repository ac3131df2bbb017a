// Package report defines the shared run state threaded through the report
// generation workflow: the immutable inputs, the accumulated research data,
// the structured analysis, drafts, retry counters, and the transition history.
package report

import "time"

// Status is the terminal-facing status of a report run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusEarlyExit Status = "early_exit"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Step identifies a node in the report workflow.
type Step string

const (
	StepInit      Step = "INIT"
	StepCollect   Step = "COLLECT"
	StepAnalyze   Step = "ANALYZE"
	StepWrite     Step = "WRITE"
	StepEdit      Step = "EDIT"
	StepDone      Step = "DONE"
	StepEarlyExit Step = "EARLY_EXIT"
	StepCancelled Step = "CANCELLED"
)

// Terminal reports whether the step ends the run.
func (s Step) Terminal() bool {
	switch s {
	case StepDone, StepEarlyExit, StepCancelled:
		return true
	default:
		return false
	}
}

// TextChunk is one piece of raw research material with provenance.
type TextChunk struct {
	SourceURL   string    `json:"source_url"`
	Text        string    `json:"text"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// Analysis is the structured extraction produced by the Analyze stage.
// Metrics maps a metric name (e.g. "revenue") to its reported value.
type Analysis struct {
	Metrics  map[string]string `json:"metrics"`
	Insights []string          `json:"insights"`
	Trends   []string          `json:"trends"`
}

// Empty reports whether the analysis carries no extracted signal. An empty
// analysis is what the Analyze stage produces on a parse failure, so the
// quality gate rejects it naturally.
func (a *Analysis) Empty() bool {
	return a == nil || (len(a.Metrics) == 0 && len(a.Insights) == 0 && len(a.Trends) == 0)
}

// StepRecord logs one committed transition.
type StepRecord struct {
	Step      Step   `json:"step"`
	Outcome   string `json:"outcome"`
	RuleID    string `json:"rule_id"`
	Timestamp string `json:"timestamp"`
}

// RunState tracks one report run. It is exclusively owned by the workflow
// engine for the run's lifetime; stages only populate their designated
// output fields, and the engine alone touches retry counters and status.
// Persisted to disk (JSON) so the CLI can inspect a run.
type RunState struct {
	Topic string `json:"topic"`
	Focus string `json:"focus,omitempty"`

	RawData []TextChunk `json:"raw_data,omitempty"`

	Analysis    *Analysis `json:"analysis,omitempty"`
	DraftReport string    `json:"draft_report,omitempty"`
	FinalReport string    `json:"final_report,omitempty"`

	DataRetryCount   int `json:"data_retry_count"`
	ReportRetryCount int `json:"report_retry_count"`

	CurrentStep  Step         `json:"current_step"`
	Status       Status       `json:"status"`
	QualityNotes []string     `json:"quality_notes,omitempty"`
	History      []StepRecord `json:"history,omitempty"`
}

package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finsight/internal/analysis"
	"finsight/internal/logging"
	"finsight/internal/report"
)

// StageRunner wraps one pipeline stage. Run may only populate the stage's
// designated output fields and append to rawData/qualityNotes; retry counters
// and status belong to the engine. A returned error is always a contract
// violation; collaborator failures are absorbed as degraded output.
type StageRunner interface {
	Name() report.Step
	Run(ctx context.Context, state *report.RunState) error
}

// CollectStage gathers raw research chunks for the topic. A researcher
// failure yields zero new chunks plus a note, never an aborted run.
type CollectStage struct {
	Researcher Researcher
}

func (s *CollectStage) Name() report.Step { return report.StepCollect }

func (s *CollectStage) Run(ctx context.Context, state *report.RunState) error {
	logger := logging.New("collect")
	queries := buildQueries(state.Topic, state.Focus, state.DataRetryCount)

	chunks, err := s.Researcher.Search(ctx, queries)
	if err != nil {
		state.AppendNote(fmt.Sprintf("data collection failed: %v", err))
		logger.Warn("researcher failed, continuing with existing data", "error", err)
		return nil
	}

	added := state.AddChunks(chunks)
	logger.Info("collection pass complete",
		"queries", len(queries), "returned", len(chunks), "added", added, "total", len(state.RawData))

	if added == 0 && len(chunks) == 0 {
		state.AppendNote("data collection returned no results")
		return nil
	}

	// Relevance is advisory only; the gate judges volume, not topicality.
	if word := firstWord(state.Topic); word != "" && len(state.RawData) > 0 {
		relevant := 0
		for _, c := range state.RawData {
			if strings.Contains(strings.ToLower(c.Text), strings.ToLower(word)) {
				relevant++
			}
		}
		if relevant*5 < len(state.RawData) {
			state.AppendNote(fmt.Sprintf("low relevance: only %d/%d chunks mention %s", relevant, len(state.RawData), word))
		}
	}
	return nil
}

// AnalyzeStage extracts structured metrics, insights, and trends from the
// cumulative raw data. Malformed generator output is not a crash: it leaves
// an empty analysis the gate rejects through the normal retry path.
type AnalyzeStage struct {
	Generator   Generator
	Temperature float64
}

func (s *AnalyzeStage) Name() report.Step { return report.StepAnalyze }

func (s *AnalyzeStage) Run(ctx context.Context, state *report.RunState) error {
	logger := logging.New("analyze")
	empty := &report.Analysis{Metrics: map[string]string{}}

	if len(state.RawData) == 0 {
		state.Analysis = empty
		state.AppendNote("no raw data to analyze")
		return nil
	}

	out, err := s.Generator.Complete(ctx, analysisPrompt(state.Topic, state.RawData), s.Temperature)
	if err != nil {
		state.Analysis = empty
		state.AppendNote(fmt.Sprintf("analysis generation failed: %v", err))
		logger.Warn("generator failed, leaving empty analysis", "error", err)
		return nil
	}

	a, err := analysis.Parse(out)
	if err != nil {
		state.Analysis = empty
		state.AppendNote(fmt.Sprintf("analysis output malformed: %v", err))
		logger.Warn("parse failed, leaving empty analysis", "error", err)
		return nil
	}

	state.Analysis = a
	logger.Info("analysis extracted",
		"metrics", len(a.Metrics), "insights", len(a.Insights), "trends", len(a.Trends))
	return nil
}

// WriteStage drafts the report from the analysis. It reads the analysis,
// never the raw data. On generator failure it falls back to a deterministic
// skeleton so the draft is never empty.
type WriteStage struct {
	Generator   Generator
	Temperature float64
}

func (s *WriteStage) Name() report.Step { return report.StepWrite }

func (s *WriteStage) Run(ctx context.Context, state *report.RunState) error {
	if state.Analysis == nil {
		return fmt.Errorf("%w: write stage invoked with no analysis", ErrContractViolation)
	}
	logger := logging.New("write")

	draft, err := s.Generator.Complete(ctx,
		writerPrompt(state.Topic, state.Focus, state.Analysis, state.ReportRetryCount), s.Temperature)
	if err != nil {
		state.DraftReport = fallbackReport(state.Topic, state.Analysis)
		state.AppendNote(fmt.Sprintf("report generation failed, using fallback skeleton: %v", err))
		logger.Warn("generator failed, using fallback draft", "error", err)
		return nil
	}

	state.DraftReport = draft
	logger.Info("draft written", "chars", len(draft))
	return nil
}

// EditStage polishes the draft and prepends the report metadata header.
// On generator failure the unedited draft stands.
type EditStage struct {
	Generator   Generator
	Temperature float64
}

func (s *EditStage) Name() report.Step { return report.StepEdit }

func (s *EditStage) Run(ctx context.Context, state *report.RunState) error {
	if state.DraftReport == "" {
		return fmt.Errorf("%w: edit stage invoked with no draft", ErrContractViolation)
	}
	logger := logging.New("edit")

	edited, err := s.Generator.Complete(ctx, editorPrompt(state.Topic, state.DraftReport), s.Temperature)
	if err != nil {
		state.AppendNote(fmt.Sprintf("editing failed, keeping unedited draft: %v", err))
		logger.Warn("generator failed, keeping draft as-is", "error", err)
		edited = state.DraftReport
	}

	state.DraftReport = metadataHeader(state.Topic) + strings.TrimSpace(edited)
	logger.Info("draft edited", "chars", len(state.DraftReport))
	return nil
}

// metadataHeader is the publication header prepended at edit time.
func metadataHeader(topic string) string {
	return fmt.Sprintf(`---
**Financial Analysis Report**

**Company:** %s

**Generated:** %s

---

`, topic, time.Now().UTC().Format("2006-01-02"))
}

// fallbackReport assembles a minimal six-section report directly from the
// analysis. It keeps the draft non-empty when the generator is unreachable;
// the gate will usually still reject it, feeding the retry budget.
func fallbackReport(topic string, a *report.Analysis) string {
	var b strings.Builder
	for _, section := range RequiredSections {
		fmt.Fprintf(&b, "## %s\n\n", section)
		switch section {
		case "Financial Performance":
			for _, name := range []string{"revenue", "profit", "growth_rate"} {
				if v := a.Metrics[name]; v != "" {
					fmt.Fprintf(&b, "- %s: %s\n", name, v)
				}
			}
		case "Key Insights":
			for _, in := range a.Insights {
				fmt.Fprintf(&b, "- %s\n", in)
			}
		default:
			fmt.Fprintf(&b, "Automated draft for %s; generation was unavailable for this section.\n", topic)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

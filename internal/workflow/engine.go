package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"finsight/internal/logging"
	"finsight/internal/report"
)

// Routing rule IDs recorded in the run history.
const (
	ruleStart          = "START"
	ruleSequence       = "SEQ"
	ruleGate1Accept    = "G1-ACCEPT"
	ruleGate1Retry     = "G1-RETRY"
	ruleGate1Exhausted = "G1-EXHAUSTED"
	ruleGate2Accept    = "G2-ACCEPT"
	ruleGate2Retry     = "G2-RETRY"
	ruleGate2Exhausted = "G2-EXHAUSTED"
	ruleCancelled      = "CANCELLED"
)

// Engine drives one report run through the stage/gate state machine.
// It exclusively owns the RunState for the run's lifetime: stages get the
// state only after the prior transition fully commits, and the engine alone
// mutates retry counters, status, and finalReport.
//
// An Engine instance serves a single run at a time. Concurrent runs each get
// their own Engine with their own collaborator handles; only EngineConfig is
// shared, and it is read-only.
type Engine struct {
	cfg    EngineConfig
	gate   *QualityGate
	logger *slog.Logger

	collect *CollectStage
	analyze *AnalyzeStage
	write   *WriteStage
	edit    *EditStage
}

// NewEngine wires the four stages and the gate to the given collaborators.
func NewEngine(r Researcher, g Generator, cfg EngineConfig) *Engine {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Engine{
		cfg:     cfg,
		gate:    &QualityGate{Thresholds: cfg.Thresholds},
		logger:  logging.New("engine"),
		collect: &CollectStage{Researcher: r},
		analyze: &AnalyzeStage{Generator: g, Temperature: cfg.Temperatures.Analyst},
		write:   &WriteStage{Generator: g, Temperature: cfg.Temperatures.Writer},
		edit:    &EditStage{Generator: g, Temperature: cfg.Temperatures.Editor},
	}
}

// Run executes the full workflow for a topic and blocks until a terminal
// state. The caller always receives a Result; the error is non-nil only for
// a contract violation, which is the one path without report text besides
// cancellation. Cancellation is honored between stages, not mid-call.
func (e *Engine) Run(ctx context.Context, topic, focus string) (*Result, error) {
	state := report.NewRunState(topic, focus)
	report.Advance(state, report.StepCollect, ruleStart, "start run")
	e.persist(state)

	for !state.CurrentStep.Terminal() {
		if ctx.Err() != nil {
			state.Status = report.StatusCancelled
			report.Advance(state, report.StepCancelled, ruleCancelled, "run cancelled between stages")
			e.persist(state)
			return e.result(state), nil
		}

		var err error
		switch state.CurrentStep {
		case report.StepCollect:
			err = e.runCollect(ctx, state)
		case report.StepAnalyze:
			err = e.runAnalyze(ctx, state)
		case report.StepWrite:
			err = e.runWrite(ctx, state)
		case report.StepEdit:
			err = e.runEdit(ctx, state)
		default:
			err = fmt.Errorf("%w: engine reached unexpected step %s", ErrContractViolation, state.CurrentStep)
		}
		if err != nil {
			state.Status = report.StatusFailed
			e.persist(state)
			return e.result(state), err
		}
		e.persist(state)
	}

	return e.result(state), nil
}

func (e *Engine) runCollect(ctx context.Context, state *report.RunState) error {
	if err := e.collect.Run(ctx, state); err != nil {
		return err
	}
	report.Advance(state, report.StepAnalyze, ruleSequence,
		fmt.Sprintf("collection complete: %d chunks", len(state.RawData)))
	return nil
}

// runAnalyze runs the Analyze stage and applies the Gate1 transition policy:
// accept advances to Write; reject either re-enters Collect (budget left,
// raw data kept so attempts are additive) or exits early with a disclaimer.
func (e *Engine) runAnalyze(ctx context.Context, state *report.RunState) error {
	if err := e.analyze.Run(ctx, state); err != nil {
		return err
	}

	ok, diags, err := e.gate.EvaluateData(state)
	if err != nil {
		return err
	}
	for _, d := range diags {
		state.AppendNote(d)
	}

	switch {
	case ok:
		e.logger.Info("data gate accepted", "chunks", len(state.RawData))
		report.Advance(state, report.StepWrite, ruleGate1Accept, "analysis accepted")
	case state.DataRetryCount < e.cfg.MaxRetries:
		state.DataRetryCount++
		e.logger.Info("data gate rejected, retrying collection",
			"attempt", state.DataRetryCount, "issues", len(diags))
		report.Advance(state, report.StepCollect, ruleGate1Retry,
			fmt.Sprintf("data quality rejected; retry %d of %d", state.DataRetryCount, e.cfg.MaxRetries))
	default:
		// Write and Edit never run on data the gate has rejected.
		e.logger.Warn("data retries exhausted, issuing disclaimer", "attempts", state.DataRetryCount+1)
		state.FinalReport = disclaimerReport(state)
		state.Status = report.StatusEarlyExit
		report.Advance(state, report.StepEarlyExit, ruleGate1Exhausted,
			"data retries exhausted; disclaimer issued")
	}
	return nil
}

func (e *Engine) runWrite(ctx context.Context, state *report.RunState) error {
	if err := e.write.Run(ctx, state); err != nil {
		return err
	}
	report.Advance(state, report.StepEdit, ruleSequence, "draft written")
	return nil
}

// runEdit runs the Edit stage and applies the report-gate transition policy:
// accept finalizes; reject either re-enters Write or, once the budget is
// spent, finalizes the below-threshold draft anyway. Unlike the data path,
// exhaustion here keeps the draft rather than discarding the run.
func (e *Engine) runEdit(ctx context.Context, state *report.RunState) error {
	if err := e.edit.Run(ctx, state); err != nil {
		return err
	}

	ok, diags, err := e.gate.EvaluateReport(state)
	if err != nil {
		return err
	}
	for _, d := range diags {
		state.AppendNote(d)
	}

	switch {
	case ok:
		e.logger.Info("report gate accepted", "chars", len(state.DraftReport))
		state.FinalReport = state.DraftReport
		state.Status = report.StatusSucceeded
		report.Advance(state, report.StepDone, ruleGate2Accept, "report accepted")
	case state.ReportRetryCount < e.cfg.MaxRetries:
		state.ReportRetryCount++
		e.logger.Info("report gate rejected, rewriting",
			"attempt", state.ReportRetryCount, "issues", len(diags))
		report.Advance(state, report.StepWrite, ruleGate2Retry,
			fmt.Sprintf("report quality rejected; rewrite %d of %d", state.ReportRetryCount, e.cfg.MaxRetries))
	default:
		e.logger.Warn("report retries exhausted, finalizing degraded draft")
		state.AppendNote("report finalized below quality thresholds after retry budget was exhausted")
		state.FinalReport = state.DraftReport
		state.Status = report.StatusSucceeded
		report.Advance(state, report.StepDone, ruleGate2Exhausted,
			"report retries exhausted; degraded draft finalized")
	}
	return nil
}

// persist writes the state and derived artifacts to the run directory, when
// configured. Persistence failures are logged, never fatal to the run.
func (e *Engine) persist(state *report.RunState) {
	if e.cfg.RunDir == "" {
		return
	}
	if err := report.SaveState(e.cfg.RunDir, state); err != nil {
		e.logger.Warn("persist state failed", "error", err)
	}
	if state.Analysis != nil {
		if err := report.WriteArtifact(e.cfg.RunDir, report.AnalysisFilename, state.Analysis); err != nil {
			e.logger.Warn("persist analysis failed", "error", err)
		}
	}
	if state.FinalReport != "" {
		if _, err := report.WriteReport(e.cfg.RunDir, state.FinalReport); err != nil {
			e.logger.Warn("persist report failed", "error", err)
		}
	}
}

func (e *Engine) result(state *report.RunState) *Result {
	return &Result{
		Status:        state.Status,
		FinalReport:   state.FinalReport,
		QualityNotes:  state.QualityNotes,
		DataRetries:   state.DataRetryCount,
		ReportRetries: state.ReportRetryCount,
	}
}

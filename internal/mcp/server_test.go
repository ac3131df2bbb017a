package mcp

import (
	"context"
	"strings"
	"testing"

	"finsight/internal/report"
	"finsight/internal/workflow"
)

// persistingRunner writes a terminal state to the run dir, like the real
// engine does, and returns the given result.
func persistingRunner(result *workflow.Result) RunnerFunc {
	return func(_ context.Context, topic, focus, runDir string) (*workflow.Result, error) {
		state := report.NewRunState(topic, focus)
		state.Status = result.Status
		state.FinalReport = result.FinalReport
		state.DataRetryCount = result.DataRetries
		state.ReportRetryCount = result.ReportRetries
		report.Advance(state, report.StepDone, "G2-ACCEPT", "report accepted")
		if err := report.SaveState(runDir, state); err != nil {
			return nil, err
		}
		return result, nil
	}
}

func TestGenerateReport(t *testing.T) {
	srv := NewServer(t.TempDir(), persistingRunner(&workflow.Result{
		Status:      report.StatusSucceeded,
		FinalReport: "## Executive Summary\n\ndone",
	}))

	_, out, err := srv.handleGenerateReport(context.Background(), nil, generateReportInput{Topic: "Tesla"})
	if err != nil {
		t.Fatalf("generate_report: %v", err)
	}
	if out.Status != string(report.StatusSucceeded) {
		t.Errorf("status: got %q", out.Status)
	}
	if out.RunDir == "" || !strings.HasSuffix(out.ReportPath, report.ReportFilename) {
		t.Errorf("paths: run_dir=%q report_path=%q", out.RunDir, out.ReportPath)
	}
}

func TestGenerateReport_TopicRequired(t *testing.T) {
	srv := NewServer(t.TempDir(), persistingRunner(&workflow.Result{Status: report.StatusSucceeded}))
	if _, _, err := srv.handleGenerateReport(context.Background(), nil, generateReportInput{}); err == nil {
		t.Error("empty topic must be rejected")
	}
}

func TestGenerateReport_RejectsConcurrentSameTopic(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := NewServer(t.TempDir(), func(context.Context, string, string, string) (*workflow.Result, error) {
		close(started)
		<-release
		return &workflow.Result{Status: report.StatusSucceeded}, nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = srv.handleGenerateReport(context.Background(), nil, generateReportInput{Topic: "Tesla"})
	}()
	<-started

	_, _, err := srv.handleGenerateReport(context.Background(), nil, generateReportInput{Topic: "Tesla"})
	if err == nil || !strings.Contains(err.Error(), "already in flight") {
		t.Errorf("expected in-flight rejection, got %v", err)
	}

	close(release)
	<-done
}

func TestGetRunStatus(t *testing.T) {
	base := t.TempDir()
	srv := NewServer(base, persistingRunner(&workflow.Result{
		Status:      report.StatusEarlyExit,
		FinalReport: "disclaimer",
		DataRetries: 2,
	}))
	if _, _, err := srv.handleGenerateReport(context.Background(), nil, generateReportInput{Topic: "Obscure Co"}); err != nil {
		t.Fatal(err)
	}

	_, out, err := srv.handleGetRunStatus(context.Background(), nil, getRunStatusInput{Topic: "Obscure Co"})
	if err != nil {
		t.Fatalf("get_run_status: %v", err)
	}
	if out.Status != string(report.StatusEarlyExit) || out.DataRetries != 2 || !out.HasReport {
		t.Errorf("got %+v", out)
	}
	if out.HistorySteps == 0 {
		t.Error("history must be recorded")
	}
}

func TestGetRunStatus_Unknown(t *testing.T) {
	srv := NewServer(t.TempDir(), persistingRunner(&workflow.Result{Status: report.StatusSucceeded}))
	if _, _, err := srv.handleGetRunStatus(context.Background(), nil, getRunStatusInput{Topic: "Never Ran"}); err == nil {
		t.Error("unknown topic must error")
	}
}

func TestListRuns(t *testing.T) {
	srv := NewServer(t.TempDir(), persistingRunner(&workflow.Result{
		Status:      report.StatusSucceeded,
		FinalReport: "report",
	}))
	for _, topic := range []string{"Tesla", "Apple"} {
		if _, _, err := srv.handleGenerateReport(context.Background(), nil, generateReportInput{Topic: topic}); err != nil {
			t.Fatal(err)
		}
	}

	_, out, err := srv.handleListRuns(context.Background(), nil, listRunsInput{})
	if err != nil {
		t.Fatalf("list_runs: %v", err)
	}
	if out.Total != 2 {
		t.Errorf("total: got %d, want 2", out.Total)
	}
	topics := map[string]bool{}
	for _, r := range out.Runs {
		topics[r.Topic] = true
	}
	if !topics["Tesla"] || !topics["Apple"] {
		t.Errorf("runs: %+v", out.Runs)
	}
}

func TestListRuns_EmptyBase(t *testing.T) {
	srv := NewServer(t.TempDir(), persistingRunner(&workflow.Result{Status: report.StatusSucceeded}))
	_, out, err := srv.handleListRuns(context.Background(), nil, listRunsInput{})
	if err != nil {
		t.Fatalf("list_runs: %v", err)
	}
	if out.Total != 0 {
		t.Errorf("total: got %d, want 0", out.Total)
	}
}

// Package mcp exposes report generation over the Model Context Protocol so
// agent hosts can request reports and inspect runs through stdio tools.
package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"finsight/internal/logging"
	"finsight/internal/report"
	"finsight/internal/workflow"
)

// RunnerFunc executes one report run and persists its artifacts to runDir.
// The server stays agnostic of collaborator wiring; the caller injects it.
type RunnerFunc func(ctx context.Context, topic, focus, runDir string) (*workflow.Result, error)

// Server wraps the MCP SDK server and serializes report runs per topic.
type Server struct {
	MCPServer *sdkmcp.Server
	BasePath  string

	runner RunnerFunc

	mu     sync.Mutex
	active map[string]bool // topic slug -> run in flight
}

// NewServer creates an MCP server with the report tools registered.
func NewServer(basePath string, runner RunnerFunc) *Server {
	if basePath == "" {
		basePath = report.DefaultBasePath
	}
	s := &Server{
		BasePath: basePath,
		runner:   runner,
		active:   make(map[string]bool),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "finsight", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "generate_report",
		Description: "Generate a financial analysis report for a company. Blocks until the run reaches a terminal state and returns the outcome.",
	}, s.handleGenerateReport)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_run_status",
		Description: "Get the persisted state of a report run: current step, status, retry counts, and history length.",
	}, s.handleGetRunStatus)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List all report runs under the artifact directory with their terminal status.",
	}, s.handleListRuns)
}

// --- Tool input/output types ---

type generateReportInput struct {
	Topic string `json:"topic" jsonschema:"company name or topic to analyze"`
	Focus string `json:"focus,omitempty" jsonschema:"optional focus area, e.g. profitability or cash flow"`
}

type generateReportOutput struct {
	Status        string   `json:"status"`
	RunDir        string   `json:"run_dir"`
	ReportPath    string   `json:"report_path,omitempty"`
	DataRetries   int      `json:"data_retries"`
	ReportRetries int      `json:"report_retries"`
	QualityNotes  []string `json:"quality_notes,omitempty"`
}

type getRunStatusInput struct {
	Topic string `json:"topic" jsonschema:"company name or topic of a previous run"`
}

type getRunStatusOutput struct {
	Topic         string `json:"topic"`
	Step          string `json:"step"`
	Status        string `json:"status"`
	DataRetries   int    `json:"data_retries"`
	ReportRetries int    `json:"report_retries"`
	HistorySteps  int    `json:"history_steps"`
	HasReport     bool   `json:"has_report"`
}

type listRunsInput struct{}

type runSummary struct {
	Topic  string `json:"topic"`
	RunDir string `json:"run_dir"`
	Step   string `json:"step"`
	Status string `json:"status"`
}

type listRunsOutput struct {
	Runs  []runSummary `json:"runs"`
	Total int          `json:"total"`
}

// --- Tool handlers ---

func (s *Server) handleGenerateReport(ctx context.Context, _ *sdkmcp.CallToolRequest, input generateReportInput) (*sdkmcp.CallToolResult, generateReportOutput, error) {
	logger := logging.New("mcp")
	if input.Topic == "" {
		return nil, generateReportOutput{}, fmt.Errorf("topic is required")
	}

	slug := report.Slug(input.Topic)
	s.mu.Lock()
	if s.active[slug] {
		s.mu.Unlock()
		return nil, generateReportOutput{}, fmt.Errorf("a run for %q is already in flight", input.Topic)
	}
	s.active[slug] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.active, slug)
		s.mu.Unlock()
	}()

	runDir, err := report.EnsureRunDir(s.BasePath, input.Topic)
	if err != nil {
		return nil, generateReportOutput{}, err
	}

	logger.Info("generate_report started", "topic", input.Topic, "run_dir", runDir)
	result, err := s.runner(ctx, input.Topic, input.Focus, runDir)
	if err != nil {
		return nil, generateReportOutput{}, fmt.Errorf("generate report: %w", err)
	}

	out := generateReportOutput{
		Status:        string(result.Status),
		RunDir:        runDir,
		DataRetries:   result.DataRetries,
		ReportRetries: result.ReportRetries,
		QualityNotes:  result.QualityNotes,
	}
	if result.FinalReport != "" {
		out.ReportPath = filepath.Join(runDir, report.ReportFilename)
	}
	logger.Info("generate_report finished", "topic", input.Topic, "status", out.Status)
	return nil, out, nil
}

func (s *Server) handleGetRunStatus(_ context.Context, _ *sdkmcp.CallToolRequest, input getRunStatusInput) (*sdkmcp.CallToolResult, getRunStatusOutput, error) {
	if input.Topic == "" {
		return nil, getRunStatusOutput{}, fmt.Errorf("topic is required")
	}

	runDir := report.RunDir(s.BasePath, input.Topic)
	state, err := report.LoadState(runDir)
	if err != nil {
		return nil, getRunStatusOutput{}, fmt.Errorf("load run state: %w", err)
	}
	if state == nil {
		return nil, getRunStatusOutput{}, fmt.Errorf("no run found for %q", input.Topic)
	}

	return nil, getRunStatusOutput{
		Topic:         state.Topic,
		Step:          string(state.CurrentStep),
		Status:        string(state.Status),
		DataRetries:   state.DataRetryCount,
		ReportRetries: state.ReportRetryCount,
		HistorySteps:  len(state.History),
		HasReport:     state.FinalReport != "",
	}, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, _ listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	dirs, err := report.ListRunDirs(s.BasePath)
	if err != nil {
		return nil, listRunsOutput{}, err
	}

	out := listRunsOutput{Runs: []runSummary{}}
	for _, dir := range dirs {
		state, err := report.LoadState(dir)
		if err != nil || state == nil {
			continue
		}
		out.Runs = append(out.Runs, runSummary{
			Topic:  state.Topic,
			RunDir: dir,
			Step:   string(state.CurrentStep),
			Status: string(state.Status),
		})
	}
	out.Total = len(out.Runs)
	return nil, out, nil
}

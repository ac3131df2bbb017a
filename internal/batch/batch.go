// Package batch runs report generation for many topics with a bounded
// worker pool. Per-topic failures are captured in the results, never fatal
// to the batch.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"finsight/internal/logging"
	"finsight/internal/report"
	"finsight/internal/workflow"
)

// Factory builds the collaborator pair for one run. Implementations may
// return shared clients when those are safe for concurrent use.
type Factory func() (workflow.Researcher, workflow.Generator, error)

// Request names one report to generate.
type Request struct {
	Topic string `json:"topic" yaml:"topic"`
	Focus string `json:"focus,omitempty" yaml:"focus,omitempty"`
}

// RunResult pairs a request with its outcome. Exactly one of Result and Err
// is meaningful; Err covers setup failures and contract violations.
type RunResult struct {
	Request Request
	RunDir  string
	Result  *workflow.Result
	Err     error
}

// Runner executes batches of report runs.
type Runner struct {
	Factory  Factory
	Engine   workflow.EngineConfig
	BasePath string // root for per-run artifact directories; empty disables persistence
	Parallel int    // concurrent runs; values < 1 mean sequential
}

// Run generates a report per request and returns one result per request, in
// request order. Cancellation stops in-flight runs between their stages and
// leaves the remaining requests marked with the context error.
func (r *Runner) Run(ctx context.Context, requests []Request) []RunResult {
	parallel := r.Parallel
	if parallel < 1 {
		parallel = 1
	}
	logger := logging.New("batch")
	logger.Info("batch started", "requests", len(requests), "workers", parallel)

	results := make([]RunResult, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, req := range requests {
		g.Go(func() error {
			results[i] = r.runOne(gctx, req)
			return nil
		})
	}
	_ = g.Wait() // errors captured in RunResult.Err

	succeeded := 0
	for i := range results {
		if results[i].Err == nil {
			succeeded++
		} else {
			logger.Error("run failed", "topic", results[i].Request.Topic, "error", results[i].Err)
		}
	}
	logger.Info("batch finished", "succeeded", succeeded, "failed", len(requests)-succeeded)
	return results
}

func (r *Runner) runOne(ctx context.Context, req Request) RunResult {
	out := RunResult{Request: req}

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	researcher, generator, err := r.Factory()
	if err != nil {
		out.Err = fmt.Errorf("build collaborators: %w", err)
		return out
	}

	cfg := r.Engine
	if r.BasePath != "" {
		dir, err := report.EnsureRunDir(r.BasePath, req.Topic)
		if err != nil {
			out.Err = err
			return out
		}
		out.RunDir = dir
		cfg.RunDir = dir
	}

	engine := workflow.NewEngine(researcher, generator, cfg)
	out.Result, out.Err = engine.Run(ctx, req.Topic, req.Focus)
	return out
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	yaml "go.yaml.in/yaml/v3"

	"finsight/internal/batch"
	"finsight/internal/workflow"
)

var (
	batchFile     string
	batchParallel int
	batchDeep     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate reports for many companies with a worker pool",
	Long: `Reads a YAML (or JSON) list of requests and runs the pipeline for each,
bounded by --parallel workers. Per-topic failures are reported and do not
stop the batch.

Request file format:

  - topic: Tesla
  - topic: Apple
    focus: services revenue`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "Path to request list (required)")
	batchCmd.Flags().IntVar(&batchParallel, "parallel", 2, "Concurrent runs")
	batchCmd.Flags().BoolVar(&batchDeep, "deep", false, "Expand thin search snippets with a headless browser")
	_ = batchCmd.MarkFlagRequired("file")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	data, err := os.ReadFile(batchFile)
	if err != nil {
		return fmt.Errorf("read request file: %w", err)
	}
	var requests []batch.Request
	if err := yaml.Unmarshal(data, &requests); err != nil {
		return fmt.Errorf("parse request file: %w", err)
	}
	if len(requests) == 0 {
		return fmt.Errorf("request file %s names no topics", batchFile)
	}

	runner := &batch.Runner{
		Factory: func() (workflow.Researcher, workflow.Generator, error) {
			return buildCollaborators(cfg, batchDeep)
		},
		Engine:   cfg.Engine,
		BasePath: cfg.BasePath,
		Parallel: batchParallel,
	}
	results := runner.Run(cmd.Context(), requests)

	failed := 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			fmt.Printf("FAIL  %-30s %v\n", res.Request.Topic, res.Err)
		default:
			fmt.Printf("%-5s %-30s data=%d report=%d  %s\n",
				res.Result.Status, res.Request.Topic,
				res.Result.DataRetries, res.Result.ReportRetries, res.RunDir)
		}
	}
	fmt.Printf("\n%d/%d runs completed\n", len(results)-failed, len(results))
	if failed == len(results) {
		return fmt.Errorf("all %d runs failed", failed)
	}
	return nil
}

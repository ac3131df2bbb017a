package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"finsight/internal/report"
	"finsight/internal/workflow"
)

var (
	runFocus     string
	runDeep      bool
	runNoPersist bool
)

var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Generate a financial analysis report for one company",
	Long: `Runs the full pipeline for a single topic: collect public data, extract
structured analysis, write and edit the report. Artifacts (state.json,
analysis.json, report.md) land in a per-run directory under the base path.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFocus, "focus", "", "Focus area, e.g. \"profitability\" or \"cash flow\"")
	runCmd.Flags().BoolVar(&runDeep, "deep", false, "Expand thin search snippets with a headless browser")
	runCmd.Flags().BoolVar(&runNoPersist, "no-persist", false, "Skip writing run artifacts to disk")
}

func runRun(cmd *cobra.Command, args []string) error {
	topic := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	researcher, generator, err := buildCollaborators(cfg, runDeep)
	if err != nil {
		return err
	}

	engineCfg := cfg.Engine
	if !runNoPersist {
		dir, err := report.EnsureRunDir(cfg.BasePath, topic)
		if err != nil {
			return err
		}
		engineCfg.RunDir = dir
	}

	engine := workflow.NewEngine(researcher, generator, engineCfg)
	result, err := engine.Run(cmd.Context(), topic, runFocus)
	if err != nil {
		return fmt.Errorf("run %q: %w", topic, err)
	}

	fmt.Printf("Topic:   %s\n", topic)
	fmt.Printf("Status:  %s\n", result.Status)
	fmt.Printf("Retries: data=%d report=%d\n", result.DataRetries, result.ReportRetries)
	if len(result.QualityNotes) > 0 {
		fmt.Printf("Notes:\n")
		for _, n := range result.QualityNotes {
			fmt.Printf("  - %s\n", n)
		}
	}
	switch {
	case engineCfg.RunDir != "" && result.FinalReport != "":
		fmt.Printf("Report:  %s\n", filepath.Join(engineCfg.RunDir, report.ReportFilename))
	case result.FinalReport != "":
		fmt.Printf("\n%s\n", strings.TrimSpace(result.FinalReport))
	}
	return nil
}

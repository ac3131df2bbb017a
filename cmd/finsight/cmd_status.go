package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finsight/internal/report"
)

var statusCmd = &cobra.Command{
	Use:   "status <topic>",
	Short: "Show the persisted state of a report run",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List all report runs and their terminal status",
	RunE:  runRuns,
}

func runStatus(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runDir := report.RunDir(cfg.BasePath, args[0])
	state, err := report.LoadState(runDir)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if state == nil {
		fmt.Printf("No run found for %q under %s\n", args[0], cfg.BasePath)
		fmt.Printf("Run 'finsight run %q' to start one.\n", args[0])
		return nil
	}

	fmt.Printf("Topic:   %s\n", state.Topic)
	if state.Focus != "" {
		fmt.Printf("Focus:   %s\n", state.Focus)
	}
	fmt.Printf("Step:    %s\n", state.CurrentStep)
	fmt.Printf("Status:  %s\n", state.Status)
	fmt.Printf("Retries: data=%d report=%d\n", state.DataRetryCount, state.ReportRetryCount)
	if len(state.QualityNotes) > 0 {
		fmt.Printf("Notes:\n")
		for _, n := range state.QualityNotes {
			fmt.Printf("  - %s\n", n)
		}
	}
	if len(state.History) > 0 {
		fmt.Printf("History: (%d steps)\n", len(state.History))
		for _, h := range state.History {
			fmt.Printf("  %s [%s] %s  %s\n", h.Step, h.RuleID, h.Outcome, h.Timestamp)
		}
	}
	return nil
}

func runRuns(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dirs, err := report.ListRunDirs(cfg.BasePath)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		fmt.Printf("No runs under %s\n", cfg.BasePath)
		return nil
	}

	for _, dir := range dirs {
		state, err := report.LoadState(dir)
		if err != nil || state == nil {
			continue
		}
		fmt.Printf("%-10s %-12s %s\n", state.Status, state.CurrentStep, state.Topic)
	}
	return nil
}

// finsight is the main CLI: run (single report), batch (many reports),
// status (inspect a run), runs (list runs), serve (MCP server over stdio).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "finsight",
	Short: "Quality-gated financial analysis report generation",
	Long: "Finsight generates financial analysis reports through a gated pipeline:\n" +
		"collect public data, extract structured analysis, write and edit the report,\n" +
		"with deterministic quality checks and bounded retries at each gate.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML or JSON)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

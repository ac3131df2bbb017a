package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"finsight/internal/logging"
	mcpserver "finsight/internal/mcp"
	"finsight/internal/workflow"
)

var serveDeep bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio for agent-host integration",
	Long: `Starts an MCP server over stdin/stdout exposing generate_report,
get_run_status, and list_runs tools.

The server monitors for parent process death. When the host disconnects,
the server self-terminates to prevent zombie processes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveDeep, "deep", false, "Expand thin search snippets with a headless browser")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	runner := func(ctx context.Context, topic, focus, runDir string) (*workflow.Result, error) {
		researcher, generator, err := buildCollaborators(cfg, serveDeep)
		if err != nil {
			return nil, err
		}
		engineCfg := cfg.Engine
		engineCfg.RunDir = runDir
		return workflow.NewEngine(researcher, generator, engineCfg).Run(ctx, topic, focus)
	}

	srv := mcpserver.NewServer(cfg.BasePath, runner)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting finsight MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

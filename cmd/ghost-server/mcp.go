package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ghostlabs/ghost-core/internal/browser"
	"github.com/ghostlabs/ghost-core/internal/config"
	"github.com/ghostlabs/ghost-core/internal/execution"
	"github.com/ghostlabs/ghost-core/internal/mcpserver"
)

const mcpServerVersion = "1.0.0"

// mcpCmd serves the execution engine's tool catalog over MCP stdio so an
// external agent can drive the same six tools the planner dispatches
// internally. Logs go to stderr: stdout belongs to the MCP transport.
func mcpCmd() *cobra.Command {
	var useRod bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the execution tool catalog over MCP stdio",
		Run: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				slog.Error("ghost-server mcp: failed to load config", "error", err)
				os.Exit(1)
			}

			var driver browser.Driver = browser.NewQueueingDriver()
			if useRod {
				rd, err := browser.NewRodDriver()
				if err != nil {
					slog.Error("ghost-server mcp: rod driver unavailable", "error", err)
					os.Exit(1)
				}
				driver = rd
			}

			engine := execution.NewEngine(buildLLMPort(cfg.LLM), driver, buildNotifier(cfg.Notify), nil, nil)
			srv := mcpserver.New("ghost-core", mcpServerVersion, engine)
			if err := mcpserver.ServeStdio(srv); err != nil {
				slog.Error("ghost-server mcp: server stopped with error", "error", err)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().BoolVar(&useRod, "rod", false, "drive a local browser via rod instead of queueing browser actions")
	return cmd
}

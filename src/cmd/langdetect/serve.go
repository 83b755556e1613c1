package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"langdetect-agent/src/agents"
	"langdetect-agent/src/api"
	"langdetect-agent/src/contracts"
	"langdetect-agent/src/logger"
	"langdetect-agent/src/mcp"
	"langdetect-agent/src/pipeline"
	"langdetect-agent/src/tui"
)

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serves run creation, run history, agent listing and endpoint validation
over HTTP on LANGDETECT_LISTEN_ADDR (default :8080).

In local mode an in-process worker performs queued runs. In distributed
mode, --worker also runs a registered worker in this process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		withWorker, _ := cmd.Flags().GetBool("worker")
		if addr == "" {
			addr = appConfig.ListenAddr
		}

		log := consoleLogger()
		p, err := openPipeline(cmd.Context(), log)
		if err != nil {
			return err
		}
		defer p.Close()

		if p.Mode == pipeline.LocalMode {
			if err := p.Start(cmd.Context()); err != nil {
				return err
			}
			return api.NewServer(p, log).ListenAndServe(cmd.Context(), addr)
		}

		g, gctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			return api.NewServer(p, log).ListenAndServe(gctx, addr)
		})
		if withWorker {
			g.Go(func() error {
				err := p.NewWorker(agents.DefaultNodeName, log).Run(gctx)
				if gctx.Err() != nil {
					return nil
				}
				return err
			})
		}
		return g.Wait()
	},
}

// mcpCmd serves MCP tools over stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP tools over stdio",
	Long: `Exposes detect_language, test_endpoint, run_step, get_run and list_runs
to MCP clients over stdin/stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout belongs to the protocol
		p, err := openPipeline(cmd.Context(), logger.NewSilentLogger())
		if err != nil {
			return err
		}
		defer p.Close()

		return mcp.NewServer(p).Run()
	},
}

// historyCmd opens the run-history viewer.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded runs in an interactive viewer",
	Long: `Loads recent runs from the run store and opens the terminal viewer.
With --follow, runs published on langdetect.runs appear as they finish
(requires a persistent broker).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		follow, _ := cmd.Flags().GetBool("follow")

		// the viewer owns the terminal
		p, err := openPipeline(cmd.Context(), logger.NewSilentLogger())
		if err != nil {
			return err
		}
		defer p.Close()

		runs, err := p.Store.ListRuns(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		items := make([]tui.Item, 0, len(runs))
		for _, run := range runs {
			items = append(items, tui.Item{Run: run})
		}

		var updates <-chan contracts.RunRecord
		if follow {
			updates, err = p.WatchRuns(cmd.Context(), "langdetect-history-"+uuid.NewString())
			if err != nil {
				return err
			}
		}

		return tui.Start(items, updates)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides LANGDETECT_LISTEN_ADDR)")
	serveCmd.Flags().Bool("worker", false, "Also run a worker in this process (distributed mode)")
	historyCmd.Flags().Int("limit", 0, "Number of runs to load (default 50)")
	historyCmd.Flags().BoolP("follow", "f", false, "Stream new runs into the viewer")

	rootCmd.AddCommand(serveCmd, mcpCmd, historyCmd)
}

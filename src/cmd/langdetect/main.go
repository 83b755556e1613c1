// Package main provides the langdetect CLI: a build step that detects the dominant
// language of a repository and reports it to a webhook.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"langdetect-agent/src/config"
	"langdetect-agent/src/logger"
	"langdetect-agent/src/pipeline"
	"langdetect-agent/src/provider"
)

var (
	// Path to an optional YAML configuration file
	configPath string
	// Application configuration, loaded before any command runs
	appConfig *config.Config
	// Enables debug lines in the build log
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "langdetect",
	Short: "langdetect - detect a repository's dominant language and notify a webhook",
	Long: `langdetect is a build step that makes sure an on-demand agent node is
available, looks up the dominant language of a GitHub repository and
reports it to a configured webhook as ?language=<name>.

It supports two modes:
- Local Mode: in-memory broker and store, the step runs in this process (default)
- Distributed Mode: Redpanda + Postgres, steps are queued for workers

Mode is auto-detected based on the REDPANDA_BROKERS environment variable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		appConfig, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (environment variables override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug lines")
}

// consoleLogger returns the build log used by commands that print progress.
func consoleLogger() logger.Logger {
	if verbose {
		return logger.NewConsoleLogger()
	}
	return debugFilter{logger.NewConsoleLogger()}
}

// debugFilter drops debug lines.
type debugFilter struct{ logger.Logger }

func (debugFilter) Debug(string, ...interface{}) {}

// openPipeline builds the pipeline for the loaded configuration.
func openPipeline(ctx context.Context, log logger.Logger) (*pipeline.Pipeline, error) {
	p, err := pipeline.New(ctx, appConfig, log)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s pipeline: %w", pipeline.DetectMode(appConfig), err)
	}
	return p, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", provider.WrapError(err))
		os.Exit(1)
	}
}

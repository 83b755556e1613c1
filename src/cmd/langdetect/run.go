package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"langdetect-agent/src/agents"
	"langdetect-agent/src/contracts"
	"langdetect-agent/src/pipeline"
	"langdetect-agent/src/step"
)

// errStepFailed is returned after a failed run has already been reported.
var errStepFailed = errors.New("build step failed")

var stepFlags contracts.StepConfig

func addStepFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&stepFlags.RepoURL, "repo", "", "Repository URL (overrides LANGDETECT_REPO_URL)")
	cmd.Flags().StringVar(&stepFlags.APIEndpoint, "endpoint", "", "Webhook URL (overrides LANGDETECT_API_ENDPOINT)")
}

// runCmd performs the build step in this process.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the build step once",
	Long: `Checks for an on-demand agent node (provisioning one when none is fresh),
detects the repository's dominant language and notifies the webhook.

Exits non-zero when the step fails. Under the default agent-phase policy only
agent and configuration errors fail the step; detection and webhook errors
are logged as warnings.

Example:
  langdetect run --repo https://github.com/acme/widget --endpoint https://hooks.example.com/lang`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := consoleLogger()
		p, err := openPipeline(cmd.Context(), log)
		if err != nil {
			return err
		}
		defer p.Close()

		out := p.Run(cmd.Context(), stepFlags, log)
		printOutcome(cmd, out, appConfig.FailurePolicy)
		if !out.Success {
			return fmt.Errorf("%w: %w", errStepFailed, out.Err)
		}
		return nil
	},
}

// printOutcome writes the run summary and any tolerated failures.
func printOutcome(cmd *cobra.Command, out step.Outcome, policy string) {
	w := cmd.OutOrStdout()
	for _, warning := range out.Warnings {
		fmt.Fprintf(w, "⚠️  %v (does not fail the step under policy %s)\n", warning, policy)
	}
	if out.Success {
		fmt.Fprintf(w, "✅ Run %s: language %s\n", out.Run.ID, out.Language)
		return
	}
	fmt.Fprintf(w, "❌ Run %s failed\n", out.Run.ID)
}

// submitCmd queues the build step for a worker.
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Queue the build step for a worker",
	Long: `Records a running run and publishes a request on langdetect.requests.

In local mode a worker runs inside this process, so --wait is implied.
With --wait the command blocks until the run's record is published on
langdetect.runs and exits non-zero when it failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wait, _ := cmd.Flags().GetBool("wait")
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
			wait = true
		}

		if !wait {
			runID, err := p.Submit(cmd.Context(), stepFlags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Submitted run %s\n", runID)
			return nil
		}

		run, err := p.SubmitAndWait(cmd.Context(), stepFlags)
		if err != nil {
			return err
		}
		return reportRun(cmd, run)
	},
}

func reportRun(cmd *cobra.Command, run contracts.RunRecord) error {
	if run.Status != contracts.RunStatusSucceeded {
		fmt.Fprintf(cmd.OutOrStdout(), "❌ Run %s failed: %s\n", run.ID, run.Error)
		return errStepFailed
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Run %s: language %s\n", run.ID, run.Language)
	return nil
}

// workerCmd serves queued requests.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a worker agent that performs queued build steps",
	Long: `Registers this process as an agent node, connects it, and performs
every request published on langdetect.requests until interrupted.

Requires REDPANDA_BROKERS and POSTGRES_DSN.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		log := consoleLogger()
		p, err := openPipeline(cmd.Context(), log)
		if err != nil {
			return err
		}
		defer p.Close()

		if p.Mode != pipeline.DistributedMode {
			fmt.Fprintln(os.Stderr, "⚠️  No REDPANDA_BROKERS configured: the worker only sees requests from this process")
		}

		err = p.NewWorker(name, log).Run(cmd.Context())
		if cmd.Context().Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	addStepFlags(runCmd)
	addStepFlags(submitCmd)
	submitCmd.Flags().BoolP("wait", "w", false, "Wait for the run to finish")
	workerCmd.Flags().String("name", agents.DefaultNodeName, "Node name to register")

	rootCmd.AddCommand(runCmd, submitCmd, workerCmd)
}

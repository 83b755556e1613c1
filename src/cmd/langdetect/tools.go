package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"langdetect-agent/src/agents"
	"langdetect-agent/src/github"
	"langdetect-agent/src/language"
	"langdetect-agent/src/provider"
	"langdetect-agent/src/webhook"
)

// detectCmd runs only the detection stage.
var detectCmd = &cobra.Command{
	Use:   "detect [repo-url]",
	Short: "Print the dominant language of a repository",
	Long: `Looks up the repository's language byte counts and prints the language with
the most bytes. Defaults to LANGDETECT_REPO_URL.

Example:
  langdetect detect https://github.com/acme/widget
  langdetect detect acme/widget -v`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoURL := appConfig.Step.RepoURL
		if len(args) == 1 {
			repoURL = args[0]
		}

		detector := language.NewDetector(appConfig.Step.Token, appConfig.GitHubAPIURL, consoleLogger())
		result, err := detector.DetectLanguage(cmd.Context(), repoURL)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, result.Language)

		if verbose {
			ref, err := provider.ParseRepoURL(repoURL)
			if err != nil {
				return err
			}
			client := github.NewClient(appConfig.Step.Token, github.WithBaseURL(appConfig.GitHubAPIURL))
			repo, err := client.GetRepository(cmd.Context(), ref.Owner, ref.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  repository:     %s\n", repo.FullName)
			fmt.Fprintf(w, "  bytes:          %d\n", result.Bytes)
			fmt.Fprintf(w, "  github primary: %s\n", repo.Language)
			fmt.Fprintf(w, "  default branch: %s\n", repo.DefaultBranch)
		}
		return nil
	},
}

// notifyCmd runs only the notification stage.
var notifyCmd = &cobra.Command{
	Use:   "notify <language>",
	Short: "POST a language to the webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, _ := cmd.Flags().GetString("endpoint")
		if endpoint == "" {
			endpoint = appConfig.Step.APIEndpoint
		}

		res := webhook.NewNotifier().Notify(cmd.Context(), endpoint, args[0])
		if res.Err != nil {
			return res.Err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "HTTP %d from %s\n", res.StatusCode, res.URL)
		return nil
	},
}

// validateCmd checks a webhook endpoint the way the configuration form does.
var validateCmd = &cobra.Command{
	Use:   "validate [endpoint]",
	Short: "Check that a webhook endpoint answers GET with 200",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := appConfig.Step.APIEndpoint
		if len(args) == 1 {
			endpoint = args[0]
		}

		v := webhook.NewValidator().Validate(cmd.Context(), endpoint)
		if !v.OK {
			return errors.New(v.Message)
		}
		fmt.Fprintln(cmd.OutOrStdout(), v.Message)
		return nil
	},
}

// agentsCmd lists registered nodes.
var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List registered agent nodes",
	Long: `Lists the nodes known to the registry and whether a suitable on-demand
agent is available. With --ensure, provisions one when none is.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ensure, _ := cmd.Flags().GetBool("ensure")
		log := consoleLogger()
		p, err := openPipeline(cmd.Context(), log)
		if err != nil {
			return err
		}
		defer p.Close()

		if ensure {
			if _, err := p.Provisioner.EnsureAgent(cmd.Context(), appConfig.MaxAgentAge); err != nil {
				return err
			}
		}

		nodes, err := p.Registry.Nodes(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		now := time.Now()
		for _, n := range nodes {
			state := "offline"
			if n.Online {
				state = "online"
			}
			age := "-"
			if !n.ConnectedAt.IsZero() {
				age = now.Sub(n.ConnectedAt).Round(time.Second).String()
			}
			fmt.Fprintf(w, "%-24s %-10s %-8s channel=%-5t age=%s\n", n.Name, n.Kind, state, n.HasChannel, age)
		}
		fmt.Fprintf(w, "Suitable agent available: %t\n", agents.IsSuitableAgentAvailable(nodes, appConfig.MaxAgentAge, now))
		return nil
	},
}

func init() {
	notifyCmd.Flags().String("endpoint", "", "Webhook URL (overrides LANGDETECT_API_ENDPOINT)")
	agentsCmd.Flags().Bool("ensure", false, "Provision an agent when none is available")

	rootCmd.AddCommand(detectCmd, notifyCmd, validateCmd, agentsCmd)
}

// Package pipeline wires configuration into a runnable build step.
// It is shared by the CLI, the HTTP API and the MCP server.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"langdetect-agent/src/agents"
	"langdetect-agent/src/broker"
	"langdetect-agent/src/config"
	"langdetect-agent/src/contracts"
	_ "langdetect-agent/src/github" // registers the GitHub provider
	"langdetect-agent/src/language"
	"langdetect-agent/src/logger"
	"langdetect-agent/src/step"
	"langdetect-agent/src/store"
	"langdetect-agent/src/webhook"
)

// Mode selects where step requests are executed.
type Mode int

const (
	// LocalMode runs everything in one process over an in-memory broker.
	LocalMode Mode = iota
	// DistributedMode publishes requests to Redpanda for standalone workers.
	DistributedMode
)

func (m Mode) String() string {
	if m == DistributedMode {
		return "distributed"
	}
	return "local"
}

// DetectMode returns DistributedMode when brokers are configured.
func DetectMode(cfg *config.Config) Mode {
	if cfg.Distributed() {
		return DistributedMode
	}
	return LocalMode
}

// Pipeline holds the components a build step runs against.
type Pipeline struct {
	Mode Mode

	Broker      broker.Broker
	Store       store.Store
	Registry    agents.Registry
	Provisioner *agents.Provisioner
	Detector    *language.Detector
	Notifier    *webhook.Notifier
	Validator   *webhook.Validator

	cfg    *config.Config
	policy step.Policy
	logger logger.Logger
}

// New builds a pipeline from cfg.
// Redpanda is used when brokers are configured; Postgres backs the run store and the node
// registry when a DSN is set. Distributed mode requires Postgres so workers share state.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Pipeline, error) {
	if log == nil {
		log = logger.NewSilentLogger()
	}

	policy, err := step.ParsePolicy(cfg.FailurePolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	p := &Pipeline{
		Mode:      DetectMode(cfg),
		Detector:  language.NewDetector(cfg.Step.Token, cfg.GitHubAPIURL, log),
		Notifier:  webhook.NewNotifier(),
		Validator: webhook.NewValidator(),
		cfg:       cfg,
		policy:    policy,
		logger:    log,
	}

	if p.Mode == DistributedMode && cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("%w: distributed mode requires POSTGRES_DSN", config.ErrInvalidConfig)
	}

	if cfg.PostgresDSN != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres store: %w", err)
		}
		p.Store = pg
		p.Registry = pg
	} else {
		p.Store = store.NewMemoryStore()
		p.Registry = agents.NewMemoryRegistry()
	}

	if p.Mode == DistributedMode {
		rp, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers, log)
		if err != nil {
			p.Store.Close()
			return nil, fmt.Errorf("failed to create Redpanda broker: %w", err)
		}
		p.Broker = rp
	} else {
		mem := broker.NewInMemoryBroker()
		mem.SetLogger(log)
		p.Broker = mem
	}

	p.Provisioner = agents.NewProvisioner(p.Registry, log)
	log.Debug("[Pipeline] Started in %s mode", p.Mode)
	return p, nil
}

// Config returns the configuration the pipeline was built from.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// NewStep returns a step configured with stepCfg and wired to the pipeline.
// Empty fields in stepCfg fall back to the pipeline configuration.
func (p *Pipeline) NewStep(stepCfg contracts.StepConfig) *step.Step {
	merged := p.cfg.Step
	if stepCfg.APIEndpoint != "" {
		merged.APIEndpoint = stepCfg.APIEndpoint
	}
	if stepCfg.RepoURL != "" {
		merged.RepoURL = stepCfg.RepoURL
	}
	if stepCfg.Token != "" {
		merged.Token = stepCfg.Token
	}

	detector := p.Detector
	if merged.Token != p.cfg.Step.Token {
		detector = language.NewDetector(merged.Token, p.cfg.GitHubAPIURL, p.logger)
	}

	return &step.Step{
		Config:      merged,
		MaxAgentAge: p.cfg.MaxAgentAge,
		Policy:      p.policy,
		Agents:      p.Provisioner,
		Detector:    detector,
		Notifier:    p.Notifier,
		Recorder:    p.Store,
		Publisher:   p.Broker,
	}
}

// Run performs the step in this process and returns its outcome.
func (p *Pipeline) Run(ctx context.Context, stepCfg contracts.StepConfig, log logger.Logger) step.Outcome {
	return p.NewStep(stepCfg).Perform(ctx, log)
}

// Close shuts down the broker and the store.
func (p *Pipeline) Close() error {
	return errors.Join(p.Broker.Close(), p.Store.Close())
}

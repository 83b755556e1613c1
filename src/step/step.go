// Package step runs the language detection build step: ensure a fresh agent, detect the
// repository's dominant language and notify a webhook with it.
package step

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"langdetect-agent/src/agents"
	"langdetect-agent/src/contracts"
	"langdetect-agent/src/language"
	"langdetect-agent/src/logger"
	"langdetect-agent/src/provider"
	"langdetect-agent/src/webhook"
)

// Stages of a run, in order.
const (
	StageConfig = "config"
	StageAgent  = "agent"
	StageDetect = "detect"
	StageNotify = "notify"
)

// AgentEnsurer makes sure a fresh agent is online.
type AgentEnsurer interface {
	EnsureAgent(ctx context.Context, maxAge time.Duration) (agents.EnsureResult, error)
}

// LanguageDetector resolves the dominant language of a repository.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, repoURL string) (contracts.DetectionResult, error)
}

// Notifier delivers the detected language.
type Notifier interface {
	Notify(ctx context.Context, endpoint, language string) webhook.Result
}

// RunRecorder persists run records.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *contracts.RunRecord) error
	FinishRun(ctx context.Context, run *contracts.RunRecord) error
}

// Publisher publishes finished runs; broker.Broker satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, value []byte) error
}

// Error attributes a failure to the stage it happened in.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Outcome is the result of one Perform call.
type Outcome struct {
	Run         contracts.RunRecord
	Success     bool
	Language    string
	Provisioned bool
	Notify      webhook.Result
	// Err is the error that failed the step, nil on success.
	Err error
	// Warnings are failures that were logged but did not fail the step.
	Warnings []error
}

// Step is one configured build step.
type Step struct {
	// ID is used as the run ID when set; otherwise each Perform gets a fresh UUID.
	ID string

	Config      contracts.StepConfig
	MaxAgentAge time.Duration
	Policy      Policy

	Agents   AgentEnsurer
	Detector LanguageDetector
	Notifier Notifier

	// Optional.
	Recorder  RunRecorder
	Publisher Publisher

	now func() time.Time
}

// Perform runs the step once, writing progress to log.
func (s *Step) Perform(ctx context.Context, log logger.Logger) Outcome {
	if log == nil {
		log = logger.NewSilentLogger()
	}

	out := Outcome{
		Run: contracts.RunRecord{
			ID:        s.runID(),
			RepoURL:   s.Config.RepoURL,
			Endpoint:  s.Config.APIEndpoint,
			Status:    contracts.RunStatusRunning,
			StartedAt: s.clock(),
		},
	}
	s.record(ctx, log, &out.Run, true)

	s.run(ctx, log, &out)

	out.Run.Language = out.Language
	out.Run.AgentProvisioned = out.Provisioned
	out.Run.NotifyStatus = out.Notify.StatusCode
	out.Run.FinishedAt = s.clock()
	if out.Success {
		out.Run.Status = contracts.RunStatusSucceeded
	} else {
		out.Run.Status = contracts.RunStatusFailed
		out.Run.Error = out.Err.Error()
	}

	s.record(ctx, log, &out.Run, false)
	s.publish(ctx, log, &out.Run)

	if out.Success {
		log.Info("[Step] Finished: SUCCESS (language %s)", out.Language)
	} else {
		log.Error("[Step] Finished: FAILURE: %v", out.Err)
	}
	return out
}

func (s *Step) run(ctx context.Context, log logger.Logger, out *Outcome) {
	fail := func(stage string, err error) {
		out.Err = &Error{Stage: stage, Err: err}
	}

	if err := s.validate(); err != nil {
		log.Error("[Step] Configuration error: %v", err)
		fail(StageConfig, err)
		return
	}

	// Agent phase: any error here fails the step regardless of policy.
	maxAge := s.MaxAgentAge
	if maxAge <= 0 {
		maxAge = agents.DefaultMaxAgentAge
	}
	log.Info("[Step] Checking if an agent node is available and has been running for less than %s", maxAge)
	ensured, err := s.Agents.EnsureAgent(ctx, maxAge)
	if err != nil {
		log.Error("[Step] %v", err)
		fail(StageAgent, err)
		return
	}
	out.Provisioned = ensured.Provisioned
	switch {
	case ensured.Provisioned:
		log.Info("[Step] Agent node was not available; a new agent node %s has been created", ensured.Node.Name)
	case ensured.AlreadyRegistered:
		log.Info("[Step] Agent node %s is registered but not connected or stale; waiting for it to connect", ensured.Node.Name)
	default:
		log.Info("[Step] Agent node %s is available", ensured.Node.Name)
	}

	detected, err := s.Detector.DetectLanguage(ctx, s.Config.RepoURL)
	out.Language = detected.Language
	if out.Language == "" {
		out.Language = language.Unknown
	}
	if err != nil {
		if language.IsConfigurationError(err) {
			log.Error("[Step] Configuration error: %v", err)
			fail(StageDetect, err)
			return
		}
		log.Error("[Step] Language detection failed, using %q: %v", out.Language, provider.WrapError(err))
		if !s.degrade(out, StageDetect, err) {
			fail(StageDetect, err)
		}
	}
	log.Info("[Step] Detected language: %s", out.Language)

	log.Info("[Step] Started to Trigger API")
	res := s.Notifier.Notify(ctx, s.Config.APIEndpoint, out.Language)
	out.Notify = res
	if res.Err != nil {
		if errors.Is(res.Err, webhook.ErrEndpointRequired) || errors.Is(res.Err, webhook.ErrInvalidEndpoint) {
			log.Error("[Step] Configuration error: %v", res.Err)
			fail(StageNotify, res.Err)
			return
		}
		log.Error("[Step] Failed - Triggering API %s: %v", res.URL, res.Err)
		if out.Err == nil && !s.degrade(out, StageNotify, res.Err) {
			fail(StageNotify, res.Err)
		}
	} else {
		log.Info("[Step] Successful - Triggering API: %s", res.URL)
		log.Info("[Step] Response: %s", strings.TrimSpace(res.Body))
	}

	out.Success = out.Err == nil
}

// degrade records err as a warning when the policy allows it and reports whether it did.
func (s *Step) degrade(out *Outcome, stage string, err error) bool {
	if s.Policy == PolicyStrict {
		return false
	}
	out.Warnings = append(out.Warnings, &Error{Stage: stage, Err: err})
	return true
}

// validate rejects configurations that cannot succeed before touching the registry.
func (s *Step) validate() error {
	if _, err := provider.ParseRepoURL(s.Config.RepoURL); err != nil {
		return err
	}
	if strings.TrimSpace(s.Config.Token) == "" {
		return language.ErrMissingToken
	}
	if _, err := webhook.BuildURL(s.Config.APIEndpoint, language.Unknown); err != nil {
		return err
	}
	if s.Agents == nil || s.Detector == nil || s.Notifier == nil {
		return errors.New("step is missing a collaborator")
	}
	return nil
}

func (s *Step) record(ctx context.Context, log logger.Logger, run *contracts.RunRecord, create bool) {
	if s.Recorder == nil {
		return
	}
	var err error
	if create {
		err = s.Recorder.CreateRun(ctx, run)
	} else {
		err = s.Recorder.FinishRun(ctx, run)
	}
	if err != nil {
		log.Error("[Step] Failed to record run %s: %v", run.ID, err)
	}
}

func (s *Step) publish(ctx context.Context, log logger.Logger, run *contracts.RunRecord) {
	if s.Publisher == nil {
		return
	}
	data, err := json.Marshal(run)
	if err != nil {
		log.Error("[Step] Failed to marshal run %s: %v", run.ID, err)
		return
	}
	if err := s.Publisher.Publish(ctx, contracts.TopicRuns, run.ID, data); err != nil {
		log.Error("[Step] Failed to publish run %s: %v", run.ID, err)
	}
}

func (s *Step) runID() string {
	if s.ID != "" {
		return s.ID
	}
	return uuid.NewString()
}

func (s *Step) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

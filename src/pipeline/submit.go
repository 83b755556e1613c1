package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"langdetect-agent/src/contracts"
)

// Submit queues a step run and returns its run ID.
// The run is recorded as running before the request is published, so it can be queried
// immediately.
func (p *Pipeline) Submit(ctx context.Context, stepCfg contracts.StepConfig) (string, error) {
	requestID := uuid.NewString()
	now := time.Now().UTC()

	request := contracts.StepRequest{
		RequestID:   requestID,
		RepoURL:     stepCfg.RepoURL,
		APIEndpoint: stepCfg.APIEndpoint,
		Timestamp:   now.Format(time.RFC3339),
	}

	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	merged := p.NewStep(stepCfg).Config
	run := &contracts.RunRecord{
		ID:        requestID,
		RepoURL:   merged.RepoURL,
		Endpoint:  merged.APIEndpoint,
		Status:    contracts.RunStatusRunning,
		StartedAt: now,
	}
	if err := p.Store.CreateRun(ctx, run); err != nil {
		return "", fmt.Errorf("failed to create run record: %w", err)
	}

	if err := p.Broker.Publish(ctx, contracts.TopicRequests, requestID, data); err != nil {
		return "", fmt.Errorf("failed to publish request: %w", err)
	}

	p.logger.Info("[Pipeline] Submitted run %s for %s", requestID, merged.RepoURL)
	return requestID, nil
}

// WatchRuns streams finished runs published on the runs topic.
// groupID should be unique per watcher so every watcher sees every run.
func (p *Pipeline) WatchRuns(ctx context.Context, groupID string) (<-chan contracts.RunRecord, error) {
	msgChan, err := p.Broker.Subscribe(ctx, contracts.TopicRuns, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicRuns, err)
	}

	runs := make(chan contracts.RunRecord, 16)
	go func() {
		defer close(runs)
		for msg := range msgChan {
			var run contracts.RunRecord
			if err := json.Unmarshal(msg.Value, &run); err != nil {
				p.logger.Error("[Pipeline] Failed to unmarshal run record: %v", err)
				continue
			}
			select {
			case runs <- run:
			case <-ctx.Done():
				return
			}
		}
	}()
	return runs, nil
}

// SubmitAndWait submits a run and blocks until its finished record is published.
func (p *Pipeline) SubmitAndWait(ctx context.Context, stepCfg contracts.StepConfig) (contracts.RunRecord, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	runs, err := p.WatchRuns(watchCtx, "langdetect-wait-"+uuid.NewString())
	if err != nil {
		return contracts.RunRecord{}, err
	}

	id, err := p.Submit(ctx, stepCfg)
	if err != nil {
		return contracts.RunRecord{}, err
	}

	for {
		select {
		case run, ok := <-runs:
			if !ok {
				return contracts.RunRecord{}, fmt.Errorf("run stream closed before run %s finished", id)
			}
			if run.ID == id {
				return run, nil
			}
		case <-ctx.Done():
			return contracts.RunRecord{}, ctx.Err()
		}
	}
}

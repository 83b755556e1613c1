package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"langdetect-agent/src/agents"
	"langdetect-agent/src/broker"
	"langdetect-agent/src/contracts"
	"langdetect-agent/src/logger"
)

// WorkerGroup is the consumer group shared by all workers.
const WorkerGroup = "langdetect-worker"

// disconnectTimeout bounds marking the node offline after ctx is done.
const disconnectTimeout = 5 * time.Second

// Worker consumes step requests and runs them.
type Worker struct {
	pipeline *Pipeline
	nodeName string
	logger   logger.Logger
}

// NewWorker creates a worker that reports itself as nodeName.
// An empty nodeName skips node registration.
func (p *Pipeline) NewWorker(nodeName string, log logger.Logger) *Worker {
	if log == nil {
		log = p.logger
	}
	return &Worker{pipeline: p, nodeName: nodeName, logger: log}
}

// Run registers the worker's node and processes requests until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("[Worker] Starting...")

	connector, err := w.register(ctx)
	if err != nil {
		return err
	}
	if connector != nil {
		defer w.disconnect(connector)
	}

	msgChan, err := w.subscribe(ctx)
	if err != nil {
		return err
	}
	return w.serve(ctx, msgChan)
}

func (w *Worker) subscribe(ctx context.Context) (<-chan broker.Message, error) {
	msgChan, err := w.pipeline.Broker.Subscribe(ctx, contracts.TopicRequests, WorkerGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicRequests, err)
	}
	w.logger.Info("[Worker] Listening for requests on '%s' topic...", contracts.TopicRequests)
	return msgChan, nil
}

func (w *Worker) serve(ctx context.Context, msgChan <-chan broker.Message) error {
	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				w.logger.Info("[Worker] Message channel closed, shutting down")
				return nil
			}

			if err := w.processRequest(ctx, msg); err != nil {
				w.logger.Error("[Worker] Error processing request: %v", err)
			}

		case <-ctx.Done():
			w.logger.Info("[Worker] Context cancelled, shutting down")
			return ctx.Err()
		}
	}
}

// register adds the worker's node and marks it connected, when the registry supports it.
// It returns the connector the node was connected through, or nil.
func (w *Worker) register(ctx context.Context) (agents.Connector, error) {
	if w.nodeName == "" {
		return nil, nil
	}
	connector, ok := w.pipeline.Registry.(agents.Connector)
	if !ok {
		return nil, nil
	}

	spec := agents.DefaultNodeSpec()
	spec.Name = w.nodeName
	if _, err := w.pipeline.Registry.AddNode(ctx, spec); err != nil && !errors.Is(err, agents.ErrNodeExists) {
		return nil, fmt.Errorf("failed to register node %s: %w", w.nodeName, err)
	}
	if err := connector.ConnectNode(ctx, w.nodeName, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to connect node %s: %w", w.nodeName, err)
	}
	w.logger.Info("[Worker] Connected as node %s", w.nodeName)
	return connector, nil
}

// disconnect marks the worker's node offline. ctx of Run is usually done by now.
func (w *Worker) disconnect(connector agents.Connector) {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	if err := connector.DisconnectNode(ctx, w.nodeName); err != nil {
		w.logger.Error("[Worker] Failed to disconnect node %s: %v", w.nodeName, err)
		return
	}
	w.logger.Info("[Worker] Disconnected node %s", w.nodeName)
}

func (w *Worker) processRequest(ctx context.Context, msg broker.Message) error {
	var request contracts.StepRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		return fmt.Errorf("failed to unmarshal request: %w", err)
	}
	if request.RequestID == "" {
		request.RequestID = msg.Key
	}

	w.logger.Info("[Worker] Processing request %s", request.RequestID)

	s := w.pipeline.NewStep(contracts.StepConfig{
		RepoURL:     request.RepoURL,
		APIEndpoint: request.APIEndpoint,
	})
	s.ID = request.RequestID

	out := s.Perform(ctx, w.logger)
	if !out.Success {
		return fmt.Errorf("run %s failed: %w", request.RequestID, out.Err)
	}
	return nil
}

// Start subscribes an in-process worker and serves requests in a goroutine until ctx is
// done. Requests submitted after Start returns are not lost.
func (p *Pipeline) Start(ctx context.Context) error {
	worker := p.NewWorker("", p.logger)
	msgChan, err := worker.subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		if err := worker.serve(ctx, msgChan); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Error("[Pipeline] Worker error: %v", err)
		}
	}()
	return nil
}

// Package contracts defines the data structures shared between the build step, its
// workers and the stores/brokers they report to.
package contracts

import "time"

// StepConfig holds the values a build step is configured with.
// It is set once before a run and never mutated during one.
type StepConfig struct {
	// Webhook URL notified with the detected language.
	APIEndpoint string `json:"api_endpoint" yaml:"api_endpoint"`
	// Opaque source-control credential (GitHub personal access token).
	Token string `json:"-" yaml:"token"`
	// Repository reference, e.g. https://github.com/owner/repo.
	RepoURL string `json:"repo_url" yaml:"repo_url"`
}

// NodeKind distinguishes the controller from on-demand workers.
type NodeKind string

const (
	NodeKindController NodeKind = "controller"
	NodeKindOnDemand   NodeKind = "on-demand"
)

// WorkerNode is a read-only view of a node registered with the orchestration host.
type WorkerNode struct {
	Name        string    `json:"name"`
	Kind        NodeKind  `json:"kind"`
	Online      bool      `json:"online"`
	ConnectedAt time.Time `json:"connected_at"`
	// HasChannel reports whether the node has a live communication channel.
	HasChannel bool `json:"has_channel"`
}

// NodeSpec describes a worker node to be registered with the orchestration host.
type NodeSpec struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	RemoteFS    string   `json:"remote_fs"`
	Executors   int      `json:"executors"`
	Mode        string   `json:"mode"`      // "normal" or "exclusive"
	Launcher    string   `json:"launcher"`  // "inbound" agents connect to the controller on demand
	Retention   string   `json:"retention"` // "always" keeps the agent online
	Labels      []string `json:"labels"`
}

// LanguageByteMap maps a language name to the number of bytes written in it.
type LanguageByteMap map[string]int64

// DetectionResult is the outcome of language detection.
// Language is never empty; it holds the fallback sentinel when detection failed.
type DetectionResult struct {
	Language string `json:"language"`
	Bytes    int64  `json:"bytes"`
	Fallback bool   `json:"fallback"`
}

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// RunRecord is the persisted outcome of one build step run.
type RunRecord struct {
	ID               string    `json:"id"`
	RepoURL          string    `json:"repo_url"`
	Endpoint         string    `json:"endpoint"`
	Language         string    `json:"language"`
	AgentProvisioned bool      `json:"agent_provisioned"`
	NotifyStatus     int       `json:"notify_status"`
	Status           string    `json:"status"`
	Error            string    `json:"error,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at,omitempty"`
}

// StepRequest asks a worker to run the build step.
// Published to: langdetect.requests
// Key: {request_id}
type StepRequest struct {
	RequestID   string `json:"request_id"`
	RepoURL     string `json:"repo_url,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// Topic names used in distributed mode.
const (
	// TopicRequests carries StepRequest messages.
	TopicRequests = "langdetect.requests"

	// TopicRuns carries finished RunRecord messages.
	TopicRuns = "langdetect.runs"
)

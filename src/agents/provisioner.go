package agents

import (
	"context"
	"errors"
	"sync"
	"time"

	"langdetect-agent/src/contracts"
	"langdetect-agent/src/logger"
)

// DefaultNodeName is the fixed name of provisioned agents.
const DefaultNodeName = "langdetect-agent"

// DefaultNodeSpec returns the descriptor registered when no fresh agent is available:
// one executor, normal scheduling, inbound launch, always retained, no labels.
func DefaultNodeSpec() contracts.NodeSpec {
	return contracts.NodeSpec{
		Name:        DefaultNodeName,
		Description: "Agent created by the language detection build step",
		RemoteFS:    "/home/jenkins",
		Executors:   1,
		Mode:        "normal",
		Launcher:    "inbound",
		Retention:   "always",
		Labels:      []string{},
	}
}

// Provisioner ensures a fresh agent exists, registering one when needed.
// Check and registration happen under one lock so concurrent runs in a process
// cannot both provision.
type Provisioner struct {
	registry Registry
	spec     contracts.NodeSpec
	logger   logger.Logger
	now      func() time.Time

	mu sync.Mutex
}

// NewProvisioner creates a provisioner registering DefaultNodeSpec with registry.
func NewProvisioner(registry Registry, log logger.Logger) *Provisioner {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Provisioner{
		registry: registry,
		spec:     DefaultNodeSpec(),
		logger:   log,
		now:      time.Now,
	}
}

// EnsureResult reports what EnsureAgent found or did.
type EnsureResult struct {
	Node contracts.WorkerNode
	// Provisioned is set only when a new node was registered.
	Provisioned bool
	// AlreadyRegistered is set when no agent was suitable and the provisioned name was
	// already taken by a node that is offline or stale. Nothing was registered.
	AlreadyRegistered bool
}

// EnsureAgent returns a fresh agent if one is online, and provisions one otherwise.
// Registry errors are returned as *RegistryError.
func (p *Provisioner) EnsureAgent(ctx context.Context, maxAge time.Duration) (EnsureResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	nodes, err := p.registry.Nodes(ctx)
	if err != nil {
		return EnsureResult{}, &RegistryError{Op: "list", Err: err}
	}

	if node, ok := SuitableAgent(nodes, maxAge, p.now()); ok {
		p.logger.Debug("[Provisioner] Agent %s connected at %s is fresh", node.Name, node.ConnectedAt.Format(time.RFC3339))
		return EnsureResult{Node: node}, nil
	}

	p.logger.Info("[Provisioner] No agent online for less than %s", maxAge)
	node, created, err := p.provisionLocked(ctx)
	if err != nil {
		return EnsureResult{}, err
	}
	return EnsureResult{Node: node, Provisioned: created, AlreadyRegistered: !created}, nil
}

// Provision registers exactly one node descriptor. Registering the fixed name a second
// time returns the existing node, so repeated calls leave a single node behind.
func (p *Provisioner) Provision(ctx context.Context) (contracts.WorkerNode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	node, _, err := p.provisionLocked(ctx)
	return node, err
}

// provisionLocked registers the node descriptor and reports whether a node was created.
func (p *Provisioner) provisionLocked(ctx context.Context) (contracts.WorkerNode, bool, error) {
	node, err := p.registry.AddNode(ctx, p.spec)
	if errors.Is(err, ErrNodeExists) {
		p.logger.Info("[Provisioner] Agent %s is already registered but not connected or stale, waiting for it to connect", p.spec.Name)
		return node, false, nil
	}
	if err != nil {
		return contracts.WorkerNode{}, false, &RegistryError{Op: "add", Err: err}
	}

	p.logger.Info("[Provisioner] A new agent node %s has been created", node.Name)
	return node, true, nil
}

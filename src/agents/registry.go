package agents

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"langdetect-agent/src/contracts"
)

var (
	// ErrNodeExists is returned by a Registry when a node with the same name is registered.
	ErrNodeExists = errors.New("node already exists")

	// ErrNodeNotFound is returned when connecting or disconnecting a node that was never registered.
	ErrNodeNotFound = errors.New("node not found")
)

// Registry is the orchestration host's node registry.
type Registry interface {
	// Nodes lists every registered node.
	Nodes(ctx context.Context) ([]contracts.WorkerNode, error)

	// AddNode registers a new node. It returns ErrNodeExists (wrapped) on a name clash.
	AddNode(ctx context.Context, spec contracts.NodeSpec) (contracts.WorkerNode, error)
}

// Connector is implemented by registries that agents report their connection to.
type Connector interface {
	// ConnectNode marks a node online with a live channel as of at.
	ConnectNode(ctx context.Context, name string, at time.Time) error

	// DisconnectNode marks a node offline without a channel.
	DisconnectNode(ctx context.Context, name string) error
}

// RegistryError marks a failure talking to the registry. It is fatal to a step run.
type RegistryError struct {
	Op  string
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("agent registry %s failed: %v", e.Op, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

var (
	_ Registry  = (*MemoryRegistry)(nil)
	_ Connector = (*MemoryRegistry)(nil)
)

// MemoryRegistry is a thread-safe in-memory Registry.
// Newly added nodes come up offline, like an inbound agent that has not connected yet.
type MemoryRegistry struct {
	mu    sync.RWMutex
	nodes []contracts.WorkerNode
	specs map[string]contracts.NodeSpec
}

// NewMemoryRegistry creates a registry seeded with the given nodes.
func NewMemoryRegistry(nodes ...contracts.WorkerNode) *MemoryRegistry {
	r := &MemoryRegistry{specs: make(map[string]contracts.NodeSpec)}
	r.nodes = append(r.nodes, nodes...)
	return r
}

// Nodes returns a copy of the registered nodes.
func (r *MemoryRegistry) Nodes(ctx context.Context) ([]contracts.WorkerNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contracts.WorkerNode, len(r.nodes))
	copy(out, r.nodes)
	return out, nil
}

// AddNode registers spec as a new on-demand node.
func (r *MemoryRegistry) AddNode(ctx context.Context, spec contracts.NodeSpec) (contracts.WorkerNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.nodes {
		if n.Name == spec.Name {
			return n, fmt.Errorf("%w: %s", ErrNodeExists, spec.Name)
		}
	}

	node := contracts.WorkerNode{
		Name: spec.Name,
		Kind: contracts.NodeKindOnDemand,
	}
	r.nodes = append(r.nodes, node)
	r.specs[spec.Name] = spec
	return node, nil
}

// Connect marks a node online with a live channel, as if its agent just connected.
func (r *MemoryRegistry) Connect(name string, at time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.nodes {
		if r.nodes[i].Name == name {
			r.nodes[i].Online = true
			r.nodes[i].HasChannel = true
			r.nodes[i].ConnectedAt = at
			return true
		}
	}
	return false
}

// ConnectNode is Connect with the Connector signature.
func (r *MemoryRegistry) ConnectNode(ctx context.Context, name string, at time.Time) error {
	if !r.Connect(name, at) {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	return nil
}

// DisconnectNode marks a node offline, as if its agent went away.
func (r *MemoryRegistry) DisconnectNode(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.nodes {
		if r.nodes[i].Name == name {
			r.nodes[i].Online = false
			r.nodes[i].HasChannel = false
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNodeNotFound, name)
}

// Spec returns the descriptor a node was registered with.
func (r *MemoryRegistry) Spec(name string) (contracts.NodeSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

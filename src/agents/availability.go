// Package agents checks whether a fresh worker agent is online and provisions one when not.
package agents

import (
	"time"

	"langdetect-agent/src/contracts"
)

// DefaultMaxAgentAge is the connection age under which an agent is considered fresh.
const DefaultMaxAgentAge = time.Hour

// IsSuitableAgentAvailable reports whether any node qualifies as a fresh on-demand agent.
func IsSuitableAgentAvailable(nodes []contracts.WorkerNode, maxAge time.Duration, now time.Time) bool {
	_, ok := SuitableAgent(nodes, maxAge, now)
	return ok
}

// SuitableAgent returns the first node that is an on-demand worker, online, holds a live
// channel and connected strictly less than maxAge before now.
func SuitableAgent(nodes []contracts.WorkerNode, maxAge time.Duration, now time.Time) (contracts.WorkerNode, bool) {
	for _, node := range nodes {
		if qualifies(node, maxAge, now) {
			return node, true
		}
	}
	return contracts.WorkerNode{}, false
}

func qualifies(node contracts.WorkerNode, maxAge time.Duration, now time.Time) bool {
	if node.Kind != contracts.NodeKindOnDemand || !node.Online || !node.HasChannel {
		return false
	}
	return now.Sub(node.ConnectedAt) < maxAge
}

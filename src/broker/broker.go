// Package broker defines the interface for message brokers and provides implementations.
package broker

import (
	"context"
	"errors"
)

// ErrClosed is returned by Publish and Subscribe after Close.
var ErrClosed = errors.New("broker is closed")

// Broker abstracts message publishing and consumption.
// Step requests and finished runs travel through it; the in-memory implementation backs
// local mode and tests, Redpanda backs distributed mode.
type Broker interface {
	// Publish sends a message to a topic with an optional key for partitioning.
	// For Redpanda/Kafka, key is used for partition assignment.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel for consuming messages from a topic.
	// groupID is used for consumer group coordination in Kafka.
	// The channel is closed when ctx is done or the broker is closed.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close shuts down the broker connection gracefully.
	Close() error
}

// Message represents a consumed message from a broker.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
}

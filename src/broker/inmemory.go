package broker

import (
	"context"
	"sync"
	"time"

	"langdetect-agent/src/logger"
)

const subscriberBuffer = 100

// InMemoryBroker delivers every published message to every live subscriber of the topic.
// Group IDs are ignored; each subscription sees all messages published after it.
type InMemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string][]*subscription
	offset map[string]int64
	closed bool
	logger logger.Logger
}

type subscription struct {
	mu   sync.RWMutex // held for reading while sending on ch
	ch   chan Message
	done chan struct{}
	once sync.Once
}

// close wakes blocked senders through done before closing ch.
func (s *subscription) close() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		close(s.ch)
		s.mu.Unlock()
	})
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subs:   make(map[string][]*subscription),
		offset: make(map[string]int64),
		logger: logger.NewSilentLogger(),
	}
}

// SetLogger sets the logger used for delivery diagnostics.
func (b *InMemoryBroker) SetLogger(log logger.Logger) {
	b.logger = log
}

// Publish delivers value to every subscriber of topic, blocking while a subscriber's
// buffer is full until ctx is done.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Offset:    b.offset[topic],
		Timestamp: time.Now().UnixMilli(),
	}
	b.offset[topic]++
	subs := append([]*subscription(nil), b.subs[topic]...)
	b.mu.Unlock()

	for _, sub := range subs {
		if err := b.deliver(ctx, sub, msg); err != nil {
			return err
		}
	}
	b.logger.Debug("[InMemoryBroker] Published to topic '%s' (key %s) to %d subscribers", topic, key, len(subs))
	return nil
}

func (b *InMemoryBroker) deliver(ctx context.Context, sub *subscription, msg Message) error {
	sub.mu.RLock()
	defer sub.mu.RUnlock()

	select {
	case <-sub.done:
		return nil
	default:
	}
	select {
	case sub.ch <- msg:
		return nil
	case <-sub.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a new subscriber for topic.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	sub := &subscription{
		ch:   make(chan Message, subscriberBuffer),
		done: make(chan struct{}),
	}
	b.subs[topic] = append(b.subs[topic], sub)

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(topic, sub)
		case <-sub.done:
		}
	}()

	return sub.ch, nil
}

func (b *InMemoryBroker) unsubscribe(topic string, sub *subscription) {
	b.mu.Lock()
	subs := b.subs[topic]
	for i, s := range subs {
		if s == sub {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	sub.close()
}

// Close closes every subscriber channel. Further calls are no-ops.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, sub := range subs {
			sub.close()
		}
	}
	b.subs = make(map[string][]*subscription)
	return nil
}

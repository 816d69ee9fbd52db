// Package pubsub fans engine updates out to observers by topic.
package pubsub

import (
	"context"
	"errors"
	"sync"
)

// Topic names a stream of updates.
type Topic string

const (
	TopicSelection Topic = "selection"
	TopicFilter    Topic = "filter"
	TopicTooltip   Topic = "tooltip"
	TopicViewport  Topic = "viewport"
	TopicStatus    Topic = "status"
)

// AllTopics lists every topic the engine publishes.
var AllTopics = []Topic{TopicSelection, TopicFilter, TopicTooltip, TopicViewport, TopicStatus}

var ErrShutdown = errors.New("pubsub is shut down")

// DefaultBuffer is the per-subscription queue length.
const DefaultBuffer = 64

// Message is delivered to subscribers.
type Message[T any] struct {
	Topic   Topic
	Payload T
}

// PubSub provides publish/subscribe for engine updates. Publishing never
// blocks: when a subscriber falls behind, its oldest queued message is
// dropped so the newest state always gets through.
type PubSub[T any] struct {
	subscribers map[Topic]map[*Subscription[T]]bool
	mu          sync.RWMutex
	buffer      int
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
}

// Subscription receives messages for one or more topics.
type Subscription[T any] struct {
	topics  []Topic
	channel chan Message[T]
	ps      *PubSub[T]
	cancel  context.CancelFunc

	sendMu  sync.Mutex
	closed  bool
	dropped uint64
}

// NewPubSub creates a new PubSub instance. A buffer below 1 uses
// DefaultBuffer.
func NewPubSub[T any](buffer int) *PubSub[T] {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &PubSub[T]{
		subscribers: make(map[Topic]map[*Subscription[T]]bool),
		buffer:      buffer,
		shutdown:    make(chan struct{}),
	}
}

// Subscribe creates a subscription to topics. It ends when ctx is done,
// on Unsubscribe or on Shutdown, closing the channel.
func (ps *PubSub[T]) Subscribe(ctx context.Context, topics ...Topic) (*Subscription[T], error) {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return nil, ErrShutdown
	}
	ps.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		topics:  append([]Topic(nil), topics...),
		channel: make(chan Message[T], ps.buffer),
		ps:      ps,
		cancel:  cancel,
	}

	ps.mu.Lock()
	for _, topic := range topics {
		if ps.subscribers[topic] == nil {
			ps.subscribers[topic] = make(map[*Subscription[T]]bool)
		}
		ps.subscribers[topic][sub] = true
	}
	ps.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-ps.shutdown:
			sub.close()
		}
	}()

	return sub, nil
}

// Publish sends payload to every subscriber of topic.
func (ps *PubSub[T]) Publish(topic Topic, payload T) {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return
	}
	ps.shutdownMu.Unlock()

	// Snapshot subscribers so sends happen outside the map lock
	ps.mu.RLock()
	topicSubs := ps.subscribers[topic]
	if len(topicSubs) == 0 {
		ps.mu.RUnlock()
		return
	}
	subs := make([]*Subscription[T], 0, len(topicSubs))
	for sub := range topicSubs {
		subs = append(subs, sub)
	}
	ps.mu.RUnlock()

	msg := Message[T]{Topic: topic, Payload: payload}
	for _, sub := range subs {
		sub.deliver(msg)
	}
}

// SubscriberCount returns the number of subscribers for a topic
func (ps *PubSub[T]) SubscriberCount(topic Topic) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[topic])
}

// Shutdown closes all subscriptions and shuts down the PubSub
func (ps *PubSub[T]) Shutdown() {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return
	}
	ps.isShutdown = true
	ps.shutdownMu.Unlock()

	close(ps.shutdown)

	ps.mu.Lock()
	for topic, subs := range ps.subscribers {
		for sub := range subs {
			sub.close()
		}
		delete(ps.subscribers, topic)
	}
	ps.mu.Unlock()
}

// Channel returns the subscription's message channel
func (s *Subscription[T]) Channel() <-chan Message[T] {
	return s.channel
}

// Dropped counts messages discarded because the subscriber fell behind.
func (s *Subscription[T]) Dropped() uint64 {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.dropped
}

// Unsubscribe removes the subscription from every topic.
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()

	s.ps.mu.Lock()
	for _, topic := range s.topics {
		if subs := s.ps.subscribers[topic]; subs != nil {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.ps.subscribers, topic)
			}
		}
	}
	s.ps.mu.Unlock()

	s.close()
}

func (s *Subscription[T]) deliver(msg Message[T]) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.channel <- msg:
		return
	default:
	}

	// full: make room by discarding the oldest message
	select {
	case <-s.channel:
		s.dropped++
	default:
	}
	select {
	case s.channel <- msg:
	default:
		s.dropped++
	}
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription[T]) close() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.channel)
	}
}

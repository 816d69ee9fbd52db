package pubsub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription[string]) Message[string] {
	t.Helper()
	select {
	case msg, ok := <-sub.Channel():
		if !ok {
			t.Fatal("channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for message")
	}
	return Message[string]{}
}

// TestBasicPubSub tests basic publish/subscribe functionality
func TestBasicPubSub(t *testing.T) {
	ps := NewPubSub[string](0)
	defer ps.Shutdown()

	sub, err := ps.Subscribe(context.Background(), TopicSelection)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	ps.Publish(TopicSelection, "node 3")

	msg := receive(t, sub)
	if msg.Topic != TopicSelection || msg.Payload != "node 3" {
		t.Errorf("got %+v", msg)
	}

	sub.Unsubscribe()
	if ps.SubscriberCount(TopicSelection) != 0 {
		t.Error("subscriber not removed")
	}
}

// TestMultipleSubscribers tests multiple subscribers to the same topic
func TestMultipleSubscribers(t *testing.T) {
	ps := NewPubSub[string](0)
	defer ps.Shutdown()

	subs := make([]*Subscription[string], 5)
	for i := range subs {
		sub, err := ps.Subscribe(context.Background(), TopicFilter)
		if err != nil {
			t.Fatalf("Failed to subscribe %d: %v", i, err)
		}
		defer sub.Unsubscribe()
		subs[i] = sub
	}

	ps.Publish(TopicFilter, "B")

	for i, sub := range subs {
		if msg := receive(t, sub); msg.Payload != "B" {
			t.Errorf("Subscriber %d: got %+v", i, msg)
		}
	}
}

func TestMultiTopicSubscription(t *testing.T) {
	ps := NewPubSub[string](0)
	defer ps.Shutdown()

	sub, err := ps.Subscribe(context.Background(), TopicTooltip, TopicStatus)
	if err != nil {
		t.Fatal(err)
	}

	ps.Publish(TopicViewport, "ignored")
	ps.Publish(TopicTooltip, "shown")
	ps.Publish(TopicStatus, "ready")

	if msg := receive(t, sub); msg.Topic != TopicTooltip {
		t.Errorf("first = %+v", msg)
	}
	if msg := receive(t, sub); msg.Topic != TopicStatus {
		t.Errorf("second = %+v", msg)
	}

	sub.Unsubscribe()
	if ps.SubscriberCount(TopicTooltip) != 0 || ps.SubscriberCount(TopicStatus) != 0 {
		t.Error("subscription left on a topic")
	}
}

func TestSlowSubscriberKeepsNewest(t *testing.T) {
	ps := NewPubSub[string](2)
	defer ps.Shutdown()

	sub, err := ps.Subscribe(context.Background(), TopicViewport)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range []string{"a", "b", "c", "d"} {
		ps.Publish(TopicViewport, s)
	}

	if sub.Dropped() != 2 {
		t.Errorf("dropped = %d, want 2", sub.Dropped())
	}
	if got := receive(t, sub).Payload + receive(t, sub).Payload; got != "cd" {
		t.Errorf("queue = %q, want the two newest", got)
	}
}

func TestContextCancelUnsubscribes(t *testing.T) {
	ps := NewPubSub[string](0)
	defer ps.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := ps.Subscribe(ctx, TopicStatus)
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case _, ok := <-sub.Channel():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	deadline := time.Now().Add(time.Second)
	for ps.SubscriberCount(TopicStatus) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ps.SubscriberCount(TopicStatus) != 0 {
		t.Error("subscription not removed after cancel")
	}
}

func TestShutdown(t *testing.T) {
	ps := NewPubSub[string](0)
	sub, err := ps.Subscribe(context.Background(), TopicStatus)
	if err != nil {
		t.Fatal(err)
	}

	ps.Shutdown()
	ps.Shutdown()

	if _, ok := <-sub.Channel(); ok {
		t.Error("expected closed channel after shutdown")
	}
	if _, err := ps.Subscribe(context.Background(), TopicStatus); !errors.Is(err, ErrShutdown) {
		t.Errorf("Subscribe after shutdown err = %v", err)
	}

	// no panic publishing after shutdown
	ps.Publish(TopicStatus, "late")
}

func TestConcurrentPublishUnsubscribe(t *testing.T) {
	ps := NewPubSub[string](1)
	defer ps.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		sub, err := ps.Subscribe(context.Background(), TopicViewport)
		if err != nil {
			t.Fatal(err)
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ps.Publish(TopicViewport, "tick")
			}
		}()
		go func() {
			defer wg.Done()
			sub.Unsubscribe()
		}()
	}
	wg.Wait()
}

package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncDeliversToAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var calls int
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		calls++
		return nil
	}))
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		calls++
		return nil
	}))
	bus.Subscribe("other.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		t.Fatal("handler for a different event name was invoked")
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "thing.happened"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 handler calls, got %d", calls)
	}
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)

	boom := errors.New("handler failed")
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		return boom
	}))
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "thing.happened"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to include handler failure, got %v", err)
	}
}

func TestPublishIsAsynchronousAndSurvivesCancelledContext(t *testing.T) {
	bus := NewInMemoryBus(nil)

	done := make(chan string, 1)
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, event Event) error {
		if ctx.Err() != nil {
			t.Error("handler received a cancelled context")
		}
		done <- event.EventName()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, testEvent{NewBaseEvent(), "thing.happened"})

	select {
	case name := <-done:
		if name != "thing.happened" {
			t.Fatalf("unexpected event name %q", name)
		}
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestPublishWithNoSubscribersIsANoOp(t *testing.T) {
	bus := NewInMemoryBus(nil)

	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "nobody.listens"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "nobody.listens"})
}

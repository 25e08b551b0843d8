package events

import (
	"testing"
	"time"
)

func TestEmitStampsIDAndTime(t *testing.T) {
	emitter := NewEmitter()
	feed, cancel := emitter.Subscribe()
	defer cancel()

	emitter.Emit(Event{Type: TypeOrderCreated, OrderID: "0xabc"})

	select {
	case evt := <-feed:
		if evt.ID == "" {
			t.Fatalf("expected a generated event id")
		}
		if evt.At.IsZero() {
			t.Fatalf("expected a stamped time")
		}
		if evt.Type != TypeOrderCreated || evt.OrderID != "0xabc" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected event on subscription")
	}
}

func TestEmitFansOutToAllSubscribers(t *testing.T) {
	emitter := NewEmitter()
	feedA, cancelA := emitter.Subscribe()
	defer cancelA()
	feedB, cancelB := emitter.Subscribe()
	defer cancelB()

	emitter.Emit(Event{Type: TypePaused})

	for _, feed := range []<-chan Event{feedA, feedB} {
		select {
		case evt := <-feed:
			if evt.Type != TypePaused {
				t.Fatalf("unexpected event type %s", evt.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("expected event on every subscription")
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	emitter := NewEmitter()
	feed, cancel := emitter.Subscribe()
	cancel()

	if _, ok := <-feed; ok {
		t.Fatalf("expected closed channel after cancel")
	}

	// Emitting after cancel must not panic.
	emitter.Emit(Event{Type: TypeUnpaused})
}

func TestSlowSubscriberIsSkipped(t *testing.T) {
	emitter := NewEmitter()
	feed, cancel := emitter.Subscribe()
	defer cancel()

	// Fill the buffer past capacity; the emitter must not block.
	for i := 0; i < 100; i++ {
		emitter.Emit(Event{Type: TypeOrderCreated})
	}

	received := 0
	for {
		select {
		case <-feed:
			received++
			continue
		default:
		}
		break
	}
	if received == 0 || received > 64 {
		t.Fatalf("expected buffered delivery within capacity, got %d", received)
	}
}

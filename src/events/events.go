package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

// Type labels one notification kind. A distinct event fires at every terminal
// or administrative transition so observers can reconstruct state without
// polling.
type Type string

const (
	TypeOrderCreated       Type = "order_created"
	TypeOrderExecuted      Type = "order_executed"
	TypeOrderRefunded      Type = "order_refunded"
	TypeVenueRegistered    Type = "venue_registered"
	TypeVenueStatusChanged Type = "venue_status_changed"
	TypeFeeCollected       Type = "fee_collected"
	TypeFeeParamsUpdated   Type = "fee_params_updated"
	TypePaused             Type = "paused"
	TypeUnpaused           Type = "unpaused"
	TypeAdminTransferred   Type = "admin_transferred"
)

// Event is a single notification.
type Event struct {
	ID      string                 `json:"id"`
	Type    Type                   `json:"type"`
	At      time.Time              `json:"at"`
	OrderID string                 `json:"order_id,omitempty"`
	VenueID string                 `json:"venue_id,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Emitter fans events out to a log sink and any number of subscribers.
// Slow subscribers are skipped rather than blocking a ledger transition.
type Emitter struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewEmitter creates an Emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[int]chan Event)}
}

// Emit stamps and publishes an event.
func (e *Emitter) Emit(evt Event) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	logger.WithFields(map[string]interface{}{
		"event":    string(evt.Type),
		"event_id": evt.ID,
		"order_id": evt.OrderID,
		"venue_id": evt.VenueID,
	}).Info("event emitted")

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, sub := range e.subs {
		select {
		case sub <- evt:
		default:
		}
	}
}

// Subscribe registers a buffered listener. The returned cancel func must be
// called to release the channel.
func (e *Emitter) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.next
	e.next++
	ch := make(chan Event, 64)
	e.subs[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if existing, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

package orchestrator

import (
	"errors"
	"sync"
)

// ErrOrderBusy rejects overlapping or re-entrant invocations of the
// order-mutating entry points. The balance-snapshot accounting is not safe
// under reentry, so this is a loud failure, never a wait.
var ErrOrderBusy = errors.New("orchestrator: order operation already in progress")

type guard struct {
	mu         sync.Mutex
	inProgress map[string]bool
}

func newGuard() *guard {
	return &guard{inProgress: make(map[string]bool)}
}

// enter claims the order or fails. The returned release func must be deferred.
func (g *guard) enter(orderID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inProgress[orderID] {
		return nil, ErrOrderBusy
	}
	g.inProgress[orderID] = true

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.inProgress, orderID)
	}, nil
}

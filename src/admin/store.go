package admin

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"

	"swaprouter/src/events"
)

var (
	ErrUnauthorized  = errors.New("admin: caller is not the admin")
	ErrZeroAddress   = errors.New("admin: zero address not allowed")
	ErrInvalidAmount = errors.New("admin: amount must be positive")
)

// Store owns the authorization-gated global parameters: admin identity,
// treasury, pause flag, delegate whitelist and the minimum order amount.
// Every mutator checks the caller; there is no ambient admin state.
type Store struct {
	mu sync.RWMutex

	admin          common.Address
	treasury       common.Address
	minOrderAmount *big.Int
	paused         bool
	delegates      map[common.Address]bool

	emitter *events.Emitter
}

// NewStore creates the admin store. The initial admin and treasury must be
// non-zero.
func NewStore(adminAddr, treasury common.Address, emitter *events.Emitter) (*Store, error) {
	if adminAddr == (common.Address{}) || treasury == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	return &Store{
		admin:          adminAddr,
		treasury:       treasury,
		minOrderAmount: big.NewInt(1),
		delegates:      make(map[common.Address]bool),
		emitter:        emitter,
	}, nil
}

// IsAdmin reports whether caller currently holds admin rights.
func (s *Store) IsAdmin(caller common.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return caller == s.admin
}

// Admin returns the current admin identity.
func (s *Store) Admin() common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

// Treasury returns the fee destination account.
func (s *Store) Treasury() common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treasury
}

// MinOrderAmount returns the minimum accepted totalAmountIn.
func (s *Store) MinOrderAmount() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.minOrderAmount)
}

// Paused reports whether new order flow is halted.
func (s *Store) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// IsDelegate reports whether addr may execute orders on behalf of submitters.
func (s *Store) IsDelegate(addr common.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.delegates[addr]
}

// SetTreasury changes the fee destination.
func (s *Store) SetTreasury(caller, treasury common.Address) error {
	if treasury == (common.Address{}) {
		return ErrZeroAddress
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.admin {
		return ErrUnauthorized
	}
	s.treasury = treasury
	return nil
}

// SetMinOrderAmount changes the minimum accepted totalAmountIn.
func (s *Store) SetMinOrderAmount(caller common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.admin {
		return ErrUnauthorized
	}
	s.minOrderAmount = new(big.Int).Set(amount)
	return nil
}

// SetDelegate whitelists or removes an execution delegate.
func (s *Store) SetDelegate(caller, delegate common.Address, allowed bool) error {
	if delegate == (common.Address{}) {
		return ErrZeroAddress
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.admin {
		return ErrUnauthorized
	}
	if allowed {
		s.delegates[delegate] = true
	} else {
		delete(s.delegates, delegate)
	}
	return nil
}

// Pause halts order creation and execution. Refunds stay available so funds
// are never trapped.
func (s *Store) Pause(caller common.Address) error {
	s.mu.Lock()
	if caller != s.admin {
		s.mu.Unlock()
		return ErrUnauthorized
	}
	s.paused = true
	s.mu.Unlock()

	logger.WithField("admin", caller.Hex()).Warn("router paused")
	s.emitter.Emit(events.Event{Type: events.TypePaused})
	return nil
}

// Unpause resumes order flow.
func (s *Store) Unpause(caller common.Address) error {
	s.mu.Lock()
	if caller != s.admin {
		s.mu.Unlock()
		return ErrUnauthorized
	}
	s.paused = false
	s.mu.Unlock()

	logger.WithField("admin", caller.Hex()).Info("router unpaused")
	s.emitter.Emit(events.Event{Type: events.TypeUnpaused})
	return nil
}

// TransferAdmin hands admin rights to a new identity.
func (s *Store) TransferAdmin(caller, next common.Address) error {
	if next == (common.Address{}) {
		return ErrZeroAddress
	}

	s.mu.Lock()
	if caller != s.admin {
		s.mu.Unlock()
		return ErrUnauthorized
	}
	previous := s.admin
	s.admin = next
	s.mu.Unlock()

	logger.WithFields(map[string]interface{}{
		"previous": previous.Hex(),
		"next":     next.Hex(),
	}).Warn("admin rights transferred")
	s.emitter.Emit(events.Event{
		Type: events.TypeAdminTransferred,
		Data: map[string]interface{}{"previous": previous.Hex(), "next": next.Hex()},
	})
	return nil
}

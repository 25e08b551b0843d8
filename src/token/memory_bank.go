package token

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
)

type balanceKey struct {
	token   common.Address
	account common.Address
}

type allowanceKey struct {
	token   common.Address
	owner   common.Address
	spender common.Address
}

// MemoryBank is an in-process Bank used for local runs and tests. All
// mutations are atomic under a single mutex; a transfer either moves the
// full amount or leaves both balances untouched.
type MemoryBank struct {
	mu         sync.Mutex
	balances   map[balanceKey]*big.Int
	allowances map[allowanceKey]*big.Int
}

// NewMemoryBank creates an empty bank.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{
		balances:   make(map[balanceKey]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
	}
}

// Mint credits an account. Test/bootstrap helper.
func (b *MemoryBank) Mint(token, account common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(token, account, amount)
}

// BalanceOf returns the balance of account for the given token.
func (b *MemoryBank) BalanceOf(_ context.Context, token, account common.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.balance(token, account)), nil
}

// Transfer moves amount from one account to another.
func (b *MemoryBank) Transfer(_ context.Context, token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.balance(token, from).Cmp(amount) < 0 {
		logger.WithFields(map[string]interface{}{
			"token": token.Hex(),
			"from":  from.Hex(),
		}).Warn("transfer rejected: insufficient balance")
		return ErrInsufficientBalance
	}

	b.debit(token, from, amount)
	b.credit(token, to, amount)
	return nil
}

// TransferFrom moves amount from owner to the destination, consuming the
// spender's allowance.
func (b *MemoryBank) TransferFrom(_ context.Context, token, spender, owner, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	allowed := b.allowance(token, owner, spender)
	if allowed.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if b.balance(token, owner).Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	allowed.Sub(allowed, amount)
	b.debit(token, owner, amount)
	b.credit(token, to, amount)
	return nil
}

// Approve sets the spender's allowance over the owner's funds.
func (b *MemoryBank) Approve(_ context.Context, token, owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.allowances[allowanceKey{token, owner, spender}] = new(big.Int).Set(amount)
	return nil
}

// Allowance returns what spender may still move on behalf of owner.
func (b *MemoryBank) Allowance(_ context.Context, token, owner, spender common.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.allowance(token, owner, spender)), nil
}

func (b *MemoryBank) balance(token, account common.Address) *big.Int {
	bal, ok := b.balances[balanceKey{token, account}]
	if !ok {
		bal = new(big.Int)
		b.balances[balanceKey{token, account}] = bal
	}
	return bal
}

func (b *MemoryBank) allowance(token, owner, spender common.Address) *big.Int {
	allowed, ok := b.allowances[allowanceKey{token, owner, spender}]
	if !ok {
		allowed = new(big.Int)
		b.allowances[allowanceKey{token, owner, spender}] = allowed
	}
	return allowed
}

func (b *MemoryBank) credit(token, account common.Address, amount *big.Int) {
	b.balance(token, account).Add(b.balance(token, account), amount)
}

func (b *MemoryBank) debit(token, account common.Address, amount *big.Int) {
	b.balance(token, account).Sub(b.balance(token, account), amount)
}

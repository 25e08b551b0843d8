package fees

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"

	"swaprouter/src/events"
	"swaprouter/src/model"
	"swaprouter/src/token"
)

const (
	// MaxProtocolFeeBps is a hard ceiling of 5%. Updates above it fail.
	MaxProtocolFeeBps = 500
	// MaxSlippageToleranceBps is a hard ceiling of 10%.
	MaxSlippageToleranceBps = 1000

	bpsDenominator = 10000
)

var (
	ErrUnauthorized   = errors.New("fees: caller is not the admin")
	ErrCeilingBreach  = errors.New("fees: parameter exceeds hard ceiling")
	ErrInvalidOutput  = errors.New("fees: output amount must be non-negative")
	ErrFeeConservancy = errors.New("fees: fee exceeds output")
)

type adminView interface {
	IsAdmin(caller common.Address) bool
	Treasury() common.Address
}

// Accountant computes the protocol fee and realized slippage on successful
// executions, routes the fee to the treasury and the remainder to the
// submitter, and keeps the running totals.
type Accountant struct {
	mu sync.Mutex

	protocolFeeBps       int64
	slippageToleranceBps int64

	totalVolumeProcessed *big.Int
	totalFeesCollected   *big.Int
	ordersSettled        uint64

	admin   adminView
	bank    token.Bank
	custody common.Address
	emitter *events.Emitter
}

// NewAccountant builds an accountant with the given starting parameters.
func NewAccountant(admin adminView, bank token.Bank, custody common.Address, feeBps, toleranceBps int64, emitter *events.Emitter) (*Accountant, error) {
	if feeBps < 0 || feeBps > MaxProtocolFeeBps {
		return nil, ErrCeilingBreach
	}
	if toleranceBps < 0 || toleranceBps > MaxSlippageToleranceBps {
		return nil, ErrCeilingBreach
	}
	return &Accountant{
		protocolFeeBps:       feeBps,
		slippageToleranceBps: toleranceBps,
		totalVolumeProcessed: new(big.Int),
		totalFeesCollected:   new(big.Int),
		admin:                admin,
		bank:                 bank,
		custody:              custody,
		emitter:              emitter,
	}, nil
}

// Settle is invoked exactly once per executed order. It computes
// fee = floor(outputAmount * protocolFeeBps / 10000), pays the treasury and
// the submitter out of custody, and updates the running counters.
// Conservation: payout + fee == outputAmount always.
func (a *Accountant) Settle(ctx context.Context, order *model.Order, outputAmount *big.Int) (fee, payout *big.Int, err error) {
	if outputAmount == nil || outputAmount.Sign() < 0 {
		return nil, nil, ErrInvalidOutput
	}

	a.mu.Lock()
	feeBps := a.protocolFeeBps
	a.mu.Unlock()

	fee = new(big.Int).Mul(outputAmount, big.NewInt(feeBps))
	fee.Quo(fee, big.NewInt(bpsDenominator))
	payout = new(big.Int).Sub(outputAmount, fee)
	if payout.Sign() < 0 {
		return nil, nil, ErrFeeConservancy
	}

	tokenOut := common.HexToAddress(order.TokenOut)
	submitter := common.HexToAddress(order.Submitter)

	if fee.Sign() > 0 {
		if err := a.bank.Transfer(ctx, tokenOut, a.custody, a.admin.Treasury(), fee); err != nil {
			return nil, nil, err
		}
	}
	if payout.Sign() > 0 {
		if err := a.bank.Transfer(ctx, tokenOut, a.custody, submitter, payout); err != nil {
			return nil, nil, err
		}
	}

	a.mu.Lock()
	a.totalVolumeProcessed.Add(a.totalVolumeProcessed, order.TotalAmountIn.Big())
	a.totalFeesCollected.Add(a.totalFeesCollected, fee)
	a.ordersSettled++
	a.mu.Unlock()

	logger.WithFields(map[string]interface{}{
		"order_id": order.ID,
		"output":   outputAmount.String(),
		"fee":      fee.String(),
		"payout":   payout.String(),
	}).Info("order settled")

	a.emitter.Emit(events.Event{
		Type:    events.TypeFeeCollected,
		OrderID: order.ID,
		Data: map[string]interface{}{
			"fee":    fee.String(),
			"payout": payout.String(),
		},
	})

	return fee, payout, nil
}

// SlippageBps reports the realized shortfall against the guaranteed floor in
// basis points. Zero when the output met or beat minTotalOut; capped at 10000.
func SlippageBps(minTotalOut, outputAmount *big.Int) int64 {
	if minTotalOut == nil || minTotalOut.Sign() <= 0 || outputAmount == nil {
		return 0
	}
	if outputAmount.Cmp(minTotalOut) >= 0 {
		return 0
	}

	shortfall := new(big.Int).Sub(minTotalOut, outputAmount)
	shortfall.Mul(shortfall, big.NewInt(bpsDenominator))
	shortfall.Quo(shortfall, minTotalOut)
	if !shortfall.IsInt64() || shortfall.Int64() > bpsDenominator {
		return bpsDenominator
	}
	return shortfall.Int64()
}

// SetProtocolFeeBps updates the protocol fee. Hard ceiling enforced.
func (a *Accountant) SetProtocolFeeBps(caller common.Address, bps int64) error {
	if !a.admin.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if bps < 0 || bps > MaxProtocolFeeBps {
		return ErrCeilingBreach
	}

	a.mu.Lock()
	a.protocolFeeBps = bps
	a.mu.Unlock()

	a.emitter.Emit(events.Event{
		Type: events.TypeFeeParamsUpdated,
		Data: map[string]interface{}{"protocol_fee_bps": bps},
	})
	return nil
}

// SetSlippageTolerance updates the default slippage tolerance. Hard ceiling
// enforced.
func (a *Accountant) SetSlippageTolerance(caller common.Address, bps int64) error {
	if !a.admin.IsAdmin(caller) {
		return ErrUnauthorized
	}
	if bps < 0 || bps > MaxSlippageToleranceBps {
		return ErrCeilingBreach
	}

	a.mu.Lock()
	a.slippageToleranceBps = bps
	a.mu.Unlock()

	a.emitter.Emit(events.Event{
		Type: events.TypeFeeParamsUpdated,
		Data: map[string]interface{}{"slippage_tolerance_bps": bps},
	})
	return nil
}

// ProtocolFeeBps returns the current fee parameter.
func (a *Accountant) ProtocolFeeBps() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.protocolFeeBps
}

// SlippageTolerance returns the current default tolerance.
func (a *Accountant) SlippageTolerance() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.slippageToleranceBps
}

// Totals returns copies of the running counters.
func (a *Accountant) Totals() (volume, feesCollected *big.Int, ordersSettled uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return new(big.Int).Set(a.totalVolumeProcessed), new(big.Int).Set(a.totalFeesCollected), a.ordersSettled
}

package orchestrator

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"

	"swaprouter/src/batch"
	"swaprouter/src/fees"
	"swaprouter/src/ledger"
	"swaprouter/src/model"
	"swaprouter/src/registry"
	"swaprouter/src/stats"
)

// RefundReasonExpired is the recorded reason for lazy expiry refunds.
const RefundReasonExpired = "Expired"

var (
	ErrAlreadyExecuted   = errors.New("orchestrator: order already executed")
	ErrAlreadyRefunded   = errors.New("orchestrator: order already refunded")
	ErrOrderExpired      = errors.New("orchestrator: order deadline passed")
	ErrOrderNotExpired   = errors.New("orchestrator: order deadline not yet passed")
	ErrNotAuthorized     = errors.New("orchestrator: caller is neither submitter nor delegate")
	ErrMinOutputViolated = errors.New("orchestrator: output below guaranteed minimum")
)

type adminView interface {
	Paused() bool
	IsDelegate(addr common.Address) bool
}

// Orchestrator converts a pending order's routes into a batch of venue calls
// and drives them through the external all-or-nothing executor. Every path
// out of ExecuteOrder leaves the order either untouched or in exactly one
// terminal state.
type Orchestrator struct {
	ledger     *ledger.Ledger
	registry   *registry.Registry
	admin      adminView
	accountant *fees.Accountant
	executor   batch.Executor
	recorder   *stats.Recorder
	guard      *guard
	now        func() time.Time
}

// New wires an Orchestrator.
func New(l *ledger.Ledger, reg *registry.Registry, admin adminView, accountant *fees.Accountant, executor batch.Executor, recorder *stats.Recorder) *Orchestrator {
	return &Orchestrator{
		ledger:     l,
		registry:   reg,
		admin:      admin,
		accountant: accountant,
		executor:   executor,
		recorder:   recorder,
		guard:      newGuard(),
		now:        time.Now,
	}
}

// ExecuteOrder atomically executes a pending order. On executor success the
// order becomes executed and the accountant settles fee and payout; on
// executor failure the order becomes refunded and the full escrow returns to
// the submitter. Precondition failures reject the call with no side effects.
func (o *Orchestrator) ExecuteOrder(ctx context.Context, caller common.Address, orderID string) (*model.ExecutionResult, error) {
	release, err := o.guard.enter(orderID)
	if err != nil {
		return nil, err
	}
	defer release()

	order, err := o.ledger.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Executed {
		return nil, ErrAlreadyExecuted
	}
	if order.Refunded {
		return nil, ErrAlreadyRefunded
	}
	if !order.Deadline.After(o.now()) {
		return nil, ErrOrderExpired
	}
	if o.admin.Paused() {
		return nil, ledger.ErrPaused
	}
	if caller != common.HexToAddress(order.Submitter) && !o.admin.IsDelegate(caller) {
		return nil, ErrNotAuthorized
	}

	routes, err := o.ledger.Routes(ctx, orderID)
	if err != nil {
		return nil, err
	}

	started := o.now()
	tokenOut := common.HexToAddress(order.TokenOut)
	minTotalOut := order.MinTotalOut.Big()

	ops, buildErr := o.buildOperations(ctx, order, routes)
	if buildErr != nil {
		// A venue that died between creation and execution fails the batch
		// deterministically: refund rather than strand the escrow.
		return o.refund(ctx, order, buildErr.Error(), started)
	}

	before, err := o.ledger.Bank().BalanceOf(ctx, tokenOut, o.ledger.Custody())
	if err != nil {
		return nil, err
	}

	receipt, execErr := o.executor.ExecuteBatch(ctx, ops, minTotalOut, order.Deadline)
	if execErr != nil {
		logger.WithError(execErr).WithField("order_id", orderID).Warn("batch executor failed")
		return o.refund(ctx, order, execErr.Error(), started)
	}

	after, err := o.ledger.Bank().BalanceOf(ctx, tokenOut, o.ledger.Custody())
	if err != nil {
		return nil, err
	}
	outputAmount := new(big.Int).Sub(after, before)

	// The executor already enforced the threshold; verify it anyway. A
	// violation aborts the whole call and leaves the order untouched.
	if outputAmount.Cmp(minTotalOut) < 0 {
		logger.WithFields(map[string]interface{}{
			"order_id": orderID,
			"output":   outputAmount.String(),
			"min_out":  minTotalOut.String(),
		}).Error("executor returned below guaranteed minimum")
		return nil, ErrMinOutputViolated
	}

	result := &model.ExecutionResult{
		OrderID:     order.ID,
		Success:     true,
		Output:      model.NewBigInt(outputAmount),
		SlippageBps: fees.SlippageBps(minTotalOut, outputAmount),
		GasUsed:     receipt.GasUsed,
		GasPrice:    model.NewBigInt(receipt.GasPrice),
		DurationMs:  o.now().Sub(started).Milliseconds(),
		Timestamp:   o.now().UTC(),
	}

	if err := o.ledger.MarkExecuted(ctx, order, result); err != nil {
		return nil, err
	}
	// Settle cannot fail after the terminal mark: the batch credited custody
	// with exactly outputAmount and the fee cap keeps the fee within it, so
	// both transfers are covered. A bank where transfers can fail for other
	// reasons needs settlement moved inside the terminal transition.
	if _, _, err := o.accountant.Settle(ctx, order, outputAmount); err != nil {
		return nil, err
	}
	o.recorder.RecordExecuted(result.SlippageBps)

	logger.WithFields(map[string]interface{}{
		"order_id": orderID,
		"output":   outputAmount.String(),
		"gas_used": receipt.GasUsed,
	}).Info("order executed")

	return result, nil
}

// RefundExpiredOrder refunds a pending order strictly past its deadline.
// Callable by anyone; expiry is evaluated lazily, there is no sweeper.
func (o *Orchestrator) RefundExpiredOrder(ctx context.Context, orderID string) (*model.ExecutionResult, error) {
	release, err := o.guard.enter(orderID)
	if err != nil {
		return nil, err
	}
	defer release()

	order, err := o.ledger.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Executed {
		return nil, ErrAlreadyExecuted
	}
	if order.Refunded {
		return nil, ErrAlreadyRefunded
	}
	if order.Deadline.After(o.now()) {
		return nil, ErrOrderNotExpired
	}

	return o.refund(ctx, order, RefundReasonExpired, o.now())
}

func (o *Orchestrator) buildOperations(ctx context.Context, order *model.Order, routes []model.RouteSplit) ([]batch.Operation, error) {
	ops := make([]batch.Operation, 0, len(routes))
	for _, route := range routes {
		venue, err := o.registry.Validate(ctx, route.VenueID)
		if err != nil {
			return nil, err
		}

		payload := batch.EncodeSwapPayload(
			batch.ParseSelector(venue.SwapSelector),
			route.AmountIn.Big(),
			route.MinAmountOut.Big(),
			model.SplitPath(route.Path),
			o.ledger.Custody(),
			order.Deadline,
		)

		ops = append(ops, batch.Operation{
			Target:  common.HexToAddress(venue.Router),
			Value:   new(big.Int),
			Payload: payload,
		})
	}
	return ops, nil
}

func (o *Orchestrator) refund(ctx context.Context, order *model.Order, reason string, started time.Time) (*model.ExecutionResult, error) {
	result := &model.ExecutionResult{
		OrderID:       order.ID,
		Success:       false,
		FailureReason: reason,
		Output:        model.NewBigInt(nil),
		DurationMs:    o.now().Sub(started).Milliseconds(),
		Timestamp:     o.now().UTC(),
	}

	if err := o.ledger.Refund(ctx, order, reason, result); err != nil {
		return nil, err
	}
	o.recorder.RecordRefunded()
	return result, nil
}

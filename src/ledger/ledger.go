package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	logger "github.com/sirupsen/logrus"

	"swaprouter/src/events"
	"swaprouter/src/model"
	"swaprouter/src/token"
)

// MaxRoutes caps how many venues a single order may be split across.
const MaxRoutes = 5

var (
	ErrPaused             = errors.New("ledger: router is paused")
	ErrRouteCount         = errors.New("ledger: route count out of range")
	ErrBelowMinimum       = errors.New("ledger: totalAmountIn below minimum order amount")
	ErrPastDeadline       = errors.New("ledger: deadline must be in the future")
	ErrSameToken          = errors.New("ledger: tokenIn equals tokenOut")
	ErrZeroToken          = errors.New("ledger: token address is zero")
	ErrInvalidMinOut      = errors.New("ledger: minTotalOut must be positive")
	ErrInvalidRouteAmount = errors.New("ledger: route amountIn must be positive")
	ErrPathTooShort       = errors.New("ledger: route path needs at least two hops")
	ErrPathEndpoints      = errors.New("ledger: route path must run tokenIn to tokenOut")
	ErrInvalidRouteMinOut = errors.New("ledger: route minAmountOut must be positive")
	ErrAmountMismatch     = errors.New("ledger: route amounts must sum exactly to totalAmountIn")
	ErrOrderIdCollision   = errors.New("ledger: order id collision")
	ErrOrderNotFound      = errors.New("ledger: order not found")
)

// Store is the persistence surface the ledger runs on. CreateOrder must be
// compare-and-register on the order id (model.ErrDuplicateOrder on a clash)
// and must advance the submitter nonce in the same atomic step. MarkExecuted
// receives the per-route realized outputs aligned with GetRoutes order.
type Store interface {
	CreateOrder(ctx context.Context, order *model.Order, routes []model.RouteSplit) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	GetRoutes(ctx context.Context, id string) ([]model.RouteSplit, error)
	CurrentNonce(ctx context.Context, submitter string) (uint64, error)
	MarkExecuted(ctx context.Context, id string, executedAt time.Time, realizedOut []*model.BigInt) error
	MarkRefunded(ctx context.Context, id string, refundAmount *model.BigInt) error
	SaveResult(ctx context.Context, result *model.ExecutionResult) error
	GetResult(ctx context.Context, id string) (*model.ExecutionResult, error)
	CountOrders(ctx context.Context) (int64, error)
}

type venueValidator interface {
	Validate(ctx context.Context, id string) (*model.Venue, error)
}

type adminView interface {
	Paused() bool
	MinOrderAmount() *big.Int
}

// RouteInput is one leg of a submitted trade plan.
type RouteInput struct {
	VenueID             string
	Path                []common.Address
	AmountIn            *big.Int
	MinAmountOut        *big.Int
	ExpectedGas         uint64
	ExpectedSlippageBps int64
}

// CreateOrderInput is a pre-computed multi-venue trade plan.
type CreateOrderInput struct {
	Routes        []RouteInput
	TotalAmountIn *big.Int
	TokenIn       common.Address
	TokenOut      common.Address
	MinTotalOut   *big.Int
	Deadline      time.Time
}

// Ledger owns order records and fund escrow. Orders move pending → executed
// or pending → refunded; nothing leaves a terminal state.
type Ledger struct {
	store    Store
	bank     token.Bank
	registry venueValidator
	admin    adminView
	custody  common.Address
	emitter  *events.Emitter
	now      func() time.Time
}

// New wires a Ledger. custody is the account the ledger escrows into.
func New(store Store, bank token.Bank, registry venueValidator, admin adminView, custody common.Address, emitter *events.Emitter) *Ledger {
	return &Ledger{
		store:    store,
		bank:     bank,
		registry: registry,
		admin:    admin,
		custody:  custody,
		emitter:  emitter,
		now:      time.Now,
	}
}

// Custody returns the escrow account.
func (l *Ledger) Custody() common.Address {
	return l.custody
}

// Bank returns the token surface the ledger settles through.
func (l *Ledger) Bank() token.Bank {
	return l.bank
}

// CreateOrder validates a trade plan, escrows totalAmountIn of tokenIn from
// the submitter, advances the submitter nonce and stores the order as
// pending. Any validation failure rejects the call with zero state change.
func (l *Ledger) CreateOrder(ctx context.Context, submitter common.Address, in CreateOrderInput) (common.Hash, error) {
	if l.admin.Paused() {
		return common.Hash{}, ErrPaused
	}

	if err := l.validate(ctx, in); err != nil {
		logger.WithError(err).WithField("submitter", submitter.Hex()).Info("order rejected")
		return common.Hash{}, err
	}

	nonce, err := l.store.CurrentNonce(ctx, submitter.Hex())
	if err != nil {
		return common.Hash{}, err
	}

	createdAt := l.now().UTC()
	orderID := computeOrderID(submitter, createdAt, in.TotalAmountIn, in.TokenIn, in.TokenOut, nonce)

	// Defensive: unreachable under correct hashing, but checked, not assumed.
	existing, err := l.store.GetOrder(ctx, orderID.Hex())
	if err != nil {
		return common.Hash{}, err
	}
	if existing != nil {
		return common.Hash{}, ErrOrderIdCollision
	}

	if err := l.bank.TransferFrom(ctx, in.TokenIn, l.custody, submitter, l.custody, in.TotalAmountIn); err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"submitter": submitter.Hex(),
			"amount":    in.TotalAmountIn.String(),
		}).Warn("escrow transfer failed")
		return common.Hash{}, fmt.Errorf("escrow failed: %w", err)
	}

	order := &model.Order{
		ID:            orderID.Hex(),
		Submitter:     submitter.Hex(),
		TokenIn:       in.TokenIn.Hex(),
		TokenOut:      in.TokenOut.Hex(),
		TotalAmountIn: model.NewBigInt(in.TotalAmountIn),
		MinTotalOut:   model.NewBigInt(in.MinTotalOut),
		Deadline:      in.Deadline.UTC(),
		Status:        model.OrderStatusPending,
		Nonce:         nonce,
		CreatedAt:     createdAt,
	}

	routes := make([]model.RouteSplit, len(in.Routes))
	for i, route := range in.Routes {
		routes[i] = model.RouteSplit{
			OrderID:             order.ID,
			VenueID:             route.VenueID,
			Path:                model.JoinPath(route.Path),
			AmountIn:            model.NewBigInt(route.AmountIn),
			MinAmountOut:        model.NewBigInt(route.MinAmountOut),
			ExpectedGas:         route.ExpectedGas,
			ExpectedSlippageBps: route.ExpectedSlippageBps,
		}
	}

	if err := l.store.CreateOrder(ctx, order, routes); err != nil {
		// Undo the escrow so a storage failure leaves no funds stranded.
		if refundErr := l.bank.Transfer(ctx, in.TokenIn, l.custody, submitter, in.TotalAmountIn); refundErr != nil {
			logger.WithError(refundErr).WithField("order_id", order.ID).
				Error("failed to return escrow after storage failure")
		}
		if errors.Is(err, model.ErrDuplicateOrder) {
			return common.Hash{}, ErrOrderIdCollision
		}
		return common.Hash{}, err
	}

	logger.WithFields(map[string]interface{}{
		"order_id":  order.ID,
		"submitter": submitter.Hex(),
		"routes":    len(routes),
		"amount_in": in.TotalAmountIn.String(),
	}).Info("order created")

	l.emitter.Emit(events.Event{
		Type:    events.TypeOrderCreated,
		OrderID: order.ID,
		Data: map[string]interface{}{
			"submitter":       submitter.Hex(),
			"total_amount_in": in.TotalAmountIn.String(),
			"min_total_out":   in.MinTotalOut.String(),
			"routes":          len(routes),
		},
	})

	return orderID, nil
}

// Get fetches an order, failing with ErrOrderNotFound when absent.
func (l *Ledger) Get(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := l.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Routes fetches the order's route splits.
func (l *Ledger) Routes(ctx context.Context, orderID string) ([]model.RouteSplit, error) {
	if _, err := l.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return l.store.GetRoutes(ctx, orderID)
}

// Result fetches the order's execution result, nil when not yet terminal.
func (l *Ledger) Result(ctx context.Context, orderID string) (*model.ExecutionResult, error) {
	if _, err := l.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return l.store.GetResult(ctx, orderID)
}

// Nonce returns a submitter's current nonce.
func (l *Ledger) Nonce(ctx context.Context, submitter common.Address) (uint64, error) {
	return l.store.CurrentNonce(ctx, submitter.Hex())
}

// CountOrders returns the total number of orders ever created.
func (l *Ledger) CountOrders(ctx context.Context) (int64, error) {
	return l.store.CountOrders(ctx)
}

// MarkExecuted drives pending → executed, assigns each route its realized
// share of the output and records the successful result.
func (l *Ledger) MarkExecuted(ctx context.Context, order *model.Order, result *model.ExecutionResult) error {
	routes, err := l.store.GetRoutes(ctx, order.ID)
	if err != nil {
		return err
	}
	shares := realizedShares(order.TotalAmountIn.Big(), result.Output.Big(), routes)

	executedAt := result.Timestamp
	if err := l.store.MarkExecuted(ctx, order.ID, executedAt, shares); err != nil {
		return err
	}
	if err := l.store.SaveResult(ctx, result); err != nil {
		return err
	}

	l.emitter.Emit(events.Event{
		Type:    events.TypeOrderExecuted,
		OrderID: order.ID,
		Data: map[string]interface{}{
			"output":       result.Output.String(),
			"slippage_bps": result.SlippageBps,
		},
	})
	return nil
}

// Refund drives pending → refunded: the full escrowed amount goes back to
// the submitter and a failed result is recorded with the captured reason.
func (l *Ledger) Refund(ctx context.Context, order *model.Order, reason string, result *model.ExecutionResult) error {
	total := order.TotalAmountIn.Big()
	if err := l.bank.Transfer(ctx, common.HexToAddress(order.TokenIn), l.custody, common.HexToAddress(order.Submitter), total); err != nil {
		logger.WithError(err).WithField("order_id", order.ID).Error("escrow release failed")
		return fmt.Errorf("escrow release failed: %w", err)
	}

	if err := l.store.MarkRefunded(ctx, order.ID, model.NewBigInt(total)); err != nil {
		return err
	}
	if err := l.store.SaveResult(ctx, result); err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"order_id": order.ID,
		"refund":   total.String(),
		"reason":   reason,
	}).Warn("order refunded")

	l.emitter.Emit(events.Event{
		Type:    events.TypeOrderRefunded,
		OrderID: order.ID,
		Data: map[string]interface{}{
			"refund": total.String(),
			"reason": reason,
		},
	})
	return nil
}

func (l *Ledger) validate(ctx context.Context, in CreateOrderInput) error {
	if len(in.Routes) < 1 || len(in.Routes) > MaxRoutes {
		return ErrRouteCount
	}
	if in.TotalAmountIn == nil || in.TotalAmountIn.Cmp(l.admin.MinOrderAmount()) < 0 {
		return ErrBelowMinimum
	}
	if !in.Deadline.After(l.now()) {
		return ErrPastDeadline
	}
	if in.TokenIn == in.TokenOut {
		return ErrSameToken
	}
	if in.TokenIn == (common.Address{}) || in.TokenOut == (common.Address{}) {
		return ErrZeroToken
	}
	if in.MinTotalOut == nil || in.MinTotalOut.Sign() <= 0 {
		return ErrInvalidMinOut
	}

	sum := new(big.Int)
	for _, route := range in.Routes {
		if route.AmountIn == nil || route.AmountIn.Sign() <= 0 {
			return ErrInvalidRouteAmount
		}
		if len(route.Path) < 2 {
			return ErrPathTooShort
		}
		if route.Path[0] != in.TokenIn || route.Path[len(route.Path)-1] != in.TokenOut {
			return ErrPathEndpoints
		}
		if route.MinAmountOut == nil || route.MinAmountOut.Sign() <= 0 {
			return ErrInvalidRouteMinOut
		}
		if _, err := l.registry.Validate(ctx, route.VenueID); err != nil {
			return err
		}
		sum.Add(sum, route.AmountIn)
	}

	// No rounding remainder tolerated: the partition must be exact.
	if sum.Cmp(in.TotalAmountIn) != 0 {
		return ErrAmountMismatch
	}
	return nil
}

// realizedShares splits outputAmount across routes pro rata by amountIn.
// Each share floors; the remainder goes to the last route so the shares
// always sum exactly to outputAmount.
func realizedShares(totalIn, output *big.Int, routes []model.RouteSplit) []*model.BigInt {
	shares := make([]*model.BigInt, len(routes))
	if len(routes) == 0 || totalIn == nil || totalIn.Sign() <= 0 || output == nil {
		return shares
	}

	rest := new(big.Int).Set(output)
	for i, route := range routes {
		if i == len(routes)-1 {
			shares[i] = model.NewBigInt(rest)
			break
		}
		share := new(big.Int).Mul(output, route.AmountIn.Big())
		share.Quo(share, totalIn)
		shares[i] = model.NewBigInt(share)
		rest.Sub(rest, share)
	}
	return shares
}

func computeOrderID(submitter common.Address, createdAt time.Time, totalAmountIn *big.Int, tokenIn, tokenOut common.Address, nonce uint64) common.Hash {
	return crypto.Keccak256Hash(
		submitter.Bytes(),
		big.NewInt(createdAt.UnixNano()).Bytes(),
		totalAmountIn.Bytes(),
		tokenIn.Bytes(),
		tokenOut.Bytes(),
		new(big.Int).SetUint64(nonce).Bytes(),
	)
}

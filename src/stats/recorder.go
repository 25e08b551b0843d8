package stats

import (
	"context"
	"math/big"
	"sync"

	"github.com/shopspring/decimal"
)

type orderCounter interface {
	CountOrders(ctx context.Context) (int64, error)
}

type venueCounter interface {
	Count(ctx context.Context) (int64, error)
}

type feeTotals interface {
	Totals() (volume, feesCollected *big.Int, ordersSettled uint64)
}

// Recorder keeps execution outcome counters and derives the aggregate stats
// exposed on the read surface. Not part of the custody path; everything here
// is observational.
type Recorder struct {
	mu sync.Mutex

	executed    uint64
	refunded    uint64
	slippageSum int64

	orders orderCounter
	venues venueCounter
	fees   feeTotals
}

// NewRecorder wires a Recorder to its read-side collaborators.
func NewRecorder(orders orderCounter, venues venueCounter, fees feeTotals) *Recorder {
	return &Recorder{orders: orders, venues: venues, fees: fees}
}

// RecordExecuted counts one successful execution.
func (r *Recorder) RecordExecuted(slippageBps int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executed++
	r.slippageSum += slippageBps
}

// RecordRefunded counts one refund (failure or expiry).
func (r *Recorder) RecordRefunded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunded++
}

// Snapshot is the aggregate view: order/venue counts, processed volume,
// collected fees and derived ratios.
type Snapshot struct {
	Orders         int64           `json:"orders"`
	Executed       uint64          `json:"executed"`
	Refunded       uint64          `json:"refunded"`
	Venues         int64           `json:"venues"`
	Volume         string          `json:"volume"`
	FeesCollected  string          `json:"fees_collected"`
	SuccessRate    decimal.Decimal `json:"success_rate"`
	AvgSlippageBps decimal.Decimal `json:"avg_slippage_bps"`
}

// Snapshot assembles the current aggregate stats.
func (r *Recorder) Snapshot(ctx context.Context) (Snapshot, error) {
	orders, err := r.orders.CountOrders(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	venues, err := r.venues.Count(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	volume, feesCollected, _ := r.fees.Totals()

	r.mu.Lock()
	executed := r.executed
	refunded := r.refunded
	slippageSum := r.slippageSum
	r.mu.Unlock()

	snap := Snapshot{
		Orders:        orders,
		Executed:      executed,
		Refunded:      refunded,
		Venues:        venues,
		Volume:        volume.String(),
		FeesCollected: feesCollected.String(),
	}

	terminal := executed + refunded
	if terminal > 0 {
		snap.SuccessRate = decimal.NewFromUint64(executed).
			Div(decimal.NewFromUint64(terminal)).
			Round(4)
	}
	if executed > 0 {
		snap.AvgSlippageBps = decimal.NewFromInt(slippageSum).
			Div(decimal.NewFromUint64(executed)).
			Round(2)
	}
	return snap, nil
}

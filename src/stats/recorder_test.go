package stats

import (
	"context"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type stubOrderCounter struct {
	count int64
	err   error
}

func (s stubOrderCounter) CountOrders(context.Context) (int64, error) {
	return s.count, s.err
}

type stubVenueCounter struct {
	count int64
	err   error
}

func (s stubVenueCounter) Count(context.Context) (int64, error) {
	return s.count, s.err
}

type stubFeeTotals struct {
	volume  *big.Int
	fees    *big.Int
	settled uint64
}

func (s stubFeeTotals) Totals() (*big.Int, *big.Int, uint64) {
	return s.volume, s.fees, s.settled
}

func newRecorderFixture() *Recorder {
	return NewRecorder(
		stubOrderCounter{count: 5},
		stubVenueCounter{count: 2},
		stubFeeTotals{volume: big.NewInt(8000), fees: big.NewInt(24), settled: 3},
	)
}

func TestSnapshotEmpty(t *testing.T) {
	recorder := newRecorderFixture()

	snap, err := recorder.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Orders != 5 || snap.Venues != 2 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
	if snap.Volume != "8000" || snap.FeesCollected != "24" {
		t.Fatalf("unexpected totals: %+v", snap)
	}
	if !snap.SuccessRate.IsZero() || !snap.AvgSlippageBps.IsZero() {
		t.Fatalf("ratios must stay zero without terminal orders: %+v", snap)
	}
}

func TestSnapshotRatios(t *testing.T) {
	recorder := newRecorderFixture()

	recorder.RecordExecuted(10)
	recorder.RecordExecuted(25)
	recorder.RecordRefunded()

	snap, err := recorder.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Executed != 2 || snap.Refunded != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	assert.True(t, snap.SuccessRate.Equal(decimal.RequireFromString("0.6667")), "success rate %s", snap.SuccessRate)
	assert.True(t, snap.AvgSlippageBps.Equal(decimal.RequireFromString("17.5")), "avg slippage %s", snap.AvgSlippageBps)
}

func TestSnapshotPropagatesCounterErrors(t *testing.T) {
	recorder := NewRecorder(
		stubOrderCounter{err: assert.AnError},
		stubVenueCounter{},
		stubFeeTotals{volume: big.NewInt(0), fees: big.NewInt(0)},
	)

	if _, err := recorder.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected counter error to propagate")
	}
}

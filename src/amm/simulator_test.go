package amm

import (
	"errors"
	"math/big"
	"testing"
)

func TestSimulateSwap(t *testing.T) {
	tests := []struct {
		name       string
		reserveIn  int64
		reserveOut int64
		amountIn   int64
		want       int64
	}{
		// floor(100*997*1000 / (1000*1000 + 100*997)) = floor(99700000/1099700)
		{name: "small trade", reserveIn: 1000, reserveOut: 1000, amountIn: 100, want: 90},
		{name: "deep pool", reserveIn: 1000000, reserveOut: 1000000, amountIn: 100, want: 99},
		{name: "asymmetric pool", reserveIn: 1000, reserveOut: 2000, amountIn: 100, want: 181},
		{name: "trade dominates pool", reserveIn: 100, reserveOut: 100, amountIn: 10000, want: 99},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := SimulateSwap(big.NewInt(tc.reserveIn), big.NewInt(tc.reserveOut), big.NewInt(tc.amountIn))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Int64() != tc.want {
				t.Fatalf("expected %d, got %s", tc.want, out)
			}
		})
	}
}

func TestSimulateSwapRejectsBadInputs(t *testing.T) {
	if _, err := SimulateSwap(big.NewInt(0), big.NewInt(1000), big.NewInt(10)); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity for empty input reserve, got %v", err)
	}
	if _, err := SimulateSwap(big.NewInt(1000), big.NewInt(0), big.NewInt(10)); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity for empty output reserve, got %v", err)
	}
	if _, err := SimulateSwap(nil, big.NewInt(1000), big.NewInt(10)); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity for nil reserve, got %v", err)
	}
	if _, err := SimulateSwap(big.NewInt(1000), big.NewInt(1000), big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero amount, got %v", err)
	}
	if _, err := SimulateSwap(big.NewInt(1000), big.NewInt(1000), big.NewInt(-5)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative amount, got %v", err)
	}
}

func TestPriceImpact(t *testing.T) {
	out, err := SimulateSwap(big.NewInt(1000), big.NewInt(1000), big.NewInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	impact, err := PriceImpact(big.NewInt(1000), big.NewInt(1000), big.NewInt(100), out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// exec price 90/100 vs spot 1000/1000: shortfall 10%, i.e. 1000 bps
	if impact != 1000 {
		t.Fatalf("expected 1000 bps impact, got %d", impact)
	}
}

func TestPriceImpactFloorsAtZero(t *testing.T) {
	// Output better than spot must not report negative impact.
	impact, err := PriceImpact(big.NewInt(1000), big.NewInt(1000), big.NewInt(100), big.NewInt(150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if impact != 0 {
		t.Fatalf("expected 0 bps impact, got %d", impact)
	}
}

func TestPriceImpactCapsAtFullLoss(t *testing.T) {
	impact, err := PriceImpact(big.NewInt(1000), big.NewInt(1000), big.NewInt(100), big.NewInt(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if impact != 10000 {
		t.Fatalf("expected 10000 bps impact, got %d", impact)
	}
}

func TestOptimalSplitEqualPools(t *testing.T) {
	pool := Pool{ReserveIn: big.NewInt(1000000), ReserveOut: big.NewInt(1000000)}

	split, err := OptimalSplit(pool, pool, big.NewInt(10000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := new(big.Int).Add(split.AmountA, split.AmountB)
	if total.Int64() != 10000 {
		t.Fatalf("split must conserve the input amount, got %s", total)
	}
	// Identical pools stay at the even split.
	if split.AmountA.Int64() != 5000 || split.AmountB.Int64() != 5000 {
		t.Fatalf("expected even split, got %s/%s", split.AmountA, split.AmountB)
	}
}

func TestOptimalSplitTiltsTowardDeeperPool(t *testing.T) {
	deep := Pool{ReserveIn: big.NewInt(10000000), ReserveOut: big.NewInt(10000000)}
	shallow := Pool{ReserveIn: big.NewInt(10000), ReserveOut: big.NewInt(10000)}

	split, err := OptimalSplit(deep, shallow, big.NewInt(10000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if split.AmountA.Cmp(split.AmountB) <= 0 {
		t.Fatalf("expected tilt toward the deeper pool, got %s/%s", split.AmountA, split.AmountB)
	}
	if split.AmountA.Int64() != 6000 {
		t.Fatalf("expected fixed 60%% tilt, got %s", split.AmountA)
	}
	total := new(big.Int).Add(split.AmountA, split.AmountB)
	if total.Int64() != 10000 {
		t.Fatalf("split must conserve the input amount, got %s", total)
	}
}

func TestOptimalSplitRejectsZeroAmount(t *testing.T) {
	pool := Pool{ReserveIn: big.NewInt(1000), ReserveOut: big.NewInt(1000)}
	if _, err := OptimalSplit(pool, pool, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestEstimateSlippageDiscountsByRouteCount(t *testing.T) {
	amountIn := big.NewInt(100)
	reserveIn := big.NewInt(1000)
	reserveOut := big.NewInt(1000)

	single, err := EstimateSlippage(amountIn, reserveIn, reserveOut, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if single != 1000 {
		t.Fatalf("expected 1000 bps for one route, got %d", single)
	}

	double, err := EstimateSlippage(amountIn, reserveIn, reserveOut, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1000 * 1000 / 1200 = 833
	if double != 833 {
		t.Fatalf("expected 833 bps for two routes, got %d", double)
	}

	triple, err := EstimateSlippage(amountIn, reserveIn, reserveOut, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1000 * 1000 / 1400 = 714
	if triple != 714 {
		t.Fatalf("expected 714 bps for three routes, got %d", triple)
	}

	if _, err := EstimateSlippage(amountIn, reserveIn, reserveOut, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero routes, got %v", err)
	}
}

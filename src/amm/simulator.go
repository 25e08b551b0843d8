package amm

import (
	"errors"
	"math/big"
)

// Constant-product swap estimation with the canonical 0.3% input fee.
// Everything here is read-only integer math; no pool state is touched.

var (
	ErrInsufficientLiquidity = errors.New("amm: insufficient liquidity")
	ErrInvalidAmount         = errors.New("amm: invalid amount")
)

var (
	feeNumerator   = big.NewInt(997)
	feeDenominator = big.NewInt(1000)
	bpsScale       = big.NewInt(10000)
)

// Pool holds one side's reserves as seen by the planner.
type Pool struct {
	ReserveIn  *big.Int
	ReserveOut *big.Int
}

// SimulateSwap returns floor(amountIn*997*reserveOut / (reserveIn*1000 + amountIn*997)).
// The 0.3% fee is taken from the input before the constant-product division.
func SimulateSwap(reserveIn, reserveOut, amountIn *big.Int) (*big.Int, error) {
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}
	if reserveIn.Sign() < 0 || reserveOut.Sign() < 0 {
		return nil, ErrInsufficientLiquidity
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	amountInWithFee := new(big.Int).Mul(amountIn, feeNumerator)
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, feeDenominator)
	denominator.Add(denominator, amountInWithFee)

	if denominator.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}
	return numerator.Quo(numerator, denominator), nil
}

// PriceImpact compares the realized execution price (amountOut/amountIn)
// against the pool's spot price (reserveOut/reserveIn) and returns the
// relative shortfall in basis points, floored at zero.
//
// impact = (spot - exec) / spot, computed as
// (amountIn*reserveOut - amountOut*reserveIn) * 10000 / (amountIn*reserveOut).
func PriceImpact(reserveIn, reserveOut, amountIn, amountOut *big.Int) (int64, error) {
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return 0, ErrInsufficientLiquidity
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if amountOut == nil || amountOut.Sign() < 0 {
		return 0, ErrInvalidAmount
	}

	spotScaled := new(big.Int).Mul(amountIn, reserveOut)
	if spotScaled.Sign() == 0 {
		return 0, ErrInsufficientLiquidity
	}

	execScaled := new(big.Int).Mul(amountOut, reserveIn)
	shortfall := new(big.Int).Sub(spotScaled, execScaled)
	if shortfall.Sign() <= 0 {
		return 0, nil
	}

	impact := shortfall.Mul(shortfall, bpsScale)
	impact.Quo(impact, spotScaled)
	if !impact.IsInt64() {
		return bpsScale.Int64(), nil
	}
	bps := impact.Int64()
	if bps > 10000 {
		bps = 10000
	}
	return bps, nil
}

// SplitResult describes a two-pool allocation and its simulated legs.
type SplitResult struct {
	AmountA *big.Int
	AmountB *big.Int
	OutA    *big.Int
	OutB    *big.Int
	ImpactA int64
	ImpactB int64
}

// TotalOut returns the combined simulated output.
func (s SplitResult) TotalOut() *big.Int {
	return new(big.Int).Add(s.OutA, s.OutB)
}

// OptimalSplit allocates totalAmount across two pools. It starts from a
// 50/50 split; if one leg shows strictly lower impact the split is
// re-simulated once with a fixed 60/40 tilt toward that leg. This is a
// bounded heuristic, not a converged optimizer.
func OptimalSplit(poolA, poolB Pool, totalAmount *big.Int) (SplitResult, error) {
	if totalAmount == nil || totalAmount.Sign() <= 0 {
		return SplitResult{}, ErrInvalidAmount
	}

	half := new(big.Int).Quo(totalAmount, big.NewInt(2))
	rest := new(big.Int).Sub(totalAmount, half)

	even, err := simulateSplit(poolA, poolB, half, rest)
	if err != nil {
		return SplitResult{}, err
	}

	switch {
	case even.ImpactA < even.ImpactB:
		tiltA := new(big.Int).Mul(totalAmount, big.NewInt(60))
		tiltA.Quo(tiltA, big.NewInt(100))
		return simulateSplit(poolA, poolB, tiltA, new(big.Int).Sub(totalAmount, tiltA))
	case even.ImpactB < even.ImpactA:
		tiltB := new(big.Int).Mul(totalAmount, big.NewInt(60))
		tiltB.Quo(tiltB, big.NewInt(100))
		return simulateSplit(poolA, poolB, new(big.Int).Sub(totalAmount, tiltB), tiltB)
	default:
		return even, nil
	}
}

func simulateSplit(poolA, poolB Pool, amountA, amountB *big.Int) (SplitResult, error) {
	outA, err := SimulateSwap(poolA.ReserveIn, poolA.ReserveOut, amountA)
	if err != nil {
		return SplitResult{}, err
	}
	outB, err := SimulateSwap(poolB.ReserveIn, poolB.ReserveOut, amountB)
	if err != nil {
		return SplitResult{}, err
	}

	impactA, err := PriceImpact(poolA.ReserveIn, poolA.ReserveOut, amountA, outA)
	if err != nil {
		return SplitResult{}, err
	}
	impactB, err := PriceImpact(poolB.ReserveIn, poolB.ReserveOut, amountB, outB)
	if err != nil {
		return SplitResult{}, err
	}

	return SplitResult{
		AmountA: amountA,
		AmountB: amountB,
		OutA:    outA,
		OutB:    outB,
		ImpactA: impactA,
		ImpactB: impactB,
	}, nil
}

// EstimateSlippage estimates impact for a prospective trade and discounts it
// as the route count grows: splitting across venues dilutes per-pool impact.
// Scale factor: 1000 / (1000 + (routeCount-1)*200).
func EstimateSlippage(amountIn, reserveIn, reserveOut *big.Int, routeCount int) (int64, error) {
	if routeCount < 1 {
		return 0, ErrInvalidAmount
	}

	out, err := SimulateSwap(reserveIn, reserveOut, amountIn)
	if err != nil {
		return 0, err
	}
	impact, err := PriceImpact(reserveIn, reserveOut, amountIn, out)
	if err != nil {
		return 0, err
	}

	scaleDen := int64(1000 + (routeCount-1)*200)
	return impact * 1000 / scaleDen, nil
}

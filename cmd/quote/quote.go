package quote

import (
	"fmt"
	"math/big"

	"github.com/sirupsen/logrus"

	"swaprouter/src/amm"
)

// Quote runs the pool math offline: expected output, price impact, the
// two-venue split heuristic and the slippage estimate for a candidate trade.
type Quote struct {
	ReserveIn  *big.Int
	ReserveOut *big.Int
	AmountIn   *big.Int
	Routes     int
}

func (q *Quote) Start() error {
	amountOut, err := amm.SimulateSwap(q.ReserveIn, q.ReserveOut, q.AmountIn)
	if err != nil {
		logrus.WithError(err).Error("simulation failed")
		return err
	}

	impact, err := amm.PriceImpact(q.ReserveIn, q.ReserveOut, q.AmountIn, amountOut)
	if err != nil {
		return err
	}

	estimate, err := amm.EstimateSlippage(q.AmountIn, q.ReserveIn, q.ReserveOut, q.Routes)
	if err != nil {
		return err
	}

	fmt.Printf("amount out:        %s\n", amountOut.String())
	fmt.Printf("price impact:      %d bps\n", impact)
	fmt.Printf("slippage estimate: %d bps (%d routes)\n", estimate, q.Routes)

	pool := amm.Pool{ReserveIn: q.ReserveIn, ReserveOut: q.ReserveOut}
	split, err := amm.OptimalSplit(pool, pool, q.AmountIn)
	if err != nil {
		return err
	}
	fmt.Printf("split leg A:       in=%s out=%s impact=%d bps\n", split.AmountA.String(), split.OutA.String(), split.ImpactA)
	fmt.Printf("split leg B:       in=%s out=%s impact=%d bps\n", split.AmountB.String(), split.OutB.String(), split.ImpactB)
	fmt.Printf("split total out:   %s\n", split.TotalOut().String())

	return nil
}

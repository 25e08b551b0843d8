package handler

import (
	"context"
	"net/http"
	"strconv"

	"swaprouter/src/amm"
	"swaprouter/src/stats"
)

type statsProvider interface {
	Snapshot(ctx context.Context) (stats.Snapshot, error)
}

// StatsHandler serves the aggregate order/volume/fee statistics.
func StatsHandler(provider statsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := provider.Snapshot(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// SimulateSwapHandler runs the constant-product estimate for a single pool.
func SimulateSwapHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reserveIn, err := parseBig(r.URL.Query().Get("reserve_in"))
		if err != nil {
			http.Error(w, "invalid reserve_in", http.StatusBadRequest)
			return
		}
		reserveOut, err := parseBig(r.URL.Query().Get("reserve_out"))
		if err != nil {
			http.Error(w, "invalid reserve_out", http.StatusBadRequest)
			return
		}
		amountIn, err := parseBig(r.URL.Query().Get("amount_in"))
		if err != nil {
			http.Error(w, "invalid amount_in", http.StatusBadRequest)
			return
		}

		amountOut, err := amm.SimulateSwap(reserveIn, reserveOut, amountIn)
		if err != nil {
			writeError(w, err)
			return
		}
		impact, err := amm.PriceImpact(reserveIn, reserveOut, amountIn, amountOut)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"amount_out":       amountOut.String(),
			"price_impact_bps": impact,
		})
	}
}

// EstimateSlippageHandler serves the route-count-discounted impact estimate.
func EstimateSlippageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		amountIn, err := parseBig(r.URL.Query().Get("amount_in"))
		if err != nil {
			http.Error(w, "invalid amount_in", http.StatusBadRequest)
			return
		}
		reserveIn, err := parseBig(r.URL.Query().Get("reserve_in"))
		if err != nil {
			http.Error(w, "invalid reserve_in", http.StatusBadRequest)
			return
		}
		reserveOut, err := parseBig(r.URL.Query().Get("reserve_out"))
		if err != nil {
			http.Error(w, "invalid reserve_out", http.StatusBadRequest)
			return
		}
		routeCount := 1
		if raw := r.URL.Query().Get("route_count"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "invalid route_count", http.StatusBadRequest)
				return
			}
			routeCount = parsed
		}

		estimate, err := amm.EstimateSlippage(amountIn, reserveIn, reserveOut, routeCount)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"slippage_bps": estimate})
	}
}

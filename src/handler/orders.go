package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"swaprouter/src/ledger"
	"swaprouter/src/model"
)

// callerHeader identifies the on-ledger account behind an API call. Key
// custody and signature checks live outside this service.
const callerHeader = "X-Caller-Address"

type orderCreator interface {
	CreateOrder(ctx context.Context, submitter common.Address, in ledger.CreateOrderInput) (common.Hash, error)
}

type orderReader interface {
	Get(ctx context.Context, orderID string) (*model.Order, error)
	Routes(ctx context.Context, orderID string) ([]model.RouteSplit, error)
	Result(ctx context.Context, orderID string) (*model.ExecutionResult, error)
}

type orderExecutor interface {
	ExecuteOrder(ctx context.Context, caller common.Address, orderID string) (*model.ExecutionResult, error)
	RefundExpiredOrder(ctx context.Context, orderID string) (*model.ExecutionResult, error)
}

type routeRequest struct {
	VenueID             string   `json:"venue_id"`
	Path                []string `json:"path"`
	AmountIn            string   `json:"amount_in"`
	MinAmountOut        string   `json:"min_amount_out"`
	ExpectedGas         uint64   `json:"expected_gas"`
	ExpectedSlippageBps int64    `json:"expected_slippage_bps"`
}

type createOrderRequest struct {
	TokenIn       string         `json:"token_in"`
	TokenOut      string         `json:"token_out"`
	TotalAmountIn string         `json:"total_amount_in"`
	MinTotalOut   string         `json:"min_total_out"`
	Deadline      time.Time      `json:"deadline"`
	Routes        []routeRequest `json:"routes"`
}

// CreateOrderHandler accepts a pre-computed trade plan and opens an order.
func CreateOrderHandler(orders orderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		in := ledger.CreateOrderInput{
			TokenIn:  common.HexToAddress(req.TokenIn),
			TokenOut: common.HexToAddress(req.TokenOut),
			Deadline: req.Deadline,
		}

		var err error
		if in.TotalAmountIn, err = parseBig(req.TotalAmountIn); err != nil {
			http.Error(w, "invalid total_amount_in", http.StatusBadRequest)
			return
		}
		if in.MinTotalOut, err = parseBig(req.MinTotalOut); err != nil {
			http.Error(w, "invalid min_total_out", http.StatusBadRequest)
			return
		}

		for _, route := range req.Routes {
			amountIn, err := parseBig(route.AmountIn)
			if err != nil {
				http.Error(w, "invalid route amount_in", http.StatusBadRequest)
				return
			}
			minOut, err := parseBig(route.MinAmountOut)
			if err != nil {
				http.Error(w, "invalid route min_amount_out", http.StatusBadRequest)
				return
			}

			path := make([]common.Address, len(route.Path))
			for i, hop := range route.Path {
				path[i] = common.HexToAddress(hop)
			}

			in.Routes = append(in.Routes, ledger.RouteInput{
				VenueID:             route.VenueID,
				Path:                path,
				AmountIn:            amountIn,
				MinAmountOut:        minOut,
				ExpectedGas:         route.ExpectedGas,
				ExpectedSlippageBps: route.ExpectedSlippageBps,
			})
		}

		orderID, err := orders.CreateOrder(r.Context(), caller, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"order_id": orderID.Hex()})
	}
}

// GetOrderHandler fetches one order.
func GetOrderHandler(orders orderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := orders.Get(r.Context(), chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

// GetRoutesHandler fetches an order's route splits.
func GetRoutesHandler(orders orderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes, err := orders.Routes(r.Context(), chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, routes)
	}
}

// GetResultHandler fetches an order's execution result.
func GetResultHandler(orders orderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := orders.Result(r.Context(), chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if result == nil {
			writeError(w, ledger.ErrOrderNotFound)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ExecuteOrderHandler drives a pending order through the batch executor.
func ExecuteOrderHandler(exec orderExecutor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireCaller(w, r)
		if !ok {
			return
		}

		result, err := exec.ExecuteOrder(r.Context(), caller, chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// RefundExpiredOrderHandler refunds a pending order past its deadline.
// Open to anyone.
func RefundExpiredOrderHandler(exec orderExecutor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := exec.RefundExpiredOrder(r.Context(), chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func requireCaller(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	raw := r.Header.Get(callerHeader)
	if !common.IsHexAddress(raw) {
		http.Error(w, "missing or invalid "+callerHeader, http.StatusUnauthorized)
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func parseBig(s string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.New("invalid integer")
	}
	return value, nil
}

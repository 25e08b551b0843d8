package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"swaprouter/src/admin"
	"swaprouter/src/amm"
	"swaprouter/src/fees"
	"swaprouter/src/ledger"
	"swaprouter/src/orchestrator"
	"swaprouter/src/registry"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels onto HTTP status codes. Unknown errors
// become 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, ledger.ErrOrderNotFound),
		errors.Is(err, registry.ErrVenueNotRegistered):
		status = http.StatusNotFound
	case errors.Is(err, orchestrator.ErrAlreadyExecuted),
		errors.Is(err, orchestrator.ErrAlreadyRefunded),
		errors.Is(err, orchestrator.ErrOrderBusy),
		errors.Is(err, ledger.ErrOrderIdCollision):
		status = http.StatusConflict
	case errors.Is(err, orchestrator.ErrNotAuthorized),
		errors.Is(err, admin.ErrUnauthorized),
		errors.Is(err, fees.ErrUnauthorized),
		errors.Is(err, registry.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrPaused):
		status = http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrRouteCount),
		errors.Is(err, ledger.ErrBelowMinimum),
		errors.Is(err, ledger.ErrPastDeadline),
		errors.Is(err, ledger.ErrSameToken),
		errors.Is(err, ledger.ErrZeroToken),
		errors.Is(err, ledger.ErrInvalidMinOut),
		errors.Is(err, ledger.ErrInvalidRouteAmount),
		errors.Is(err, ledger.ErrPathTooShort),
		errors.Is(err, ledger.ErrPathEndpoints),
		errors.Is(err, ledger.ErrInvalidRouteMinOut),
		errors.Is(err, ledger.ErrAmountMismatch),
		errors.Is(err, registry.ErrVenueInactive),
		errors.Is(err, registry.ErrVenueUnhealthy),
		errors.Is(err, registry.ErrInvalidConfig),
		errors.Is(err, orchestrator.ErrOrderExpired),
		errors.Is(err, orchestrator.ErrOrderNotExpired),
		errors.Is(err, orchestrator.ErrMinOutputViolated),
		errors.Is(err, fees.ErrCeilingBreach),
		errors.Is(err, admin.ErrZeroAddress),
		errors.Is(err, admin.ErrInvalidAmount),
		errors.Is(err, amm.ErrInsufficientLiquidity),
		errors.Is(err, amm.ErrInvalidAmount):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"swaprouter/src/admin"
	"swaprouter/src/registry"
)

const adminKeyHeader = "X-Admin-Key"

type venueAdmin interface {
	Register(ctx context.Context, caller common.Address, id string, config registry.VenueConfig) error
	SetActive(ctx context.Context, caller common.Address, id string, active bool, reason string) error
	SetHealth(ctx context.Context, caller common.Address, id string, healthy bool) error
}

type feeAdmin interface {
	SetProtocolFeeBps(caller common.Address, bps int64) error
	SetSlippageTolerance(caller common.Address, bps int64) error
}

// AdminHandler groups the key-gated management endpoints. Every request must
// present the shared admin key; the caller address then used for the
// domain-level admin checks is the store's current admin.
type AdminHandler struct {
	config   admin.Config
	store    *admin.Store
	venues   venueAdmin
	fees     feeAdmin
	delegate func(caller, delegate common.Address, allowed bool) error
}

// NewAdminHandler wires the management surface.
func NewAdminHandler(config admin.Config, store *admin.Store, venues venueAdmin, fees feeAdmin) *AdminHandler {
	return &AdminHandler{
		config:   config,
		store:    store,
		venues:   venues,
		fees:     fees,
		delegate: store.SetDelegate,
	}
}

// authorize verifies the shared key and resolves the acting admin address.
func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	if !admin.VerifyKey(h.config.AdminKeyHash, r.Header.Get(adminKeyHeader)) {
		http.Error(w, "invalid admin key", http.StatusUnauthorized)
		return common.Address{}, false
	}
	return h.store.Admin(), true
}

type registerVenueRequest struct {
	ID           string `json:"id"`
	Router       string `json:"router"`
	Factory      string `json:"factory"`
	SwapSelector string `json:"swap_selector"`
	MinLiquidity string `json:"min_liquidity"`
	FeeBps       int64  `json:"fee_bps"`
	Priority     int    `json:"priority"`
}

// RegisterVenue upserts a venue config.
func (h *AdminHandler) RegisterVenue(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req registerVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	config := registry.VenueConfig{
		Router:       common.HexToAddress(req.Router),
		Factory:      common.HexToAddress(req.Factory),
		SwapSelector: req.SwapSelector,
		FeeBps:       req.FeeBps,
		Priority:     req.Priority,
	}
	if req.MinLiquidity != "" {
		minLiquidity, err := parseBig(req.MinLiquidity)
		if err != nil {
			http.Error(w, "invalid min_liquidity", http.StatusBadRequest)
			return
		}
		config.MinLiquidity = minLiquidity
	}

	if err := h.venues.Register(r.Context(), caller, req.ID, config); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"venue_id": req.ID})
}

type venueStatusRequest struct {
	Active  *bool  `json:"active,omitempty"`
	Healthy *bool  `json:"healthy,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// SetVenueStatus flips the activity and/or health flags of a venue.
func (h *AdminHandler) SetVenueStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req venueStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Active == nil && req.Healthy == nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "venueID")
	if req.Active != nil {
		if err := h.venues.SetActive(r.Context(), caller, id, *req.Active, req.Reason); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Healthy != nil {
		if err := h.venues.SetHealth(r.Context(), caller, id, *req.Healthy); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"venue_id": id})
}

type feeParamsRequest struct {
	ProtocolFeeBps       *int64 `json:"protocol_fee_bps,omitempty"`
	SlippageToleranceBps *int64 `json:"slippage_tolerance_bps,omitempty"`
}

// SetFeeParams updates the protocol fee and/or default slippage tolerance.
func (h *AdminHandler) SetFeeParams(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req feeParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.ProtocolFeeBps == nil && req.SlippageToleranceBps == nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	if req.ProtocolFeeBps != nil {
		if err := h.fees.SetProtocolFeeBps(caller, *req.ProtocolFeeBps); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.SlippageToleranceBps != nil {
		if err := h.fees.SetSlippageTolerance(caller, *req.SlippageToleranceBps); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Pause halts order creation and execution.
func (h *AdminHandler) Pause(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.store.Pause(caller); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

// Unpause resumes order flow.
func (h *AdminHandler) Unpause(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.store.Unpause(caller); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

type transferAdminRequest struct {
	Next string `json:"next"`
}

// TransferAdmin hands admin rights to a new identity.
func (h *AdminHandler) TransferAdmin(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req transferAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.store.TransferAdmin(caller, common.HexToAddress(req.Next)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"admin": req.Next})
}

type setTreasuryRequest struct {
	Treasury string `json:"treasury"`
}

// SetTreasury changes the fee destination.
func (h *AdminHandler) SetTreasury(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req setTreasuryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.store.SetTreasury(caller, common.HexToAddress(req.Treasury)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"treasury": req.Treasury})
}

type setMinOrderRequest struct {
	Amount string `json:"amount"`
}

// SetMinOrderAmount changes the minimum accepted order size.
func (h *AdminHandler) SetMinOrderAmount(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req setMinOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	amount, err := parseBig(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	if err := h.store.SetMinOrderAmount(caller, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"min_order_amount": req.Amount})
}

type setDelegateRequest struct {
	Delegate string `json:"delegate"`
	Allowed  bool   `json:"allowed"`
}

// SetDelegate whitelists or removes an execution delegate.
func (h *AdminHandler) SetDelegate(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req setDelegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.delegate(caller, common.HexToAddress(req.Delegate), req.Allowed); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"allowed": req.Allowed})
}

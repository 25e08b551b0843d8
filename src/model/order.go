package model

import (
	"errors"
	"time"
)

const (
	OrderStatusPending  = "pending"
	OrderStatusExecuted = "executed"
	OrderStatusRefunded = "refunded"
)

// Storage-level sentinels shared by every store implementation.
var (
	// ErrDuplicateOrder is returned when an order id is already registered.
	// The id space is compare-and-register: the second writer must lose.
	ErrDuplicateOrder = errors.New("order id already exists")
)

// Order is a multi-venue swap order. Funds are escrowed at creation and the
// order moves from pending to exactly one terminal state: executed or refunded.
type Order struct {
	ID string `gorm:"primaryKey;size:66" json:"id"`

	Submitter string `gorm:"size:42;index;not null" json:"submitter"`
	TokenIn   string `gorm:"size:42;not null" json:"token_in"`
	TokenOut  string `gorm:"size:42;not null" json:"token_out"`

	TotalAmountIn *BigInt `gorm:"type:string;not null" json:"total_amount_in"`
	MinTotalOut   *BigInt `gorm:"type:string;not null" json:"min_total_out"`
	RefundAmount  *BigInt `gorm:"type:string" json:"refund_amount,omitempty"`

	Deadline time.Time `gorm:"not null" json:"deadline"`

	Status   string `gorm:"size:20;not null;default:pending" json:"status"`
	Executed bool   `gorm:"not null;default:false" json:"executed"`
	Refunded bool   `gorm:"not null;default:false" json:"refunded"`

	// Nonce is the submitter nonce observed at creation; it is one of the
	// orderId hash inputs and exists for collision avoidance only.
	Nonce uint64 `gorm:"not null" json:"nonce"`

	CreatedAt  time.Time  `json:"created_at"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`

	Routes []RouteSplit `gorm:"foreignKey:OrderID" json:"routes,omitempty"`
}

// TableName controls the exact table name for orders.
func (Order) TableName() string {
	return "orders"
}

// Terminal reports whether the order has reached a final state.
func (o *Order) Terminal() bool {
	return o.Executed || o.Refunded
}

// RouteSplit assigns a slice of an order's input to one venue. Immutable once
// stored except for the post-execution Executed/RealizedOut fields.
type RouteSplit struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID string `gorm:"size:66;index;not null" json:"order_id"`

	VenueID string `gorm:"size:64;not null" json:"venue_id"`

	// Path is the hop sequence, comma-joined token addresses. First element
	// must equal the order's TokenIn, last its TokenOut.
	Path string `gorm:"type:text;not null" json:"path"`

	AmountIn     *BigInt `gorm:"type:string;not null" json:"amount_in"`
	MinAmountOut *BigInt `gorm:"type:string;not null" json:"min_amount_out"`

	ExpectedGas         uint64 `json:"expected_gas"`
	ExpectedSlippageBps int64  `json:"expected_slippage_bps"`

	Executed    bool    `gorm:"not null;default:false" json:"executed"`
	RealizedOut *BigInt `gorm:"type:string" json:"realized_out,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName controls the exact table name for route splits.
func (RouteSplit) TableName() string {
	return "route_splits"
}

// SubmitterNonce tracks the monotonically increasing per-submitter nonce.
type SubmitterNonce struct {
	Submitter string    `gorm:"primaryKey;size:42" json:"submitter"`
	Nonce     uint64    `gorm:"not null;default:0" json:"nonce"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName controls the exact table name for submitter nonces.
func (SubmitterNonce) TableName() string {
	return "submitter_nonces"
}

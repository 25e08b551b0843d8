package model

import "time"

// ExecutionResult records the outcome of an order's terminal transition.
// Written exactly once, never updated.
type ExecutionResult struct {
	OrderID string `gorm:"primaryKey;size:66" json:"order_id"`

	Success       bool   `gorm:"not null" json:"success"`
	FailureReason string `gorm:"size:255" json:"failure_reason,omitempty"`

	Output      *BigInt `gorm:"type:string" json:"output,omitempty"`
	SlippageBps int64   `json:"slippage_bps"`

	GasUsed  uint64  `json:"gas_used"`
	GasPrice *BigInt `gorm:"type:string" json:"gas_price,omitempty"`

	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `gorm:"not null" json:"timestamp"`
}

// TableName controls the exact table name for execution results.
func (ExecutionResult) TableName() string {
	return "execution_results"
}

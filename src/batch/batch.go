package batch

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Operation is one call inside an all-or-nothing batch.
type Operation struct {
	Target  common.Address `json:"target"`
	Value   *big.Int       `json:"value,omitempty"`
	Payload []byte         `json:"payload"`

	// Condition is only used by the condition-gated entry point.
	Condition []byte `json:"condition,omitempty"`
}

// Receipt reports an accepted quantity-gated batch.
type Receipt struct {
	Output   *big.Int `json:"output"`
	GasUsed  uint64   `json:"gas_used"`
	GasPrice *big.Int `json:"gas_price,omitempty"`
}

// OperationResult is the per-call outcome of a condition-gated batch.
type OperationResult struct {
	Success bool     `json:"success"`
	Output  *big.Int `json:"output,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// Executor is the consumed conditional batch executor. ExecuteBatch is
// quantity-gated: either every operation lands and the aggregate output
// meets minTotalOut, or none of them take effect and an error is returned.
// ExecuteBatchConditional gates the batch on an opaque condition instead
// and reports per-operation results.
type Executor interface {
	ExecuteBatch(ctx context.Context, ops []Operation, minTotalOut *big.Int, deadline time.Time) (*Receipt, error)
	ExecuteBatchConditional(ctx context.Context, ops []Operation, condition []byte, deadline time.Time) ([]OperationResult, error)
}

var (
	// ErrBatchRejected carries the executor's stated reason for a rollback.
	ErrBatchRejected = errors.New("batch: executor rejected batch")
	// ErrEmptyBatch is returned before dispatching a batch with no operations.
	ErrEmptyBatch = errors.New("batch: no operations")
)

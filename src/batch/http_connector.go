package batch

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kelseyhightower/envconfig"
	logger "github.com/sirupsen/logrus"
)

// Config holds the HTTP connector settings for a remote batch executor.
type Config struct {
	BaseURL string        `envconfig:"BATCH_EXECUTOR_URL" default:"http://localhost:9545"`
	APIKey  string        `envconfig:"BATCH_EXECUTOR_API_KEY"`
	Timeout time.Duration `envconfig:"BATCH_EXECUTOR_TIMEOUT" default:"30s"`
}

// GetConfig loads the connector config from the environment.
func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

type wireOperation struct {
	Target    string `json:"target"`
	Value     string `json:"value"`
	Payload   string `json:"payload"`
	Condition string `json:"condition,omitempty"`
}

type batchRequest struct {
	Operations  []wireOperation `json:"operations"`
	MinTotalOut string          `json:"min_total_out,omitempty"`
	Condition   string          `json:"condition,omitempty"`
	Deadline    int64           `json:"deadline"`
}

type batchResponse struct {
	Success  bool   `json:"success"`
	Output   string `json:"output"`
	GasUsed  uint64 `json:"gas_used"`
	GasPrice string `json:"gas_price"`
	Reason   string `json:"reason,omitempty"`

	Results []struct {
		Success bool   `json:"success"`
		Output  string `json:"output"`
		Reason  string `json:"reason,omitempty"`
	} `json:"results,omitempty"`
}

// HTTPConnector talks to a remote conditional batch executor service.
type HTTPConnector struct {
	client *resty.Client
}

// NewHTTPConnector builds a connector from config.
func NewHTTPConnector(config Config) *HTTPConnector {
	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json")

	if config.APIKey != "" {
		client.SetHeader("X-Api-Key", config.APIKey)
	}

	return &HTTPConnector{client: client}
}

// ExecuteBatch dispatches the quantity-gated entry point.
func (c *HTTPConnector) ExecuteBatch(ctx context.Context, ops []Operation, minTotalOut *big.Int, deadline time.Time) (*Receipt, error) {
	if len(ops) == 0 {
		return nil, ErrEmptyBatch
	}

	req := batchRequest{
		Operations:  encodeOperations(ops),
		MinTotalOut: minTotalOut.String(),
		Deadline:    deadline.Unix(),
	}

	var resp batchResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post("/v1/batch/quantity")
	if err != nil {
		logger.WithError(err).Error("batch executor request failed")
		return nil, fmt.Errorf("%w: %v", ErrBatchRejected, err)
	}
	if httpResp.IsError() {
		return nil, fmt.Errorf("%w: http %d", ErrBatchRejected, httpResp.StatusCode())
	}
	if !resp.Success {
		reason := resp.Reason
		if reason == "" {
			reason = "executor reverted without reason"
		}
		return nil, fmt.Errorf("%w: %s", ErrBatchRejected, reason)
	}

	output, ok := new(big.Int).SetString(resp.Output, 10)
	if !ok {
		return nil, fmt.Errorf("%w: malformed output %q", ErrBatchRejected, resp.Output)
	}
	gasPrice := new(big.Int)
	if resp.GasPrice != "" {
		if _, ok := gasPrice.SetString(resp.GasPrice, 10); !ok {
			gasPrice.SetInt64(0)
		}
	}

	return &Receipt{Output: output, GasUsed: resp.GasUsed, GasPrice: gasPrice}, nil
}

// ExecuteBatchConditional dispatches the condition-gated entry point.
func (c *HTTPConnector) ExecuteBatchConditional(ctx context.Context, ops []Operation, condition []byte, deadline time.Time) ([]OperationResult, error) {
	if len(ops) == 0 {
		return nil, ErrEmptyBatch
	}

	req := batchRequest{
		Operations: encodeOperations(ops),
		Condition:  hex.EncodeToString(condition),
		Deadline:   deadline.Unix(),
	}

	var resp batchResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post("/v1/batch/conditional")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchRejected, err)
	}
	if httpResp.IsError() {
		return nil, fmt.Errorf("%w: http %d", ErrBatchRejected, httpResp.StatusCode())
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrBatchRejected, resp.Reason)
	}

	results := make([]OperationResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		out := new(big.Int)
		if r.Output != "" {
			out.SetString(r.Output, 10)
		}
		results = append(results, OperationResult{Success: r.Success, Output: out, Reason: r.Reason})
	}
	return results, nil
}

func encodeOperations(ops []Operation) []wireOperation {
	wire := make([]wireOperation, len(ops))
	for i, op := range ops {
		value := "0"
		if op.Value != nil {
			value = op.Value.String()
		}
		wire[i] = wireOperation{
			Target:    op.Target.Hex(),
			Value:     value,
			Payload:   hex.EncodeToString(op.Payload),
			Condition: hex.EncodeToString(op.Condition),
		}
	}
	return wire
}

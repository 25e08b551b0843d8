package fees

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"swaprouter/src/events"
	"swaprouter/src/model"
	"swaprouter/src/token"
)

var (
	testAdmin     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testTreasury  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	testCustody   = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	testSubmitter = common.HexToAddress("0x00000000000000000000000000000000000000d4")
	testTokenOut  = common.HexToAddress("0x00000000000000000000000000000000000000e5")
)

type stubAdmin struct{}

func (stubAdmin) IsAdmin(caller common.Address) bool { return caller == testAdmin }
func (stubAdmin) Treasury() common.Address           { return testTreasury }

func newTestAccountant(t *testing.T, feeBps int64) (*Accountant, *token.MemoryBank) {
	t.Helper()
	bank := token.NewMemoryBank()
	accountant, err := NewAccountant(stubAdmin{}, bank, testCustody, feeBps, 50, events.NewEmitter())
	if err != nil {
		t.Fatalf("failed to build accountant: %v", err)
	}
	return accountant, bank
}

func testOrder(amountIn int64) *model.Order {
	return &model.Order{
		ID:            "0xabc",
		Submitter:     testSubmitter.Hex(),
		TokenOut:      testTokenOut.Hex(),
		TotalAmountIn: model.NewBigInt(big.NewInt(amountIn)),
	}
}

func TestSettleSplitsOutputBetweenTreasuryAndSubmitter(t *testing.T) {
	accountant, bank := newTestAccountant(t, 30)
	bank.Mint(testTokenOut, testCustody, big.NewInt(10000))

	fee, payout, err := accountant.Settle(context.Background(), testOrder(5000), big.NewInt(10000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// floor(10000 * 30 / 10000) = 30
	if fee.Int64() != 30 {
		t.Fatalf("expected fee 30, got %s", fee)
	}
	if payout.Int64() != 9970 {
		t.Fatalf("expected payout 9970, got %s", payout)
	}

	treasuryBal, _ := bank.BalanceOf(context.Background(), testTokenOut, testTreasury)
	submitterBal, _ := bank.BalanceOf(context.Background(), testTokenOut, testSubmitter)
	custodyBal, _ := bank.BalanceOf(context.Background(), testTokenOut, testCustody)
	if treasuryBal.Int64() != 30 || submitterBal.Int64() != 9970 || custodyBal.Int64() != 0 {
		t.Fatalf("conservation violated: treasury=%s submitter=%s custody=%s", treasuryBal, submitterBal, custodyBal)
	}
}

func TestSettleFeeRoundsDownToZero(t *testing.T) {
	accountant, bank := newTestAccountant(t, 30)
	bank.Mint(testTokenOut, testCustody, big.NewInt(90))

	// floor(90 * 30 / 10000) = 0: the whole output goes to the submitter.
	fee, payout, err := accountant.Settle(context.Background(), testOrder(100), big.NewInt(90))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fee.Sign() != 0 {
		t.Fatalf("expected zero fee, got %s", fee)
	}
	if payout.Int64() != 90 {
		t.Fatalf("expected payout 90, got %s", payout)
	}

	treasuryBal, _ := bank.BalanceOf(context.Background(), testTokenOut, testTreasury)
	if treasuryBal.Sign() != 0 {
		t.Fatalf("treasury must receive nothing on a zero fee, got %s", treasuryBal)
	}
}

func TestSettleUpdatesTotals(t *testing.T) {
	accountant, bank := newTestAccountant(t, 100)
	bank.Mint(testTokenOut, testCustody, big.NewInt(20000))

	if _, _, err := accountant.Settle(context.Background(), testOrder(5000), big.NewInt(10000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := accountant.Settle(context.Background(), testOrder(3000), big.NewInt(10000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	volume, feesCollected, settled := accountant.Totals()
	if volume.Int64() != 8000 {
		t.Fatalf("expected volume 8000, got %s", volume)
	}
	if feesCollected.Int64() != 200 {
		t.Fatalf("expected fees 200, got %s", feesCollected)
	}
	if settled != 2 {
		t.Fatalf("expected 2 settled orders, got %d", settled)
	}
}

func TestSettleRejectsNegativeOutput(t *testing.T) {
	accountant, _ := newTestAccountant(t, 30)
	if _, _, err := accountant.Settle(context.Background(), testOrder(100), big.NewInt(-1)); !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestNewAccountantEnforcesCeilings(t *testing.T) {
	bank := token.NewMemoryBank()
	if _, err := NewAccountant(stubAdmin{}, bank, testCustody, MaxProtocolFeeBps+1, 50, events.NewEmitter()); !errors.Is(err, ErrCeilingBreach) {
		t.Fatalf("expected ErrCeilingBreach for fee above ceiling, got %v", err)
	}
	if _, err := NewAccountant(stubAdmin{}, bank, testCustody, 30, MaxSlippageToleranceBps+1, events.NewEmitter()); !errors.Is(err, ErrCeilingBreach) {
		t.Fatalf("expected ErrCeilingBreach for tolerance above ceiling, got %v", err)
	}
}

func TestSetProtocolFeeBps(t *testing.T) {
	accountant, _ := newTestAccountant(t, 30)

	if err := accountant.SetProtocolFeeBps(testSubmitter, 40); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-admin, got %v", err)
	}
	if err := accountant.SetProtocolFeeBps(testAdmin, MaxProtocolFeeBps+1); !errors.Is(err, ErrCeilingBreach) {
		t.Fatalf("expected ErrCeilingBreach, got %v", err)
	}
	if err := accountant.SetProtocolFeeBps(testAdmin, MaxProtocolFeeBps); err != nil {
		t.Fatalf("ceiling value must be accepted: %v", err)
	}
	if got := accountant.ProtocolFeeBps(); got != MaxProtocolFeeBps {
		t.Fatalf("expected fee %d, got %d", MaxProtocolFeeBps, got)
	}
}

func TestSetSlippageTolerance(t *testing.T) {
	accountant, _ := newTestAccountant(t, 30)

	if err := accountant.SetSlippageTolerance(testSubmitter, 40); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-admin, got %v", err)
	}
	if err := accountant.SetSlippageTolerance(testAdmin, MaxSlippageToleranceBps+1); !errors.Is(err, ErrCeilingBreach) {
		t.Fatalf("expected ErrCeilingBreach, got %v", err)
	}
	if err := accountant.SetSlippageTolerance(testAdmin, 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := accountant.SlippageTolerance(); got != 200 {
		t.Fatalf("expected tolerance 200, got %d", got)
	}
}

func TestSlippageBps(t *testing.T) {
	tests := []struct {
		name   string
		minOut int64
		output int64
		want   int64
	}{
		{name: "met exactly", minOut: 1000, output: 1000, want: 0},
		{name: "beat the floor", minOut: 1000, output: 1500, want: 0},
		// floor((1000-900)*10000/1000) = 1000
		{name: "ten percent short", minOut: 1000, output: 900, want: 1000},
		{name: "rounds down", minOut: 3000, output: 2999, want: 3},
		{name: "total loss capped", minOut: 1000, output: 0, want: 10000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SlippageBps(big.NewInt(tc.minOut), big.NewInt(tc.output))
			if got != tc.want {
				t.Fatalf("expected %d bps, got %d", tc.want, got)
			}
		})
	}
}

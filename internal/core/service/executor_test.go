package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proximalabs/tradepulse/internal/core/domain"
)

var (
	testWallet   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testContract = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testTokenIn  = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testTokenOut = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

// fakeReader serves balances and allowances from maps and counts calls.
type fakeReader struct {
	balances      map[common.Address]*big.Int
	allowance     *big.Int
	decimals      uint8
	balanceErr    error
	allowanceErr  error
	decimalsErr   error
	balanceCalls  int
	decimalsCalls int
}

func (r *fakeReader) TokenBalance(_ context.Context, _ common.Address, holder common.Address) (*big.Int, error) {
	r.balanceCalls++
	if r.balanceErr != nil {
		return nil, r.balanceErr
	}
	if b, ok := r.balances[holder]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func (r *fakeReader) TokenDecimals(_ context.Context, _ common.Address) (uint8, error) {
	r.decimalsCalls++
	if r.decimalsErr != nil {
		return 0, r.decimalsErr
	}
	return r.decimals, nil
}

func (r *fakeReader) RouterAllowance(_ context.Context, _ common.Address, _ common.Address) (*big.Int, error) {
	if r.allowanceErr != nil {
		return nil, r.allowanceErr
	}
	if r.allowance == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(r.allowance), nil
}

// fakeSubmitter records the order of state-changing calls.
type fakeSubmitter struct {
	calls       []string
	transferred *big.Int
	swapIntent  domain.SwapIntent
	transferErr error
	approveErr  error
	swapErr     error
}

func (s *fakeSubmitter) TransferToken(_ context.Context, _ common.Address, _ common.Address, amount *big.Int) (string, error) {
	s.calls = append(s.calls, "transfer")
	if s.transferErr != nil {
		return "", s.transferErr
	}
	s.transferred = new(big.Int).Set(amount)
	return "0xtransfer", nil
}

func (s *fakeSubmitter) ApproveRouterMax(_ context.Context, _ common.Address) (string, error) {
	s.calls = append(s.calls, "approve")
	if s.approveErr != nil {
		return "", s.approveErr
	}
	return "0xapprove", nil
}

func (s *fakeSubmitter) SubmitSwap(_ context.Context, intent domain.SwapIntent) (string, error) {
	s.calls = append(s.calls, "swap")
	if s.swapErr != nil {
		return "", s.swapErr
	}
	s.swapIntent = intent
	return "0xswap", nil
}

func newTestExecutor(reader *fakeReader, submitter *fakeSubmitter, canSign bool) *TradeExecutor {
	quoter, _ := NewConservativeQuoter(3)
	return NewTradeExecutor(reader, submitter, quoter, testWallet, canSign, ExecutorConfig{
		TokenIn:       testTokenIn,
		TokenOut:      testTokenOut,
		AgentContract: testContract,
		PoolFee:       500,
	})
}

func TestTradeAmount(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		want    int64
	}{
		{"large balance divides by ten thousand", 100_000_000, 10_000},
		{"small balance floors at minimum", 5_000, 100},
		{"exactly at floor boundary", 1_000_000, 100},
		{"just above floor boundary", 1_010_000, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TradeAmount(big.NewInt(tt.balance)); got.Int64() != tt.want {
				t.Errorf("TradeAmount(%d) = %v, want %d", tt.balance, got, tt.want)
			}
		})
	}
}

func TestExecuteReadOnlySkipsEverything(t *testing.T) {
	reader := &fakeReader{}
	submitter := &fakeSubmitter{}
	exec := newTestExecutor(reader, submitter, false)

	result := exec.Execute(context.Background())

	if result.Executed {
		t.Error("read-only executor must not report an executed trade")
	}
	if reader.balanceCalls != 0 {
		t.Errorf("read-only executor touched the chain: %d balance calls", reader.balanceCalls)
	}
	if len(submitter.calls) != 0 {
		t.Errorf("read-only executor submitted transactions: %v", submitter.calls)
	}
}

func TestExecuteZeroBalanceShortCircuits(t *testing.T) {
	reader := &fakeReader{balances: map[common.Address]*big.Int{}}
	submitter := &fakeSubmitter{}
	exec := newTestExecutor(reader, submitter, true)

	result := exec.Execute(context.Background())

	if result.Executed {
		t.Error("zero balance must not execute a trade")
	}
	if reader.balanceCalls != 1 {
		t.Errorf("expected exactly one balance query, got %d", reader.balanceCalls)
	}
	if len(submitter.calls) != 0 {
		t.Errorf("zero balance must not submit transactions, got %v", submitter.calls)
	}
}

func TestExecuteBalanceErrorShortCircuits(t *testing.T) {
	reader := &fakeReader{balanceErr: errors.New("rpc down")}
	submitter := &fakeSubmitter{}
	exec := newTestExecutor(reader, submitter, true)

	result := exec.Execute(context.Background())

	if result.Executed {
		t.Error("balance read failure must not execute a trade")
	}
	if len(submitter.calls) != 0 {
		t.Errorf("must not submit after a failed read, got %v", submitter.calls)
	}
}

func TestExecuteFullPassOrdering(t *testing.T) {
	reader := &fakeReader{
		balances: map[common.Address]*big.Int{
			testWallet:   big.NewInt(100_000_000),
			testContract: big.NewInt(0),
		},
		allowance: big.NewInt(0),
		decimals:  6,
	}
	submitter := &fakeSubmitter{}
	exec := newTestExecutor(reader, submitter, true)

	result := exec.Execute(context.Background())

	if !result.Executed {
		t.Fatal("expected trade to execute")
	}
	if result.TxHash != "0xswap" {
		t.Errorf("TxHash = %q, want %q", result.TxHash, "0xswap")
	}
	if result.Amount.Int64() != 10_000 {
		t.Errorf("Amount = %v, want 10000", result.Amount)
	}

	want := []string{"transfer", "approve", "swap"}
	if len(submitter.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", submitter.calls, want)
	}
	for i, call := range want {
		if submitter.calls[i] != call {
			t.Errorf("call %d = %q, want %q", i, submitter.calls[i], call)
		}
	}

	if submitter.transferred.Int64() != 10_000 {
		t.Errorf("transferred %v minor units, want full shortfall 10000", submitter.transferred)
	}

	intent := submitter.swapIntent
	if intent.TokenIn != testTokenIn || intent.TokenOut != testTokenOut {
		t.Errorf("swap pair = %s -> %s", intent.TokenIn.Hex(), intent.TokenOut.Hex())
	}
	if intent.Recipient != testContract {
		t.Errorf("swap recipient = %s, want agent contract", intent.Recipient.Hex())
	}
	if intent.Fee != 500 {
		t.Errorf("fee = %d, want 500", intent.Fee)
	}
	if intent.MinOut.Int64() != 9_700 {
		t.Errorf("MinOut = %v, want 9700 (3%% slippage)", intent.MinOut)
	}
}

func TestExecuteSkipsRedundantSteps(t *testing.T) {
	// Contract already funded and router already approved: only the swap
	// itself should be submitted.
	reader := &fakeReader{
		balances: map[common.Address]*big.Int{
			testWallet:   big.NewInt(100_000_000),
			testContract: big.NewInt(50_000),
		},
		allowance: big.NewInt(1_000_000),
		decimals:  6,
	}
	submitter := &fakeSubmitter{}
	exec := newTestExecutor(reader, submitter, true)

	result := exec.Execute(context.Background())

	if !result.Executed {
		t.Fatal("expected trade to execute")
	}
	if len(submitter.calls) != 1 || submitter.calls[0] != "swap" {
		t.Errorf("calls = %v, want only the swap", submitter.calls)
	}
}

func TestExecutePartialFunding(t *testing.T) {
	reader := &fakeReader{
		balances: map[common.Address]*big.Int{
			testWallet:   big.NewInt(100_000_000),
			testContract: big.NewInt(4_000),
		},
		allowance: big.NewInt(1_000_000),
	}
	submitter := &fakeSubmitter{}
	exec := newTestExecutor(reader, submitter, true)

	if result := exec.Execute(context.Background()); !result.Executed {
		t.Fatal("expected trade to execute")
	}
	if submitter.transferred.Int64() != 6_000 {
		t.Errorf("transferred %v, want shortfall 6000", submitter.transferred)
	}
}

func TestExecuteSwapFailureYieldsNotExecuted(t *testing.T) {
	reader := &fakeReader{
		balances: map[common.Address]*big.Int{
			testWallet:   big.NewInt(100_000_000),
			testContract: big.NewInt(50_000),
		},
		allowance: big.NewInt(1_000_000),
	}
	submitter := &fakeSubmitter{swapErr: errors.New("reverted")}
	exec := newTestExecutor(reader, submitter, true)

	result := exec.Execute(context.Background())

	if result.Executed {
		t.Error("failed swap must not report executed")
	}
	if result.TxHash != "" {
		t.Errorf("failed swap must leave TxHash empty, got %q", result.TxHash)
	}
}

func TestExecuteApproveFailureStopsBeforeSwap(t *testing.T) {
	reader := &fakeReader{
		balances: map[common.Address]*big.Int{
			testWallet:   big.NewInt(100_000_000),
			testContract: big.NewInt(50_000),
		},
		allowance: big.NewInt(0),
	}
	submitter := &fakeSubmitter{approveErr: errors.New("reverted")}
	exec := newTestExecutor(reader, submitter, true)

	result := exec.Execute(context.Background())

	if result.Executed {
		t.Error("failed approval must not report executed")
	}
	for _, call := range submitter.calls {
		if call == "swap" {
			t.Error("swap must not run after a failed approval")
		}
	}
}

func TestExecuteDecimalsFailureIsTolerated(t *testing.T) {
	reader := &fakeReader{
		balances: map[common.Address]*big.Int{
			testWallet:   big.NewInt(100_000_000),
			testContract: big.NewInt(50_000),
		},
		allowance:   big.NewInt(1_000_000),
		decimalsErr: errors.New("bad token"),
	}
	submitter := &fakeSubmitter{}
	exec := newTestExecutor(reader, submitter, true)

	if result := exec.Execute(context.Background()); !result.Executed {
		t.Error("a failed decimals read is cosmetic and must not block the trade")
	}
}

package domain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PriceSource retrieves the current reference price. Implementations must
// never fail: when the upstream API is unavailable they return a synthetic
// fallback sample instead.
type PriceSource interface {
	GetPrice(ctx context.Context) PriceSample
}

// DecisionEngine asks the language model for a recommendation given the
// current price and returns the raw completion text. A remote failure is a
// cycle-level error; the orchestrator catches it, nothing retries it.
type DecisionEngine interface {
	Decide(ctx context.Context, price float64) (string, error)
}

// BalanceReader covers the read-only chain queries the executor needs.
type BalanceReader interface {
	// TokenBalance returns the ERC-20 balance of holder, in minor units.
	TokenBalance(ctx context.Context, token, holder common.Address) (*big.Int, error)

	// TokenDecimals returns the token's declared decimal precision.
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)

	// RouterAllowance returns how much the swap router may currently spend
	// from owner's balance of token.
	RouterAllowance(ctx context.Context, token, owner common.Address) (*big.Int, error)
}

// TransactionSubmitter covers the state-changing calls the executor needs.
// Each call blocks until the transaction is mined and returns its hash.
// Approvals and swaps are routed through the agent contract's generic
// execute(target, data) passthrough, signed by the wallet that owns it;
// that invariant belongs to the implementation, callers only state intent.
type TransactionSubmitter interface {
	// TransferToken moves amount of token from the wallet to recipient.
	TransferToken(ctx context.Context, token, recipient common.Address, amount *big.Int) (string, error)

	// ApproveRouterMax grants the swap router an unlimited allowance over
	// the agent contract's balance of token, via the proxy passthrough.
	ApproveRouterMax(ctx context.Context, token common.Address) (string, error)

	// SubmitSwap submits a single-pool exact-input swap to the router via
	// the proxy passthrough.
	SubmitSwap(ctx context.Context, intent SwapIntent) (string, error)
}

// Quoter estimates the minimum acceptable output for a swap of amountIn.
// The default implementation is a conservative flat-slippage estimate; a
// live quote service can replace it without touching the executor.
type Quoter interface {
	MinimumOut(ctx context.Context, amountIn *big.Int) (*big.Int, error)
}

// MetricsSink receives the outcome of each cycle. Implementations are
// fire-and-forget: they log failures and never surface them.
type MetricsSink interface {
	Report(ctx context.Context, report CycleReport)
}

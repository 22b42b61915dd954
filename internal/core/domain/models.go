package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// PriceSourceKind labels where a price sample came from.
type PriceSourceKind string

const (
	PriceSourceLive     PriceSourceKind = "live"
	PriceSourceFallback PriceSourceKind = "fallback"
)

// PriceSample is one observation from the price source. Price unavailability
// never aborts a cycle, so a sample always carries a usable value; Source
// records whether it is live or synthetic.
type PriceSample struct {
	Price  float64
	Source PriceSourceKind
}

// FilterOutcome labels what the trade filter decided about a BUY signal.
// It is used purely for metrics labeling.
type FilterOutcome string

const (
	FilterExecuted      FilterOutcome = "executed"
	FilterFilteredOut   FilterOutcome = "filtered"
	FilterNotApplicable FilterOutcome = "not-applicable"
)

// SwapIntent describes one swap attempt. It is computed fresh per trade
// attempt and never reused across cycles. Recipient is always the agent
// contract, so swap proceeds stay under the contract's custody.
type SwapIntent struct {
	TokenIn   common.Address
	TokenOut  common.Address
	Fee       int64 // pool fee tier in basis points
	Recipient common.Address
	AmountIn  *big.Int
	MinOut    *big.Int
}

// TradeResult is the outcome of one trade attempt. Executed is false for
// every short-circuited precondition as well as for on-chain failures;
// TxHash is empty whenever Executed is false.
type TradeResult struct {
	Executed bool
	TxHash   string
	Amount   *big.Int
}

// AmountTraded returns the traded amount in minor units, or 0 when no trade
// happened.
func (r TradeResult) AmountTraded() *big.Int {
	if r.Amount == nil {
		return big.NewInt(0)
	}
	return r.Amount
}

// CycleReport is what gets posted to the metrics collector after a cycle.
type CycleReport struct {
	Decision    string   `json:"decision"`
	Price       float64  `json:"price"`
	Executed    bool     `json:"trade_executed"`
	TxHash      string   `json:"trade_tx_hash"`
	Amount      *big.Int `json:"trade_amount"`
	PriceSource PriceSourceKind
}

// AmountTraded returns the reported trade amount, or 0 when none was set.
func (r CycleReport) AmountTraded() *big.Int {
	if r.Amount == nil {
		return big.NewInt(0)
	}
	return r.Amount
}

// CycleSnapshot is the in-memory record of the most recent cycle, kept for
// the health endpoint and the best-effort cycle cache.
type CycleSnapshot struct {
	Sequence    uint64          `json:"sequence"`
	Price       float64         `json:"price"`
	PriceSource PriceSourceKind `json:"price_source"`
	Decision    string          `json:"decision"`
	Kind        DecisionKind    `json:"decision_kind"`
	Outcome     FilterOutcome   `json:"filter_outcome"`
	Executed    bool            `json:"trade_executed"`
	TxHash      string          `json:"trade_tx_hash,omitempty"`
	Amount      string          `json:"trade_amount,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}

package service

import (
	"context"
	"fmt"
	"math/big"
)

// ConservativeQuoter estimates the minimum acceptable swap output as a flat
// fraction of the input: amountIn x (100 - slippagePct) / 100, computed in
// minor units with integer arithmetic. No live quote is obtained; this is a
// deliberately pessimistic placeholder that a real quote service can
// replace behind domain.Quoter without touching the executor.
type ConservativeQuoter struct {
	slippagePct int64
}

// NewConservativeQuoter creates a quoter with the given slippage tolerance
// percentage. The percentage must be in [0, 100).
func NewConservativeQuoter(slippagePct int64) (*ConservativeQuoter, error) {
	if slippagePct < 0 || slippagePct >= 100 {
		return nil, fmt.Errorf("slippage percentage must be in [0, 100), got %d", slippagePct)
	}
	return &ConservativeQuoter{slippagePct: slippagePct}, nil
}

// MinimumOut returns amountIn reduced by the slippage tolerance.
func (q *ConservativeQuoter) MinimumOut(_ context.Context, amountIn *big.Int) (*big.Int, error) {
	out := new(big.Int).Mul(amountIn, big.NewInt(100-q.slippagePct))
	return out.Div(out, big.NewInt(100)), nil
}

package service

import (
	"context"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/proximalabs/tradepulse/internal/core/domain"
)

const (
	// MinTradeUnits floors the per-cycle trade size, in minor units of the
	// input token.
	MinTradeUnits = 100

	// tradeDivisor bounds risk per cycle: each trade moves at most 1/10000
	// (0.01%) of the wallet's current input-token balance.
	tradeDivisor = 10000
)

// ExecutorConfig identifies the tokens and contracts one executor trades.
type ExecutorConfig struct {
	TokenIn       common.Address
	TokenOut      common.Address
	AgentContract common.Address
	PoolFee       int64
}

// TradeExecutor realizes a passed BUY signal as an on-chain swap routed
// through the agent contract. It never returns an error: every failed
// precondition or on-chain failure is logged with its reason and yields a
// not-executed result, so a bad trade can never take the loop down.
type TradeExecutor struct {
	reader    domain.BalanceReader
	submitter domain.TransactionSubmitter
	quoter    domain.Quoter
	cfg       ExecutorConfig

	wallet  common.Address
	canSign bool
}

// NewTradeExecutor wires an executor. canSign=false puts it in read-only
// mode: Execute becomes a benign no-op that touches no network.
func NewTradeExecutor(reader domain.BalanceReader, submitter domain.TransactionSubmitter, quoter domain.Quoter, wallet common.Address, canSign bool, cfg ExecutorConfig) *TradeExecutor {
	return &TradeExecutor{
		reader:    reader,
		submitter: submitter,
		quoter:    quoter,
		cfg:       cfg,
		wallet:    wallet,
		canSign:   canSign,
	}
}

// TradeAmount computes how much to trade given the wallet's input-token
// balance: 1/10000 of the balance, floored at MinTradeUnits minor units.
func TradeAmount(balance *big.Int) *big.Int {
	amount := new(big.Int).Div(balance, big.NewInt(tradeDivisor))
	if amount.Cmp(big.NewInt(MinTradeUnits)) < 0 {
		return big.NewInt(MinTradeUnits)
	}
	return amount
}

// Execute runs the full trade sequence: fund the agent contract, ensure the
// router allowance, submit the swap. Steps short-circuit in order; the
// first failure ends the attempt.
func (e *TradeExecutor) Execute(ctx context.Context) domain.TradeResult {
	if !e.canSign {
		log.Printf("[executor] no signing credential configured, skipping trade (read-only mode)")
		return domain.TradeResult{}
	}

	balance, err := e.reader.TokenBalance(ctx, e.cfg.TokenIn, e.wallet)
	if err != nil {
		log.Printf("[executor] failed to read wallet balance: %v", err)
		return domain.TradeResult{}
	}
	if balance.Sign() == 0 {
		log.Printf("[executor] wallet holds no input token, nothing to trade")
		return domain.TradeResult{}
	}

	amountIn := TradeAmount(balance)
	e.logAmount(ctx, amountIn)

	minOut, err := e.quoter.MinimumOut(ctx, amountIn)
	if err != nil {
		log.Printf("[executor] failed to quote minimum output: %v", err)
		return domain.TradeResult{}
	}

	if err := e.fundAgentContract(ctx, amountIn); err != nil {
		log.Printf("[executor] failed to fund agent contract: %v", err)
		return domain.TradeResult{}
	}

	if err := e.ensureAllowance(ctx, amountIn); err != nil {
		log.Printf("[executor] failed to ensure router allowance: %v", err)
		return domain.TradeResult{}
	}

	intent := domain.SwapIntent{
		TokenIn:   e.cfg.TokenIn,
		TokenOut:  e.cfg.TokenOut,
		Fee:       e.cfg.PoolFee,
		Recipient: e.cfg.AgentContract,
		AmountIn:  amountIn,
		MinOut:    minOut,
	}

	txHash, err := e.submitter.SubmitSwap(ctx, intent)
	if err != nil {
		log.Printf("[executor] swap failed: %v", err)
		return domain.TradeResult{}
	}

	log.Printf("[executor] swap confirmed: %s (amountIn=%s minOut=%s)", txHash, amountIn, minOut)
	return domain.TradeResult{Executed: true, TxHash: txHash, Amount: amountIn}
}

// fundAgentContract tops the agent contract's input-token balance up to
// amountIn, transferring the shortfall from the wallet when needed.
func (e *TradeExecutor) fundAgentContract(ctx context.Context, amountIn *big.Int) error {
	contractBalance, err := e.reader.TokenBalance(ctx, e.cfg.TokenIn, e.cfg.AgentContract)
	if err != nil {
		return err
	}

	if contractBalance.Cmp(amountIn) >= 0 {
		return nil
	}

	shortfall := new(big.Int).Sub(amountIn, contractBalance)
	txHash, err := e.submitter.TransferToken(ctx, e.cfg.TokenIn, e.cfg.AgentContract, shortfall)
	if err != nil {
		return err
	}

	log.Printf("[executor] funded agent contract with %s minor units: %s", shortfall, txHash)
	return nil
}

// ensureAllowance grants the router an unlimited allowance from the agent
// contract when the current one cannot cover amountIn.
func (e *TradeExecutor) ensureAllowance(ctx context.Context, amountIn *big.Int) error {
	allowance, err := e.reader.RouterAllowance(ctx, e.cfg.TokenIn, e.cfg.AgentContract)
	if err != nil {
		return err
	}

	if allowance.Cmp(amountIn) >= 0 {
		return nil
	}

	txHash, err := e.submitter.ApproveRouterMax(ctx, e.cfg.TokenIn)
	if err != nil {
		return err
	}

	log.Printf("[executor] approved router spend: %s", txHash)
	return nil
}

// logAmount logs the trade size, scaled to the token's declared precision
// when the decimals read succeeds.
func (e *TradeExecutor) logAmount(ctx context.Context, amountIn *big.Int) {
	decimals, err := e.reader.TokenDecimals(ctx, e.cfg.TokenIn)
	if err != nil {
		log.Printf("[executor] trading %s minor units of input token", amountIn)
		return
	}

	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	human := new(big.Float).Quo(new(big.Float).SetInt(amountIn), scale)
	log.Printf("[executor] trading %s tokens (%s minor units)", human.Text('f', int(decimals)), amountIn)
}

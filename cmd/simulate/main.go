package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/proximalabs/tradepulse/internal/adapters/llm"
	"github.com/proximalabs/tradepulse/internal/adapters/metrics"
	"github.com/proximalabs/tradepulse/internal/adapters/price"
	"github.com/proximalabs/tradepulse/internal/cache"
	"github.com/proximalabs/tradepulse/internal/config"
	"github.com/proximalabs/tradepulse/internal/core/service"
)

// Runs exactly one cycle in dry-run mode (no signing, no metrics) and
// prints the outcome. Useful for checking the prompt, the filter policy and
// the price source without touching the chain.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	priceSource := price.NewCoinGeckoService(cfg.PriceAPIURL, cfg.PriceAssetID, cfg.PriceCurrency)
	engine := llm.NewOpenAIEngine(cfg.OpenAIKey, cfg.OpenAIModel, cfg.StrategyPrompt)
	filter := service.NewTradeFilter(cfg.BuyThreshold, cfg.SampleRate, nil)

	quoter, err := service.NewConservativeQuoter(cfg.SlippagePct)
	if err != nil {
		log.Fatalf("invalid slippage configuration: %v", err)
	}

	// Read-only executor: a BUY that passes the filter is reported but
	// never signed.
	executor := service.NewTradeExecutor(nil, nil, quoter, common.Address{}, false, service.ExecutorConfig{
		TokenIn:       common.HexToAddress(cfg.TokenIn),
		TokenOut:      common.HexToAddress(cfg.TokenOut),
		AgentContract: common.HexToAddress(cfg.AgentContract),
		PoolFee:       cfg.PoolFee,
	})

	orch := service.NewOrchestrator(
		priceSource,
		engine,
		filter,
		executor,
		metrics.NewReporter("", "", "", ""), // no-op sink
		&cache.NoOpCache{},
		cfg.CycleInterval,
	)

	log.Printf("simulating one cycle (dry run)...")
	snapshot, err := orch.RunCycle(context.Background())
	if err != nil {
		log.Fatalf("cycle failed: %v", err)
	}

	output, _ := json.MarshalIndent(snapshot, "", "  ")
	fmt.Println(string(output))
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/proximalabs/tradepulse/internal/adapters/chain"
	"github.com/proximalabs/tradepulse/internal/adapters/llm"
	"github.com/proximalabs/tradepulse/internal/adapters/metrics"
	"github.com/proximalabs/tradepulse/internal/adapters/price"
	"github.com/proximalabs/tradepulse/internal/cache"
	"github.com/proximalabs/tradepulse/internal/config"
	"github.com/proximalabs/tradepulse/internal/core/service"
	"github.com/proximalabs/tradepulse/internal/health"
	"github.com/proximalabs/tradepulse/pkg/version"
)

const agentName = "tradepulse"

func main() {
	_ = godotenv.Load() // Load .env if present

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cycleCache := buildCycleCache(cfg)
	defer cycleCache.Close()

	if previous, err := cycleCache.LatestSnapshot(ctx); err == nil && previous != nil {
		log.Printf("last recorded cycle: #%d at %s (decision %q)", previous.Sequence, previous.CompletedAt.Format(time.RFC3339), previous.Decision)
	}

	orch, err := buildOrchestrator(cfg, cycleCache)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	if cfg.HealthPort > 0 {
		healthSrv := health.NewServer(cfg.HealthPort, agentName, cfg.ReadOnly(), orch)
		go func() {
			if err := healthSrv.Start(); err != nil {
				log.Printf("health server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = healthSrv.Stop(shutdownCtx)
		}()
	}

	log.Printf("starting %s v%s (read-only=%v, interval=%s)", agentName, version.GetVersionString(), cfg.ReadOnly(), cfg.CycleInterval)
	orch.Run(ctx)
}

// buildOrchestrator wires the whole cycle pipeline from configuration.
func buildOrchestrator(cfg *config.Config, cycleCache cache.CycleCache) (*service.Orchestrator, error) {
	priceSource := price.NewCoinGeckoService(cfg.PriceAPIURL, cfg.PriceAssetID, cfg.PriceCurrency)
	engine := llm.NewOpenAIEngine(cfg.OpenAIKey, cfg.OpenAIModel, cfg.StrategyPrompt)
	filter := service.NewTradeFilter(cfg.BuyThreshold, cfg.SampleRate, nil)

	quoter, err := service.NewConservativeQuoter(cfg.SlippagePct)
	if err != nil {
		return nil, err
	}

	executor, err := buildExecutor(cfg, quoter)
	if err != nil {
		return nil, err
	}

	reporter := metrics.NewReporter(cfg.MetricsURL, cfg.MetricsSecret, cfg.RepoURL, cfg.BranchName)

	return service.NewOrchestrator(priceSource, engine, filter, executor, reporter, cycleCache, cfg.CycleInterval), nil
}

// buildExecutor connects the chain client when an RPC endpoint is
// configured; without one the executor runs in read-only mode and trades
// are benign no-ops.
func buildExecutor(cfg *config.Config, quoter *service.ConservativeQuoter) (*service.TradeExecutor, error) {
	execCfg := service.ExecutorConfig{
		TokenIn:       common.HexToAddress(cfg.TokenIn),
		TokenOut:      common.HexToAddress(cfg.TokenOut),
		AgentContract: common.HexToAddress(cfg.AgentContract),
		PoolFee:       cfg.PoolFee,
	}

	if cfg.RPCEndpoint == "" {
		log.Printf("no RPC_ENDPOINT configured, trade execution disabled")
		return service.NewTradeExecutor(nil, nil, quoter, common.Address{}, false, execCfg), nil
	}

	client, err := chain.NewClient(cfg.RPCEndpoint, cfg.PrivateKey, cfg.AgentContract, cfg.Router)
	if err != nil {
		return nil, err
	}

	if client.CanSign() {
		log.Printf("wallet: %s, agent contract: %s", client.WalletAddress().Hex(), client.AgentContractAddress().Hex())
	} else {
		log.Printf("no PRIVATE_KEY configured, running read-only")
	}

	return service.NewTradeExecutor(client, client, quoter, client.WalletAddress(), client.CanSign(), execCfg), nil
}

// buildCycleCache returns the Redis cache when enabled and reachable, the
// file-backed cache when a snapshot path is set, a no-op cache otherwise.
// The cache is optional, so an init failure is a warning, not a startup
// error.
func buildCycleCache(cfg *config.Config) cache.CycleCache {
	if !cfg.RedisEnabled {
		if cfg.SnapshotFile != "" {
			fileCache, err := cache.NewFileCache(cfg.SnapshotFile)
			if err != nil {
				log.Printf("failed to initialize snapshot file cache: %v (continuing without cache)", err)
				return &cache.NoOpCache{}
			}
			log.Printf("snapshot file cache enabled at %s", cfg.SnapshotFile)
			return fileCache
		}
		return &cache.NoOpCache{}
	}

	keyPrefix := cfg.RedisKeyPrefix
	if keyPrefix == "" {
		keyPrefix = agentName + ":"
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Address:   cfg.RedisAddress,
		Username:  cfg.RedisUsername,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: keyPrefix,
		UseTLS:    cfg.RedisUseTLS,
	})
	if err != nil {
		log.Printf("failed to initialize redis cache: %v (continuing without cache)", err)
		return &cache.NoOpCache{}
	}

	log.Printf("redis cycle cache enabled with prefix %q", keyPrefix)
	return redisCache
}

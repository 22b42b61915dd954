package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default token plumbing: WETH in, USDC out, routed through the Uniswap v3
// SwapRouter on the 5 bps pool.
const (
	DefaultTokenIn  = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	DefaultTokenOut = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	DefaultRouter   = "0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"
)

// Config holds everything the agent reads from the environment. It is built
// once at process start and passed by reference; components never look up
// env vars themselves.
type Config struct {
	// Decision engine
	OpenAIKey      string
	OpenAIModel    string
	StrategyPrompt string

	// Chain
	RPCEndpoint   string
	PrivateKey    string // empty means read-only mode, trades become no-ops
	AgentContract string // proxy contract that custodies funds and routes calls
	TokenIn       string
	TokenOut      string
	Router        string
	PoolFee       int64 // basis points of the target pool
	SlippagePct   int64

	// Filter policy
	BuyThreshold float64
	SampleRate   float64

	// Loop
	CycleInterval time.Duration

	// Price source
	PriceAPIURL   string
	PriceAssetID  string
	PriceCurrency string

	// Metrics
	MetricsURL    string
	MetricsSecret string
	RepoURL       string
	BranchName    string

	// Cycle cache (optional). Redis wins when both are configured.
	SnapshotFile   string
	RedisEnabled   bool
	RedisAddress   string
	RedisUsername  string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
	RedisUseTLS    bool

	// Health server (off when zero)
	HealthPort int
}

// Load reads configuration from the environment. OPENAI_API_KEY and
// AGENT_CONTRACT_ADDRESS are required; everything else has a default or is
// optional.
func Load() (*Config, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	agentContract := os.Getenv("AGENT_CONTRACT_ADDRESS")
	if agentContract == "" {
		return nil, fmt.Errorf("AGENT_CONTRACT_ADDRESS environment variable is required")
	}

	cfg := &Config{
		OpenAIKey:      apiKey,
		OpenAIModel:    getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		StrategyPrompt: getenvDefault("STRATEGY_PROMPT", "You are a cautious crypto trading strategist. Answer with BUY or HOLD only."),

		RPCEndpoint:   os.Getenv("RPC_ENDPOINT"),
		PrivateKey:    os.Getenv("PRIVATE_KEY"),
		AgentContract: agentContract,
		TokenIn:       getenvDefault("TOKEN_IN_ADDRESS", DefaultTokenIn),
		TokenOut:      getenvDefault("TOKEN_OUT_ADDRESS", DefaultTokenOut),
		Router:        getenvDefault("ROUTER_ADDRESS", DefaultRouter),
		PoolFee:       getenvInt64("POOL_FEE", 500),
		SlippagePct:   getenvInt64("SLIPPAGE_PERCENT", 3),

		BuyThreshold: getenvFloat("BUY_THRESHOLD", 0.38),
		SampleRate:   getenvFloat("SAMPLE_RATE", 0.30),

		CycleInterval: time.Duration(getenvInt64("CYCLE_INTERVAL_SECONDS", 30)) * time.Second,

		PriceAPIURL:   getenvDefault("PRICE_API_URL", "https://api.coingecko.com/api/v3/simple/price"),
		PriceAssetID:  getenvDefault("PRICE_ASSET_ID", "ethereum"),
		PriceCurrency: getenvDefault("PRICE_CURRENCY", "usd"),

		MetricsURL:    os.Getenv("METRICS_URL"),
		MetricsSecret: os.Getenv("METRICS_SECRET"),
		RepoURL:       os.Getenv("REPO_URL"),
		BranchName:    getenvDefault("BRANCH_NAME", "main"),

		SnapshotFile:   os.Getenv("SNAPSHOT_FILE"),
		RedisEnabled:   getenvBool("REDIS_ENABLED"),
		RedisAddress:   getenvDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisUsername:  os.Getenv("REDIS_USERNAME"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        int(getenvInt64("REDIS_DB", 0)),
		RedisKeyPrefix: os.Getenv("REDIS_KEY_PREFIX"),
		RedisUseTLS:    getenvBool("REDIS_TLS"),

		HealthPort: int(getenvInt64("HEALTH_PORT", 0)),
	}

	if cfg.SlippagePct < 0 || cfg.SlippagePct >= 100 {
		return nil, fmt.Errorf("SLIPPAGE_PERCENT must be in [0, 100), got %d", cfg.SlippagePct)
	}
	if cfg.CycleInterval <= 0 {
		return nil, fmt.Errorf("CYCLE_INTERVAL_SECONDS must be positive")
	}

	return cfg, nil
}

// ReadOnly reports whether the agent runs without a signing credential.
// This is a normal mode, not an error: the loop still decides and reports,
// it just never trades.
func (c *Config) ReadOnly() bool {
	return c.PrivateKey == ""
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(key string) bool {
	v := os.Getenv(key)
	return v == "true" || v == "1" || v == "yes"
}

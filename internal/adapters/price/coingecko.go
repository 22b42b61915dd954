package price

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/proximalabs/tradepulse/internal/core/domain"
)

const (
	fetchTimeout = 5 * time.Second

	// Synthetic fallback: base 2000 with up to +/-50 of jitter. Price
	// unavailability must never abort a cycle.
	fallbackBase   = 2000.0
	fallbackSpread = 50.0
)

// CoinGeckoService fetches the reference price from a CoinGecko-compatible
// simple-price endpoint. It implements domain.PriceSource.
type CoinGeckoService struct {
	baseURL  string
	assetID  string
	currency string
	client   *http.Client
}

// NewCoinGeckoService creates a price source for one asset/currency pair.
func NewCoinGeckoService(baseURL, assetID, currency string) *CoinGeckoService {
	return &CoinGeckoService{
		baseURL:  baseURL,
		assetID:  assetID,
		currency: currency,
		client:   &http.Client{Timeout: fetchTimeout},
	}
}

// GetPrice returns the current price, falling back to a synthetic value on
// any upstream failure. It logs which source produced the sample.
func (s *CoinGeckoService) GetPrice(ctx context.Context) domain.PriceSample {
	p, err := s.fetch(ctx)
	if err != nil {
		fallback := fallbackBase + (rand.Float64()*2-1)*fallbackSpread
		log.Printf("[price] live fetch failed (%v), using fallback %.2f", err, fallback)
		return domain.PriceSample{Price: fallback, Source: domain.PriceSourceFallback}
	}

	log.Printf("[price] live %s/%s price: %.4f", s.assetID, s.currency, p)
	return domain.PriceSample{Price: p, Source: domain.PriceSourceLive}
}

func (s *CoinGeckoService) fetch(ctx context.Context) (float64, error) {
	endpoint := fmt.Sprintf("%s?ids=%s&vs_currencies=%s",
		s.baseURL, url.QueryEscape(s.assetID), url.QueryEscape(s.currency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price api returned status: %d", resp.StatusCode)
	}

	// Response shape: {"ethereum": {"usd": 2012.34}}
	var result map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, err
	}

	quote, ok := result[s.assetID]
	if !ok {
		return 0, fmt.Errorf("price api response missing asset %q", s.assetID)
	}
	p, ok := quote[s.currency]
	if !ok {
		return 0, fmt.Errorf("price api response missing currency %q", s.currency)
	}
	if p <= 0 {
		return 0, fmt.Errorf("price api returned non-positive price %f", p)
	}

	return p, nil
}

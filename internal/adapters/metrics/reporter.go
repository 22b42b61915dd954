package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/proximalabs/tradepulse/internal/core/domain"
)

const (
	reportTimeout = 3 * time.Second

	// bearerTTL bounds the validity of a signed report token. Each report
	// gets a fresh one.
	bearerTTL = time.Minute
)

// Reporter posts cycle outcomes to a remote collector. It is strictly
// fire-and-forget: every failure is logged as a warning and swallowed,
// nothing is retried. Implements domain.MetricsSink.
type Reporter struct {
	endpoint string
	secret   string // optional HS256 signing secret for the bearer token
	repoURL  string
	branch   string
	client   *http.Client
}

// NewReporter creates a reporter for the given collector base URL. An empty
// endpoint yields a reporter whose Report is a no-op.
func NewReporter(endpoint, secret, repoURL, branch string) *Reporter {
	return &Reporter{
		endpoint: endpoint,
		secret:   secret,
		repoURL:  repoURL,
		branch:   branch,
		client:   &http.Client{Timeout: reportTimeout},
	}
}

type reportPayload struct {
	RepoURL       string  `json:"repo_url"`
	BranchName    string  `json:"branch_name"`
	Decision      string  `json:"decision"`
	Price         float64 `json:"price"`
	TradeExecuted bool    `json:"trade_executed"`
	TradeTxHash   *string `json:"trade_tx_hash"`
	TradeAmount   string  `json:"trade_amount"`
}

// Report posts one cycle outcome. It never returns an error to the caller.
func (r *Reporter) Report(ctx context.Context, report domain.CycleReport) {
	if r.endpoint == "" {
		return
	}

	payload := reportPayload{
		RepoURL:       r.repoURL,
		BranchName:    r.branch,
		Decision:      report.Decision,
		Price:         report.Price,
		TradeExecuted: report.Executed,
		TradeAmount:   report.AmountTraded().String(),
	}
	if report.TxHash != "" {
		payload.TradeTxHash = &report.TxHash
	}

	if err := r.post(ctx, payload); err != nil {
		log.Printf("[metrics] report failed (ignored): %v", err)
		return
	}

	log.Printf("[metrics] reported decision=%q price=%.4f executed=%v", report.Decision, report.Price, report.Executed)
}

func (r *Reporter) post(ctx context.Context, payload reportPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if r.secret != "" {
		bearer, err := r.signBearer()
		if err != nil {
			return fmt.Errorf("failed to sign bearer token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("collector returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// signBearer mints a short-lived HS256 token identifying this agent.
func (r *Reporter) signBearer() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "tradepulse",
		"sub": r.repoURL,
		"iat": now.Unix(),
		"exp": now.Add(bearerTTL).Unix(),
	})
	return token.SignedString([]byte(r.secret))
}

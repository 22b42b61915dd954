package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/proximalabs/tradepulse/internal/core/service"
	"github.com/proximalabs/tradepulse/pkg/version"
)

// StatusSource provides the loop counters the endpoint reports.
type StatusSource interface {
	Status() service.LoopStatus
}

// Server exposes a read-only /health endpoint with the agent's identity and
// loop progress. It is optional and off unless a port is configured.
type Server struct {
	port      int
	agentName string
	readOnly  bool
	source    StatusSource
	startedAt time.Time
	httpSrv   *http.Server
}

// NewServer creates a health server on the given port.
func NewServer(port int, agentName string, readOnly bool, source StatusSource) *Server {
	return &Server{
		port:      port,
		agentName: agentName,
		readOnly:  readOnly,
		source:    source,
	}
}

type healthResponse struct {
	Status         string    `json:"status"`
	Agent          string    `json:"agent"`
	Version        string    `json:"version"`
	ReadOnly       bool      `json:"read_only"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	CyclesRun      uint64    `json:"cycles_run"`
	TradesExecuted uint64    `json:"trades_executed"`
	LastDecision   string    `json:"last_decision,omitempty"`
	LastPrice      float64   `json:"last_price,omitempty"`
	LastCycleAt    time.Time `json:"last_cycle_at,omitempty"`
}

// Start runs the server until Stop is called. Blocks.
func (s *Server) Start() error {
	s.startedAt = time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	log.Printf("[health] listening on :%d", s.port)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("health server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := s.source.Status()
	resp := healthResponse{
		Status:         "ok",
		Agent:          s.agentName,
		Version:        version.Version(),
		ReadOnly:       s.readOnly,
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		CyclesRun:      status.CyclesRun,
		TradesExecuted: status.TradesExecuted,
		LastDecision:   status.LastDecision,
		LastPrice:      status.LastPrice,
		LastCycleAt:    status.LastCycleAt,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[health] failed to write response: %v", err)
	}
}

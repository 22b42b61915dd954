package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/proximalabs/tradepulse/internal/core/service"
)

type stubSource struct {
	status service.LoopStatus
}

func (s *stubSource) Status() service.LoopStatus { return s.status }

func TestHandleHealth(t *testing.T) {
	source := &stubSource{status: service.LoopStatus{
		CyclesRun:      7,
		TradesExecuted: 2,
		LastDecision:   "HOLD",
		LastPrice:      2012.34,
		LastCycleAt:    time.Now().UTC(),
	}}
	srv := NewServer(0, "tradepulse", true, source)
	srv.startedAt = time.Now()

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Agent != "tradepulse" {
		t.Errorf("agent = %q", resp.Agent)
	}
	if resp.Version == "" {
		t.Error("version must be reported")
	}
	if !resp.ReadOnly {
		t.Error("read_only = false, want true")
	}
	if resp.CyclesRun != 7 || resp.TradesExecuted != 2 {
		t.Errorf("counters = %d/%d, want 7/2", resp.CyclesRun, resp.TradesExecuted)
	}
	if resp.LastDecision != "HOLD" {
		t.Errorf("last_decision = %q", resp.LastDecision)
	}
}

func TestHandleHealthRejectsNonGet(t *testing.T) {
	srv := NewServer(0, "tradepulse", false, &stubSource{})

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/proximalabs/tradepulse/internal/core/domain"
)

func TestFileCache_StoreAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "snapshot.json")

	c, err := NewFileCache(path)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	snapshot := domain.CycleSnapshot{
		Sequence:    3,
		Price:       0.35,
		PriceSource: domain.PriceSourceLive,
		Decision:    "BUY",
		Kind:        domain.DecisionBuy,
		Outcome:     domain.FilterExecuted,
		Executed:    true,
		TxHash:      "0xabc",
		Amount:      "10000",
		CompletedAt: time.Now().UTC(),
	}

	if err := c.StoreSnapshot(context.Background(), snapshot); err != nil {
		t.Fatalf("StoreSnapshot: %v", err)
	}

	loaded, err := c.LatestSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a stored snapshot")
	}
	if loaded.Sequence != 3 || loaded.Decision != "BUY" || loaded.TxHash != "0xabc" {
		t.Errorf("loaded snapshot mismatch: %+v", loaded)
	}
}

func TestFileCache_LoadNonexistent(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	snapshot, err := c.LatestSnapshot(context.Background())
	if err != nil {
		t.Errorf("expected nil error for a missing file, got %v", err)
	}
	if snapshot != nil {
		t.Error("expected nil snapshot for a missing file")
	}
}

func TestFileCache_OverwriteKeepsLatest(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "snapshot.json")

	c, err := NewFileCache(path)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	for seq := uint64(1); seq <= 3; seq++ {
		if err := c.StoreSnapshot(context.Background(), domain.CycleSnapshot{Sequence: seq}); err != nil {
			t.Fatalf("StoreSnapshot %d: %v", seq, err)
		}
	}

	loaded, err := c.LatestSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if loaded.Sequence != 3 {
		t.Errorf("Sequence = %d, want 3 (latest write wins)", loaded.Sequence)
	}

	// No temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not survive a successful store")
	}
}

func TestFileCache_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "snapshot.json")

	c, err := NewFileCache(path)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := c.StoreSnapshot(context.Background(), domain.CycleSnapshot{Sequence: 1}); err != nil {
		t.Fatalf("StoreSnapshot: %v", err)
	}
}

func TestFileCache_EmptyPathRejected(t *testing.T) {
	if _, err := NewFileCache(""); err == nil {
		t.Error("expected error for empty path")
	}
}

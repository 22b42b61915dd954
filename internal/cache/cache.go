package cache

import (
	"context"

	"github.com/proximalabs/tradepulse/internal/core/domain"
)

// CycleCache keeps a best-effort record of the loop's most recent cycle so
// operators (and restarts) can see what the agent last did. It promises no
// durability: a failed store is the caller's to log and ignore.
type CycleCache interface {
	// StoreSnapshot records the latest completed cycle.
	StoreSnapshot(ctx context.Context, snapshot domain.CycleSnapshot) error

	// LatestSnapshot returns the most recently stored cycle, or nil when
	// none exists.
	LatestSnapshot(ctx context.Context) (*domain.CycleSnapshot, error)

	// Close releases any underlying connection.
	Close() error
}

// NoOpCache is the CycleCache used when no backend is configured. Stores
// vanish, loads find nothing.
type NoOpCache struct{}

func (*NoOpCache) StoreSnapshot(context.Context, domain.CycleSnapshot) error { return nil }

func (*NoOpCache) LatestSnapshot(context.Context) (*domain.CycleSnapshot, error) { return nil, nil }

func (*NoOpCache) Close() error { return nil }

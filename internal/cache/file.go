package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/proximalabs/tradepulse/internal/core/domain"
)

// FileCache persists the latest cycle snapshot to a local JSON file, for
// operators who want restart visibility without running Redis. Writes go
// through a temp file and rename so a crash mid-write never corrupts the
// stored snapshot.
type FileCache struct {
	filePath string
	mu       sync.RWMutex
}

// NewFileCache creates a file-backed cache at the given path, creating the
// parent directory when needed.
func NewFileCache(filePath string) (*FileCache, error) {
	if filePath == "" {
		return nil, fmt.Errorf("snapshot file path is empty")
	}

	if dir := filepath.Dir(filePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	return &FileCache{filePath: filePath}, nil
}

func (c *FileCache) StoreSnapshot(_ context.Context, snapshot domain.CycleSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tempPath := c.filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp snapshot file: %w", err)
	}

	if err := os.Rename(tempPath, c.filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save snapshot file: %w", err)
	}

	return nil
}

func (c *FileCache) LatestSnapshot(context.Context) (*domain.CycleSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snapshot domain.CycleSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	return &snapshot, nil
}

func (c *FileCache) Close() error { return nil }

package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

// DefaultSnapshotPath is used when no path is configured.
const DefaultSnapshotPath = ".yieldkit-rates.json"

var _ domain.SnapshotStore = (*FileStore)(nil)

// FileStore persists the last aggregated snapshot to a JSON file.
type FileStore struct {
	filePath string
	mu       sync.RWMutex
}

// NewFileStore creates a store at filePath, creating its directory.
func NewFileStore(filePath string) (*FileStore, error) {
	if filePath == "" {
		filePath = DefaultSnapshotPath
	}

	dir := filepath.Dir(filePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	return &FileStore{filePath: filePath}, nil
}

// Load reads the snapshot. A missing file is (nil, nil).
func (s *FileStore) Load() (*domain.RateSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snapshot domain.RateSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	return &snapshot, nil
}

// Save writes the snapshot atomically.
func (s *FileStore) Save(snapshot *domain.RateSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.GeneratedAt.IsZero() {
		snapshot.GeneratedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tempPath := s.filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp snapshot file: %w", err)
	}

	if err := os.Rename(tempPath, s.filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save snapshot file: %w", err)
	}
	return nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.filePath
}

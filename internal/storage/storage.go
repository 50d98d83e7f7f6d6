package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/odpc-checker/internal/registry"
)

const snapshotFile = "register.json"

// Snapshot is the on-disk form of a register dataset
type Snapshot struct {
	SavedAt string            `json:"saved_at"` // RFC3339 timestamp
	Dataset *registry.Dataset `json:"dataset"`
}

// Store handles persistence of register snapshots
type Store struct {
	dataDir string
}

// New creates a Store rooted at dataDir, creating the directory if needed
func New(dataDir string) (*Store, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{
		dataDir: dataDir,
	}, nil
}

// Path returns the snapshot file path
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, snapshotFile)
}

// LoadDataset reads the saved dataset. A missing snapshot returns nil, nil.
func (s *Store) LoadDataset() (*registry.Dataset, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	return snapshot.Dataset, nil
}

// SaveDataset writes d as the current snapshot, replacing any previous one
func (s *Store) SaveDataset(d *registry.Dataset) error {
	snapshot := Snapshot{
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Dataset: d,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	// Readers only ever see a complete snapshot
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}

// Clear removes the saved snapshot if there is one
func (s *Store) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}

// Package state persists the incremental-sync bookkeeping document.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/akn101/assignmentsync/internal/models"
)

// Store reads and writes the sync state file. A missing or corrupt file is
// treated as "no prior state"; it is never fatal.
type Store struct {
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// NewStore builds a store for the given file path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger, now: time.Now}
}

// Load returns the persisted state, or the zero state when the file is
// absent or unreadable.
func (s *Store) Load() *models.SyncState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("state file unreadable; starting fresh", zap.String("path", s.path), zap.Error(err))
		}
		return models.NewSyncState()
	}

	st := models.NewSyncState()
	if err := json.Unmarshal(data, st); err != nil {
		s.logger.Warn("state file corrupt; starting fresh", zap.String("path", s.path), zap.Error(err))
		return models.NewSyncState()
	}
	if st.SeenIDs == nil {
		st.SeenIDs = map[string]bool{}
	}
	return st
}

// Commit records this run's processed ids and stamps lastRun. Full mode
// replaces the seen-set wholesale (ids missing from this run are
// forgotten); incremental mode unions new ids in and removes nothing.
func (s *Store) Commit(prior *models.SyncState, processedIDs []string, mode string) error {
	next := models.NewSyncState()
	if mode == models.ModeIncremental && prior != nil {
		for id := range prior.SeenIDs {
			next.SeenIDs[id] = true
		}
	}
	for _, id := range processedIDs {
		next.SeenIDs[id] = true
	}

	now := s.now().UTC()
	next.LastRun = &now

	return s.write(next)
}

// write persists atomically via a temp file and rename, so a crash
// mid-write cannot leave a half-written document behind.
func (s *Store) write(st *models.SyncState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prepare state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()          //nolint:errcheck
		os.Remove(tmpName)   //nolint:errcheck
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

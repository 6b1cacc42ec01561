package models

import "time"

// Sync run modes. Full mode replaces the seen-set with this run's output;
// incremental mode unions new ids in and never removes any.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
)

// SyncState is the persisted incremental-sync bookkeeping document.
type SyncState struct {
	LastRun *time.Time      `json:"lastRun"`
	SeenIDs map[string]bool `json:"seenIds"`
}

// NewSyncState returns the zero state used when no prior state exists or
// the state file is unreadable.
func NewSyncState() *SyncState {
	return &SyncState{SeenIDs: map[string]bool{}}
}

// Seen reports whether the id was processed by a previous run.
func (s *SyncState) Seen(id string) bool {
	return s != nil && s.SeenIDs[id]
}

package graph

import (
	"context"

	"go.uber.org/zap"

	"github.com/akn101/assignmentsync/internal/models"
)

type rosterFetcher interface {
	Members(ctx context.Context, classID string) (*models.Roster, error)
}

// RosterCache memoizes roster lookups for the lifetime of one sync run:
// at most one fetch per distinct class id. A failed lookup (for example an
// access-restricted class) degrades to an empty roster rather than failing
// the run, and the degraded result is cached too.
type RosterCache struct {
	fetcher rosterFetcher
	logger  *zap.Logger
	rosters map[string]*models.Roster
}

// NewRosterCache builds a cache over the given fetcher. Caches must not be
// shared across sync invocations.
func NewRosterCache(fetcher rosterFetcher, logger *zap.Logger) *RosterCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterCache{
		fetcher: fetcher,
		logger:  logger,
		rosters: make(map[string]*models.Roster),
	}
}

// MembersOf returns the class roster, fetching it on first use.
func (c *RosterCache) MembersOf(ctx context.Context, classID string) *models.Roster {
	if roster, ok := c.rosters[classID]; ok {
		return roster
	}

	roster, err := c.fetcher.Members(ctx, classID)
	if err != nil {
		c.logger.Warn("roster lookup failed; continuing without teacher attribution",
			zap.String("class_id", classID), zap.Error(err))
		roster = models.EmptyRoster()
	}

	c.rosters[classID] = roster
	return roster
}

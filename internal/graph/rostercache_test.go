package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akn101/assignmentsync/internal/models"
)

type rosterFetcherStub struct {
	calls   map[string]int
	rosters map[string]*models.Roster
	err     error
}

func (s *rosterFetcherStub) Members(_ context.Context, classID string) (*models.Roster, error) {
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[classID]++
	if s.err != nil {
		return nil, s.err
	}
	return s.rosters[classID], nil
}

func TestRosterCacheFetchesOncePerClass(t *testing.T) {
	stub := &rosterFetcherStub{rosters: map[string]*models.Roster{
		"class-1": models.NewRoster([]models.RosterMember{{ID: "t1", Role: models.RoleTeacher}}),
		"class-2": models.NewRoster(nil),
	}}
	cache := NewRosterCache(stub, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cache.MembersOf(ctx, "class-1")
		cache.MembersOf(ctx, "class-2")
	}

	require.Equal(t, 1, stub.calls["class-1"])
	require.Equal(t, 1, stub.calls["class-2"])
	require.Len(t, cache.MembersOf(ctx, "class-1").Teachers, 1)
}

func TestRosterCacheDegradesToEmptyOnFailure(t *testing.T) {
	stub := &rosterFetcherStub{err: errors.New("403 access denied")}
	cache := NewRosterCache(stub, zap.NewNop())

	roster := cache.MembersOf(context.Background(), "restricted")
	require.NotNil(t, roster)
	require.Empty(t, roster.Teachers)
	require.Empty(t, roster.Students)

	// The degraded result is cached; no second fetch.
	cache.MembersOf(context.Background(), "restricted")
	require.Equal(t, 1, stub.calls["restricted"])
}

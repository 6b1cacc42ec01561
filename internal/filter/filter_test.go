package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akn101/assignmentsync/internal/models"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func ids(items []models.Assignment) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestApplyNoCriteriaKeepsEverything(t *testing.T) {
	items := []models.Assignment{{ID: "a"}, {ID: "b"}}
	kept := Apply(items, Criteria{}, models.NewSyncState(), now)
	require.Equal(t, []string{"a", "b"}, ids(kept))
}

func TestIncompleteAsymmetry(t *testing.T) {
	items := []models.Assignment{
		{ID: "turned-in-and-submitted", AllTurnedIn: true, AnySubmittedState: true},
		{ID: "turned-in-no-submissions", AllTurnedIn: true, AnySubmittedState: false},
		{ID: "not-turned-in", AllTurnedIn: false, AnySubmittedState: true},
	}

	kept := Apply(items, Criteria{Incomplete: true}, models.NewSyncState(), now)
	require.Equal(t, []string{"turned-in-no-submissions", "not-turned-in"}, ids(kept),
		"only fully-turned-in items with at least one submission are excluded")
}

func TestOverdueRequiresPastDueDate(t *testing.T) {
	items := []models.Assignment{
		{ID: "past", DueDate: now.Add(-24 * time.Hour).Format(time.RFC3339)},
		{ID: "future", DueDate: now.Add(24 * time.Hour).Format(time.RFC3339)},
		{ID: "no-due-date"},
		{ID: "garbage-due-date", DueDate: "soon"},
	}

	kept := Apply(items, Criteria{Overdue: true}, models.NewSyncState(), now)
	require.Equal(t, []string{"past"}, ids(kept))
}

func TestStatusAndClassSets(t *testing.T) {
	items := []models.Assignment{
		{ID: "a", Status: "assigned", ClassID: "c1"},
		{ID: "b", Status: "draft", ClassID: "c1"},
		{ID: "c", Status: "assigned", ClassID: "c2"},
	}

	kept := Apply(items, Criteria{Statuses: []string{"assigned"}, ClassIDs: []string{"c1"}}, models.NewSyncState(), now)
	require.Equal(t, []string{"a"}, ids(kept))

	kept = Apply(items, Criteria{Statuses: []string{"assigned", "draft"}}, models.NewSyncState(), now)
	require.Equal(t, []string{"a", "b", "c"}, ids(kept), "empty class set means no constraint")
}

func TestDueBounds(t *testing.T) {
	bound := now.Add(48 * time.Hour)
	items := []models.Assignment{
		{ID: "early", DueDate: now.Format(time.RFC3339)},
		{ID: "late", DueDate: now.Add(96 * time.Hour).Format(time.RFC3339)},
		{ID: "undated"},
	}

	kept := Apply(items, Criteria{DueBefore: &bound}, models.NewSyncState(), now)
	require.Equal(t, []string{"early"}, ids(kept), "undated items fail date-bound predicates")

	kept = Apply(items, Criteria{DueAfter: &bound}, models.NewSyncState(), now)
	require.Equal(t, []string{"late"}, ids(kept))
}

func TestIncrementalExcludesSeenIDs(t *testing.T) {
	st := models.NewSyncState()
	st.SeenIDs["a"] = true

	items := []models.Assignment{{ID: "a"}, {ID: "b"}}

	kept := Apply(items, Criteria{Incremental: true}, st, now)
	require.Equal(t, []string{"b"}, ids(kept))

	kept = Apply(items, Criteria{}, st, now)
	require.Equal(t, []string{"a", "b"}, ids(kept), "full mode ignores the seen-set")
}

func TestPredicatesCombineWithAND(t *testing.T) {
	items := []models.Assignment{
		{ID: "match", Status: "assigned", DueDate: now.Add(-time.Hour).Format(time.RFC3339)},
		{ID: "wrong-status", Status: "draft", DueDate: now.Add(-time.Hour).Format(time.RFC3339)},
		{ID: "not-overdue", Status: "assigned", DueDate: now.Add(time.Hour).Format(time.RFC3339)},
	}

	kept := Apply(items, Criteria{Statuses: []string{"assigned"}, Overdue: true}, models.NewSyncState(), now)
	require.Equal(t, []string{"match"}, ids(kept))
}

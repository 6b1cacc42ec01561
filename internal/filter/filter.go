// Package filter evaluates the user-specified predicates over the
// canonical assignment set. All predicates are optional and combine with
// AND semantics; evaluation is a pure single pass.
package filter

import (
	"time"

	"github.com/akn101/assignmentsync/internal/models"
)

// Criteria describes one run's predicate set. Zero values mean "no
// constraint". Date bounds are pre-validated by the CLI before a Criteria
// is constructed.
type Criteria struct {
	Statuses    []string
	ClassIDs    []string
	DueBefore   *time.Time
	DueAfter    *time.Time
	Incomplete  bool
	Overdue     bool
	Incremental bool
}

// Apply returns the items matching every active predicate, preserving
// input order. state is consulted only when Incremental is set.
func Apply(items []models.Assignment, c Criteria, state *models.SyncState, now time.Time) []models.Assignment {
	statuses := toSet(c.Statuses)
	classes := toSet(c.ClassIDs)

	kept := make([]models.Assignment, 0, len(items))
	for _, item := range items {
		if !matches(item, c, statuses, classes, state, now) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func matches(item models.Assignment, c Criteria, statuses, classes map[string]bool, state *models.SyncState, now time.Time) bool {
	if len(statuses) > 0 && !statuses[item.Status] {
		return false
	}
	if len(classes) > 0 && !classes[item.ClassID] {
		return false
	}

	due, dueOK := parseDate(item.DueDate)
	if c.DueBefore != nil && (!dueOK || !due.Before(*c.DueBefore)) {
		return false
	}
	if c.DueAfter != nil && (!dueOK || !due.After(*c.DueAfter)) {
		return false
	}

	// "Incomplete" drops an item only when it is fully turned in AND has at
	// least one submitted state. The zero-submission case stays in on
	// purpose, even when allTurnedIn claims completion.
	if c.Incomplete && item.AllTurnedIn && item.AnySubmittedState {
		return false
	}

	if c.Overdue && (!dueOK || !due.Before(now)) {
		return false
	}

	if c.Incremental && state.Seen(item.ID) {
		return false
	}

	return true
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

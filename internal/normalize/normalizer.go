// Package normalize maps raw listing items to the canonical assignment
// shape, resolving teacher attribution through the class roster and pulling
// full instructions from the detail endpoint when the listing omits them.
package normalize

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/akn101/assignmentsync/internal/models"
)

// DescriptionLimit caps the plain-text description length.
const DescriptionLimit = 2000

type detailFetcher interface {
	AssignmentDetail(ctx context.Context, classID, assignmentID string) (*models.RawAssignment, error)
}

type rosterLookup interface {
	MembersOf(ctx context.Context, classID string) *models.Roster
}

// Normalizer converts RawAssignment values into immutable canonical
// Assignments. Lookups run sequentially, one in flight at a time.
type Normalizer struct {
	rosters rosterLookup
	details detailFetcher
	logger  *zap.Logger
}

// NewNormalizer wires the roster cache and detail client.
func NewNormalizer(rosters rosterLookup, details detailFetcher, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{rosters: rosters, details: details, logger: logger}
}

// Normalize maps one raw record to the canonical schema.
func (n *Normalizer) Normalize(ctx context.Context, raw models.RawAssignment) models.Assignment {
	roster := n.rosters.MembersOf(ctx, raw.ClassID)

	a := models.Assignment{
		ID:                   raw.ID,
		Title:                raw.DisplayName,
		Description:          extractDescription(raw.Instructions),
		DueDate:              raw.DueDateTime,
		AssignedDate:         raw.AssignedDateTime,
		CreatedDate:          raw.CreatedDateTime,
		ModifiedDate:         raw.LastModifiedDateTime,
		Status:               raw.Status,
		ClassID:              raw.ClassID,
		StudentCount:         len(roster.Students),
		WebURL:               raw.WebURL,
		AllTurnedIn:          raw.AllTurnedIn,
		AnySubmittedState:    raw.AnySubmittedState,
		AllowLateSubmissions: raw.AllowLateSubmissions,
		TotalSubmissions:     raw.TotalSubmissions,
		SubmittedCount:       raw.SubmittedCount,
	}

	if teacher, ok := resolveTeacher(roster, raw.CreatedBy); ok {
		a.TeacherName = teacher.DisplayName
		a.TeacherEmail = teacher.Email
	}

	// Listing pages frequently truncate or drop instructions entirely;
	// the single-item detail endpoint is authoritative.
	if a.Description == "" && raw.ClassID != "" && raw.ID != "" {
		detail, err := n.details.AssignmentDetail(ctx, raw.ClassID, raw.ID)
		if err != nil {
			n.logger.Warn("detail fetch for description failed",
				zap.String("assignment_id", raw.ID), zap.Error(err))
		} else if detail != nil {
			a.Description = extractDescription(detail.Instructions)
		}
	}

	return a
}

// resolveTeacher prefers the record's creator when the roster knows them as
// a teacher, then the roster's first teacher, then nothing.
func resolveTeacher(roster *models.Roster, createdBy *models.IdentitySet) (models.RosterMember, bool) {
	if createdBy != nil && createdBy.User != nil {
		if member, ok := roster.ByID[createdBy.User.ID]; ok && member.Role == models.RoleTeacher {
			return member, true
		}
	}
	if len(roster.Teachers) > 0 {
		return roster.Teachers[0], true
	}
	return models.RosterMember{}, false
}

func extractDescription(body *models.ItemBody) string {
	if body == nil {
		return ""
	}
	text := strings.TrimSpace(StripHTML(body.Content))
	if runes := []rune(text); len(runes) > DescriptionLimit {
		text = string(runes[:DescriptionLimit])
	}
	return text
}

// StripHTML removes all markup from an HTML fragment, keeping text nodes
// separated by single spaces.
func StripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}

	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var parts []string
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.TextToken:
			if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
				parts = append(parts, text)
			}
		}
	}
}

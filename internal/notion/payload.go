package notion

import "github.com/akn101/assignmentsync/internal/models"

// Property names used in the target database.
const (
	PropTitle        = "Name"
	PropAssignmentID = "Assignment ID"
	PropDescription  = "Description"
	PropDue          = "Due Date"
	PropStatus       = "Status"
	PropClass        = "Class ID"
	PropTeacher      = "Teacher"
	PropTurnedIn     = "All Turned In"
	PropSubmitted    = "Submitted"
	PropURL          = "URL"
)

// Page is one create-page request body. The exporter writes the same shape
// to disk so a dry run's artifact can be replayed against the store.
type Page struct {
	Parent     Parent         `json:"parent"`
	Properties map[string]any `json:"properties"`
}

// Parent addresses the target database.
type Parent struct {
	DatabaseID string `json:"database_id"`
}

// PagePayload maps a canonical assignment to a create-page request.
func PagePayload(databaseID string, a models.Assignment) Page {
	props := map[string]any{
		PropTitle:        titleProp(a.Title),
		PropAssignmentID: richTextProp(a.ID),
		PropDescription:  richTextProp(a.Description),
		PropStatus:       selectProp(a.Status),
		PropClass:        richTextProp(a.ClassID),
		PropTeacher:      richTextProp(a.TeacherName),
		PropTurnedIn:     checkboxProp(a.AllTurnedIn),
		PropSubmitted:    map[string]any{"number": a.SubmittedCount},
	}
	if a.DueDate != "" {
		props[PropDue] = map[string]any{"date": map[string]any{"start": a.DueDate}}
	}
	if a.WebURL != "" {
		props[PropURL] = map[string]any{"url": a.WebURL}
	}
	return Page{Parent: Parent{DatabaseID: databaseID}, Properties: props}
}

func titleProp(text string) map[string]any {
	return map[string]any{"title": []any{textFragment(text)}}
}

func richTextProp(text string) map[string]any {
	if text == "" {
		return map[string]any{"rich_text": []any{}}
	}
	return map[string]any{"rich_text": []any{textFragment(text)}}
}

func selectProp(name string) map[string]any {
	if name == "" {
		name = "unknown"
	}
	return map[string]any{"select": map[string]any{"name": name}}
}

func checkboxProp(checked bool) map[string]any {
	return map[string]any{"checkbox": checked}
}

func textFragment(text string) map[string]any {
	return map[string]any{"text": map[string]any{"content": text}}
}

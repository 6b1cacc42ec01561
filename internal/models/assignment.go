package models

// RawAssignment mirrors one assignment item as the listing endpoint returns
// it. The shape is upstream-defined and only lives for a single fetch cycle.
type RawAssignment struct {
	ID                   string       `json:"id"`
	DisplayName          string       `json:"displayName"`
	Status               string       `json:"status"`
	DueDateTime          string       `json:"dueDateTime"`
	AssignedDateTime     string       `json:"assignedDateTime"`
	CreatedDateTime      string       `json:"createdDateTime"`
	LastModifiedDateTime string       `json:"lastModifiedDateTime"`
	ClassID              string       `json:"classId"`
	WebURL               string       `json:"webUrl"`
	Instructions         *ItemBody    `json:"instructions,omitempty"`
	CreatedBy            *IdentitySet `json:"createdBy,omitempty"`
	AllowLateSubmissions bool         `json:"allowLateSubmissions"`
	AllTurnedIn          bool         `json:"allTurnedIn"`
	AnySubmittedState    bool         `json:"anySubmittedState"`
	TotalSubmissions     int          `json:"totalSubmissions"`
	SubmittedCount       int          `json:"submittedCount"`
}

// ItemBody carries HTML or plain-text content from the upstream API.
type ItemBody struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

// IdentitySet wraps the creator identity of a raw assignment.
type IdentitySet struct {
	User *Identity `json:"user,omitempty"`
}

// Identity is one upstream principal reference.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Assignment is the canonical, normalized representation consumed by the
// filter, export, and upload stages. Instances are immutable once built.
// All date fields hold ISO-8601 strings or are empty; Description never
// contains markup and is capped at 2000 characters.
type Assignment struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	Description          string `json:"description"`
	DueDate              string `json:"dueDate"`
	AssignedDate         string `json:"assignedDate"`
	CreatedDate          string `json:"createdDate"`
	ModifiedDate         string `json:"modifiedDate"`
	Status               string `json:"status"`
	ClassID              string `json:"classId"`
	TeacherName          string `json:"teacherName"`
	TeacherEmail         string `json:"teacherEmail"`
	StudentCount         int    `json:"studentCount"`
	WebURL               string `json:"webUrl"`
	AllTurnedIn          bool   `json:"allTurnedIn"`
	AnySubmittedState    bool   `json:"anySubmittedState"`
	AllowLateSubmissions bool   `json:"allowLateSubmissions"`
	TotalSubmissions     int    `json:"totalSubmissions"`
	SubmittedCount       int    `json:"submittedCount"`
}

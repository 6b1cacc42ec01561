package models

// Roster member roles as reported by the roster endpoint.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// RosterMember is one identity belonging to a class.
type RosterMember struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// Roster groups the members of one class. It lives for the duration of a
// single sync run and is never persisted.
type Roster struct {
	Teachers []RosterMember
	Students []RosterMember
	ByID     map[string]RosterMember
}

// NewRoster indexes members into teacher/student groups.
func NewRoster(members []RosterMember) *Roster {
	r := &Roster{ByID: make(map[string]RosterMember, len(members))}
	for _, m := range members {
		r.ByID[m.ID] = m
		switch m.Role {
		case RoleTeacher:
			r.Teachers = append(r.Teachers, m)
		case RoleStudent:
			r.Students = append(r.Students, m)
		}
	}
	return r
}

// EmptyRoster is the degraded result for classes whose roster cannot be
// read; teacher attribution falls back to empty fields.
func EmptyRoster() *Roster {
	return &Roster{ByID: map[string]RosterMember{}}
}

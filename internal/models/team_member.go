package models

import "time"

// Availability of a team member for auto-assignment.
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
)

func (a Availability) Valid() bool {
	return a == Available || a == Unavailable
}

// TeamMember is a row of the team directory. Members double as login
// principals, so the password hash lives here and never leaves the server.
type TeamMember struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Role         string       `json:"role"`
	Department   string       `json:"department"`
	Availability Availability `json:"availability"`
	PasswordHash string       `json:"-"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Workload is a snapshot of a member's currently active items by collection.
type Workload struct {
	TotalActive int `json:"totalActive"`
	Contacts    int `json:"contacts"`
	Leads       int `json:"leads"`
	Deals       int `json:"deals"`
	Tasks       int `json:"tasks"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

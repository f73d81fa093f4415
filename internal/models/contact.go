package models

import "time"

// Contact is a person record; routable like leads and deals.
type Contact struct {
	ID                int                      `json:"id"`
	Name              string                   `json:"name"`
	Email             string                   `json:"email"`
	Phone             string                   `json:"phone"`
	Company           string                   `json:"company"`
	Position          string                   `json:"position"`
	AssignedTo        *int                     `json:"assigned_to"`
	AssignmentHistory []AssignmentHistoryEntry `json:"assignment_history"`
	Tags              []string                 `json:"tags"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

func (c *Contact) FieldMap() map[string]any {
	return map[string]any{
		"name":     c.Name,
		"email":    c.Email,
		"phone":    c.Phone,
		"company":  c.Company,
		"position": c.Position,
	}
}

package models

import "time"

// LeadStage is the pipeline position of a lead.
type LeadStage string

const (
	LeadStageNew       LeadStage = "new"
	LeadStageContacted LeadStage = "contacted"
	LeadStageNurturing LeadStage = "nurturing"
	LeadStageQualified LeadStage = "qualified"
	LeadStageConverted LeadStage = "converted"
	LeadStageLost      LeadStage = "lost"
)

// QualificationChecklist holds the BANT-style readiness criteria.
type QualificationChecklist struct {
	Budget          bool `json:"budget"`
	Authority       bool `json:"authority"`
	Need            bool `json:"need"`
	Timeline        bool `json:"timeline"`
	DecisionProcess bool `json:"decisionProcess"`
	Competition     bool `json:"competition"`
	Fit             bool `json:"fit"`
}

// ScoreHistoryEntry records one score change. PreviousScore is nil on the
// first entry.
type ScoreHistoryEntry struct {
	Score         int       `json:"score"`
	PreviousScore *int      `json:"previousScore"`
	Timestamp     time.Time `json:"timestamp"`
	Reason        string    `json:"reason"`
}

type Lead struct {
	ID                int                      `json:"id"`
	Title             string                   `json:"title"`
	Company           string                   `json:"company"`
	ContactName       string                   `json:"contact_name"`
	Email             string                   `json:"email"`
	Phone             string                   `json:"phone"`
	Value             *float64                 `json:"value"`
	Budget            *float64                 `json:"budget"`
	Timeline          string                   `json:"timeline"`
	Source            string                   `json:"source"`
	Stage             LeadStage                `json:"stage"`
	Notes             string                   `json:"notes"`
	AssignedTo        *int                     `json:"assigned_to"`
	AssignmentHistory []AssignmentHistoryEntry `json:"assignment_history"`
	Qualification     *QualificationChecklist  `json:"qualification"`
	Score             int                      `json:"score"`
	ScoreHistory      []ScoreHistoryEntry      `json:"score_history"`
	Tags              []string                 `json:"tags"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// FieldMap flattens the lead into the keys rule conditions refer to.
// Absent optional values are omitted so conditions see a missing field.
func (l *Lead) FieldMap() map[string]any {
	m := map[string]any{
		"title":       l.Title,
		"company":     l.Company,
		"contactName": l.ContactName,
		"email":       l.Email,
		"phone":       l.Phone,
		"timeline":    l.Timeline,
		"source":      l.Source,
		"stage":       string(l.Stage),
		"notes":       l.Notes,
		"score":       float64(l.Score),
	}
	if l.Value != nil {
		m["value"] = *l.Value
	}
	if l.Budget != nil {
		m["budget"] = *l.Budget
	}
	return m
}

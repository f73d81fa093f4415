package models

import "time"

// DealStage is the pipeline position of a deal.
type DealStage string

const (
	DealStageNew         DealStage = "new"
	DealStageQualified   DealStage = "qualified"
	DealStageProposal    DealStage = "proposal"
	DealStageNegotiation DealStage = "negotiation"
	DealStageClosedWon   DealStage = "closed-won"
	DealStageClosedLost  DealStage = "closed-lost"
)

func (s DealStage) Valid() bool {
	switch s {
	case DealStageNew, DealStageQualified, DealStageProposal,
		DealStageNegotiation, DealStageClosedWon, DealStageClosedLost:
		return true
	}
	return false
}

func (s DealStage) Closed() bool {
	return s == DealStageClosedWon || s == DealStageClosedLost
}

// StageHistoryEntry records a stay in one pipeline stage. Exactly one entry
// per deal is open (ExitedAt nil); DurationMs stays 0 until the stage is
// exited.
type StageHistoryEntry struct {
	Stage      string     `json:"stage"`
	EnteredAt  time.Time  `json:"enteredAt"`
	ExitedAt   *time.Time `json:"exitedAt,omitempty"`
	DurationMs int64      `json:"duration"`
}

type Deal struct {
	ID                int                      `json:"id"`
	Title             string                   `json:"title"`
	Amount            float64                  `json:"amount"`
	Stage             DealStage                `json:"stage"`
	Probability       int                      `json:"probability"`
	CloseDate         string                   `json:"close_date"`
	Notes             string                   `json:"notes"`
	DealOwner         *int                     `json:"deal_owner"`
	AssignmentHistory []AssignmentHistoryEntry `json:"assignment_history"`
	StageHistory      []StageHistoryEntry      `json:"stage_history"`
	ContactID         *int                     `json:"contact_id"`
	Tags              []string                 `json:"tags"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// FieldMap flattens the deal into the keys rule conditions refer to.
func (d *Deal) FieldMap() map[string]any {
	m := map[string]any{
		"title":       d.Title,
		"amount":      d.Amount,
		"stage":       string(d.Stage),
		"probability": float64(d.Probability),
		"notes":       d.Notes,
	}
	if d.CloseDate != "" {
		m["closeDate"] = d.CloseDate
	}
	if d.ContactID != nil {
		m["contactId"] = float64(*d.ContactID)
	}
	return m
}

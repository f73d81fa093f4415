package services

import (
	"math"
	"strings"
	"time"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

// Lead scoring configuration. Weights sum to 1.0.
type scoreRange struct {
	min, max float64
	score    float64
}

var (
	valueWeight         = 0.30
	engagementWeight    = 0.25
	completenessWeight  = 0.15
	recencyWeight       = 0.10
	qualificationWeight = 0.20

	valueRanges = []scoreRange{
		{0, 10000, 20},
		{10001, 25000, 40},
		{25001, 50000, 60},
		{50001, 100000, 80},
		{100001, math.Inf(1), 100},
	}

	engagementStages = map[models.LeadStage]float64{
		models.LeadStageNew:       20,
		models.LeadStageContacted: 40,
		models.LeadStageNurturing: 60,
		models.LeadStageQualified: 70,
		models.LeadStageConverted: 100,
		models.LeadStageLost:      5,
	}

	// Fields counted toward completeness; nine in total.
	completenessFieldCount = 9.0

	recencyMaxDays = 30.0

	qualificationPoints = []struct {
		flag   func(q *models.QualificationChecklist) bool
		points float64
	}{
		{func(q *models.QualificationChecklist) bool { return q.Budget }, 15},
		{func(q *models.QualificationChecklist) bool { return q.Authority }, 15},
		{func(q *models.QualificationChecklist) bool { return q.Need }, 20},
		{func(q *models.QualificationChecklist) bool { return q.Timeline }, 15},
		{func(q *models.QualificationChecklist) bool { return q.DecisionProcess }, 10},
		{func(q *models.QualificationChecklist) bool { return q.Competition }, 10},
		{func(q *models.QualificationChecklist) bool { return q.Fit }, 15},
	}
)

// CalculateLeadScore computes the weighted composite score for a lead.
// The result is always within [1, 100]; a lead can never score 0. Recency
// is measured against the supplied now, so the function is deterministic
// under test.
func CalculateLeadScore(lead *models.Lead, now time.Time) int {
	total := 0.0

	// Value: bucketed deal value. A missing or out-of-bucket value scores 0.
	if lead.Value != nil {
		v := *lead.Value
		for _, r := range valueRanges {
			if v >= r.min && v <= r.max {
				total += r.score * valueWeight
				break
			}
		}
	}

	// Engagement: pipeline stage lookup; unknown stage scores 0.
	total += engagementStages[lead.Stage] * engagementWeight

	// Completeness: fraction of the nine profile fields that are filled.
	filled := 0.0
	for _, s := range []string{lead.Title, lead.Company, lead.ContactName,
		lead.Email, lead.Phone, lead.Timeline, lead.Notes} {
		if strings.TrimSpace(s) != "" {
			filled++
		}
	}
	if lead.Value != nil && *lead.Value != 0 {
		filled++
	}
	if lead.Budget != nil && *lead.Budget != 0 {
		filled++
	}
	total += (filled / completenessFieldCount) * 100 * completenessWeight

	// Recency: linear decay from 100 to 0 over 30 days since last update.
	ref := lead.UpdatedAt
	if ref.IsZero() {
		ref = lead.CreatedAt
	}
	days := now.Sub(ref).Hours() / 24
	recency := math.Max(0, 100-(days/recencyMaxDays)*100)
	total += recency * recencyWeight

	// Qualification: fixed points per checked criterion.
	if lead.Qualification != nil {
		points := 0.0
		for _, c := range qualificationPoints {
			if c.flag(lead.Qualification) {
				points += c.points
			}
		}
		total += points * qualificationWeight
	}

	return int(math.Round(math.Max(1, math.Min(100, total))))
}

// appendScoreHistory appends a score change to the bounded history log.
// Unchanged scores are a no-op, so repeated recalculation never produces
// duplicate entries. The log keeps at most the 50 most recent entries.
func appendScoreHistory(history []models.ScoreHistoryEntry, newScore int, reason string, now time.Time) []models.ScoreHistoryEntry {
	var previous *int
	if n := len(history); n > 0 {
		last := history[n-1]
		if last.Score == newScore {
			return history
		}
		p := last.Score
		previous = &p
	}

	history = append(history, models.ScoreHistoryEntry{
		Score:         newScore,
		PreviousScore: previous,
		Timestamp:     now,
		Reason:        reason,
	})
	if len(history) > maxScoreHistory {
		history = history[len(history)-maxScoreHistory:]
	}
	return history
}

const maxScoreHistory = 50

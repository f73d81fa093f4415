package services

import (
	"time"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

// transitionStage closes the currently open stage entry and appends a new
// open one. The closed entry gets its exit timestamp and duration in
// milliseconds; the invariant is that exactly one entry (the last) is open.
func transitionStage(history []models.StageHistoryEntry, newStage string, now time.Time) []models.StageHistoryEntry {
	out := make([]models.StageHistoryEntry, len(history), len(history)+1)
	copy(out, history)

	if n := len(out); n > 0 {
		last := &out[n-1]
		if last.ExitedAt == nil {
			exit := now
			last.ExitedAt = &exit
			last.DurationMs = now.Sub(last.EnteredAt).Milliseconds()
		}
	}

	return append(out, models.StageHistoryEntry{
		Stage:     newStage,
		EnteredAt: now,
	})
}

// openStageHistory starts a history for a newly created deal.
func openStageHistory(stage string, now time.Time) []models.StageHistoryEntry {
	return []models.StageHistoryEntry{{Stage: stage, EnteredAt: now}}
}

package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type fakeDealSource struct {
	deals []models.Deal
	err   error
}

func (f *fakeDealSource) List(int, int) ([]models.Deal, error) {
	return f.deals, f.err
}

func TestStageDurations(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	now := t0.Add(10 * time.Hour)

	history1 := openStageHistory("new", t0)
	history1 = transitionStage(history1, "qualified", t0.Add(2*time.Hour))
	history1 = transitionStage(history1, "proposal", t0.Add(6*time.Hour))

	history2 := openStageHistory("new", t0)
	history2 = transitionStage(history2, "qualified", t0.Add(4*time.Hour))

	source := &fakeDealSource{deals: []models.Deal{
		{ID: 1, Stage: models.DealStageProposal, StageHistory: history1},
		{ID: 2, Stage: models.DealStageQualified, StageHistory: history2},
	}}
	svc := NewAnalyticsService(source, zap.NewNop())

	out := svc.StageDurations(now)

	// "new": 2h and 4h completed stays
	newMetrics := out.Historical["new"]
	assert.Equal(t, 2, newMetrics.CompletedTransitions)
	assert.Equal(t, (6 * time.Hour).Milliseconds(), newMetrics.TotalDurationMs)
	assert.InDelta(t, float64((3 * time.Hour).Milliseconds()), newMetrics.AverageDurationMs, 0.01)

	// "qualified": only deal 1 completed it (4h); deal 2 is still in it
	qualified := out.Historical["qualified"]
	assert.Equal(t, 1, qualified.CompletedTransitions)
	assert.Equal(t, (4 * time.Hour).Milliseconds(), qualified.TotalDurationMs)

	// open entries feed the current metrics, keyed by the deal's stage
	require.Contains(t, out.Current, "proposal")
	assert.Equal(t, 1, out.Current["proposal"].ActiveDeals)
	assert.Equal(t, (4 * time.Hour).Milliseconds(), out.Current["proposal"].TotalElapsedMs)

	require.Contains(t, out.Current, "qualified")
	assert.Equal(t, (6 * time.Hour).Milliseconds(), out.Current["qualified"].TotalElapsedMs)
}

func TestStageDurationsDegrades(t *testing.T) {
	svc := NewAnalyticsService(&fakeDealSource{err: errors.New("store down")}, zap.NewNop())

	out := svc.StageDurations(time.Now())
	assert.Empty(t, out.Historical)
	assert.Empty(t, out.Current)
}

func TestPipeline(t *testing.T) {
	source := &fakeDealSource{deals: []models.Deal{
		{ID: 1, Amount: 10000, Probability: 50, Stage: models.DealStageProposal},
		{ID: 2, Amount: 40000, Probability: 25, Stage: models.DealStageNew},
		{ID: 3, Amount: 50000, Probability: 100, Stage: models.DealStageClosedWon},
	}}
	svc := NewAnalyticsService(source, zap.NewNop())

	out := svc.Pipeline()
	assert.Equal(t, 3, out.TotalDeals)
	assert.InDelta(t, 100000, out.TotalValue, 0.01)
	assert.InDelta(t, 10000*0.5+40000*0.25+50000, out.WeightedValue, 0.01)
	assert.Equal(t, map[string]int{"proposal": 1, "new": 1, "closed-won": 1}, out.StageDistribution)
}

func TestSummary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeDealSource{deals: []models.Deal{
		{ID: 1, Amount: 10000, Stage: models.DealStageClosedWon, CreatedAt: now.Add(-5 * 24 * time.Hour)},
		{ID: 2, Amount: 20000, Stage: models.DealStageClosedLost, CreatedAt: now.Add(-10 * 24 * time.Hour)},
		{ID: 3, Amount: 30000, Stage: models.DealStageProposal, CreatedAt: now.Add(-20 * 24 * time.Hour)},
		// outside the 30d window
		{ID: 4, Amount: 99999, Stage: models.DealStageClosedWon, CreatedAt: now.Add(-45 * 24 * time.Hour)},
	}}
	svc := NewAnalyticsService(source, zap.NewNop())

	out := svc.Summary("30d", now)
	assert.Equal(t, 3, out.TotalDeals)
	assert.Equal(t, 1, out.WonDeals)
	assert.Equal(t, 1, out.LostDeals)
	assert.Equal(t, 1, out.ActiveDeals)
	assert.InDelta(t, 60000, out.TotalRevenue, 0.01)
	assert.InDelta(t, 100.0/3, out.WinRate, 0.01)
	assert.InDelta(t, 200.0/3, out.ConversionRate, 0.01)

	// 7d narrows to the single recent deal
	week := svc.Summary("7d", now)
	assert.Equal(t, 1, week.TotalDeals)
	assert.Equal(t, 1, week.WonDeals)

	// unknown periods fall back to 30d
	fallback := svc.Summary("2w", now)
	assert.Equal(t, 3, fallback.TotalDeals)
}

func TestSummaryEmpty(t *testing.T) {
	svc := NewAnalyticsService(&fakeDealSource{}, zap.NewNop())

	out := svc.Summary("30d", time.Now())
	assert.Zero(t, out.TotalDeals)
	assert.Zero(t, out.WinRate)
	assert.Zero(t, out.ConversionRate)
}

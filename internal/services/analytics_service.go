package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

// DealSource is the read-only deal feed analytics aggregates over.
type DealSource interface {
	List(limit, offset int) ([]models.Deal, error)
}

// StageMetrics aggregates completed stays in one stage.
type StageMetrics struct {
	TotalDurationMs      int64   `json:"totalDuration"`
	CompletedTransitions int     `json:"completedTransitions"`
	AverageDurationMs    float64 `json:"averageDuration"`
}

// CurrentStageMetrics aggregates elapsed time of deals currently sitting in
// one stage.
type CurrentStageMetrics struct {
	TotalElapsedMs   int64   `json:"totalCurrentDuration"`
	ActiveDeals      int     `json:"activeDeals"`
	AverageElapsedMs float64 `json:"averageCurrentDuration"`
}

type StageDurationAnalytics struct {
	Historical map[string]StageMetrics        `json:"historicalStageMetrics"`
	Current    map[string]CurrentStageMetrics `json:"currentStageMetrics"`
}

type PipelineMetrics struct {
	TotalValue        float64        `json:"totalValue"`
	WeightedValue     float64        `json:"weightedValue"`
	TotalDeals        int            `json:"totalDeals"`
	StageDistribution map[string]int `json:"stageDistribution"`
}

// SalesSummary is the period report of deal outcomes.
type SalesSummary struct {
	Period         string  `json:"period"`
	TotalDeals     int     `json:"totalDeals"`
	WonDeals       int     `json:"wonDeals"`
	LostDeals      int     `json:"lostDeals"`
	ActiveDeals    int     `json:"activeDeals"`
	TotalRevenue   float64 `json:"totalRevenue"`
	WinRate        float64 `json:"winRate"`
	ConversionRate float64 `json:"conversionRate"`
}

type AnalyticsService struct {
	deals DealSource
	log   *zap.Logger
}

func NewAnalyticsService(deals DealSource, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{deals: deals, log: log}
}

// StageDurations aggregates per-stage dwell times. Closed entries feed the
// historical averages (instant transitions with zero duration are not
// counted as completed); the open entry of each deal feeds the
// current-stage elapsed averages. Store failures degrade to empty metrics.
func (s *AnalyticsService) StageDurations(now time.Time) StageDurationAnalytics {
	out := StageDurationAnalytics{
		Historical: map[string]StageMetrics{},
		Current:    map[string]CurrentStageMetrics{},
	}

	deals, err := s.deals.List(0, 0)
	if err != nil {
		s.log.Error("stage analytics: listing deals failed", zap.Error(err))
		return out
	}

	for _, deal := range deals {
		for _, entry := range deal.StageHistory {
			if entry.DurationMs > 0 {
				m := out.Historical[entry.Stage]
				m.TotalDurationMs += entry.DurationMs
				m.CompletedTransitions++
				out.Historical[entry.Stage] = m
			}
		}

		if n := len(deal.StageHistory); n > 0 {
			open := deal.StageHistory[n-1]
			if open.ExitedAt == nil {
				m := out.Current[string(deal.Stage)]
				m.TotalElapsedMs += now.Sub(open.EnteredAt).Milliseconds()
				m.ActiveDeals++
				out.Current[string(deal.Stage)] = m
			}
		}
	}

	for stage, m := range out.Historical {
		m.AverageDurationMs = float64(m.TotalDurationMs) / float64(m.CompletedTransitions)
		out.Historical[stage] = m
	}
	for stage, m := range out.Current {
		m.AverageElapsedMs = float64(m.TotalElapsedMs) / float64(m.ActiveDeals)
		out.Current[stage] = m
	}
	return out
}

// Pipeline sums open-pipeline value, the probability-weighted value and the
// per-stage deal counts. Store failures degrade to zero values.
func (s *AnalyticsService) Pipeline() PipelineMetrics {
	out := PipelineMetrics{StageDistribution: map[string]int{}}

	deals, err := s.deals.List(0, 0)
	if err != nil {
		s.log.Error("pipeline metrics: listing deals failed", zap.Error(err))
		return out
	}

	for _, deal := range deals {
		out.TotalValue += deal.Amount
		out.WeightedValue += deal.Amount * float64(deal.Probability) / 100
		out.StageDistribution[string(deal.Stage)]++
	}
	out.TotalDeals = len(deals)
	return out
}

// Summary reports win/loss outcomes for deals created within the period
// (7d, 30d, 90d or 1y; anything else falls back to 30d).
func (s *AnalyticsService) Summary(period string, now time.Time) SalesSummary {
	out := SalesSummary{Period: period}

	deals, err := s.deals.List(0, 0)
	if err != nil {
		s.log.Error("summary: listing deals failed", zap.Error(err))
		return out
	}

	start := now.Add(-periodWindow(period))
	for _, deal := range deals {
		if deal.CreatedAt.Before(start) {
			continue
		}
		out.TotalDeals++
		out.TotalRevenue += deal.Amount
		switch deal.Stage {
		case models.DealStageClosedWon:
			out.WonDeals++
		case models.DealStageClosedLost:
			out.LostDeals++
		default:
			out.ActiveDeals++
		}
	}
	if out.TotalDeals > 0 {
		out.WinRate = float64(out.WonDeals) / float64(out.TotalDeals) * 100
		out.ConversionRate = float64(out.WonDeals+out.LostDeals) / float64(out.TotalDeals) * 100
	}
	return out
}

func periodWindow(period string) time.Duration {
	switch period {
	case "7d":
		return 7 * 24 * time.Hour
	case "90d":
		return 90 * 24 * time.Hour
	case "1y":
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

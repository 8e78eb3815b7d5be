package services

import (
	"context"
	"math"

	"wellbalance/internal/models"
)

type MacroProgress struct {
	Consumed int     `json:"consumed"`
	Target   int     `json:"target"`
	Percent  float64 `json:"percent"`
}

type Dashboard struct {
	Date              string          `json:"date"`
	Totals            models.DailyLog `json:"totals"`
	Targets           ResolvedTargets `json:"targets"`
	Calories          MacroProgress   `json:"calories"`
	Protein           MacroProgress   `json:"protein"`
	Carbs             MacroProgress   `json:"carbs"`
	Fat               MacroProgress   `json:"fat"`
	MacroTotalGrams   int             `json:"macro_total_grams"`
	CaloriesRemaining int             `json:"calories_remaining"`
	History           []HistoryPoint  `json:"history"`
}

type DashboardService struct {
	logs    *DailyLogService
	targets *TargetsService
}

func NewDashboardService(logs *DailyLogService, targets *TargetsService) *DashboardService {
	return &DashboardService{logs: logs, targets: targets}
}

// Get builds the dashboard for rawDate. A missing or malformed date falls back
// to today rather than failing the page.
func (s *DashboardService) Get(ctx context.Context, userID, rawDate string) (Dashboard, error) {
	if userID == "" {
		return Dashboard{}, ErrUnauthenticated
	}
	date := rawDate
	if _, err := ParseISODate(date); err != nil {
		date = s.logs.Today()
	}

	totals, err := s.logs.DailySummary(ctx, userID, date)
	if err != nil {
		return Dashboard{}, err
	}
	targets := s.targets.Get(ctx, userID)
	history, err := s.logs.WeekHistory(ctx, userID, date)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		Date:              date,
		Totals:            totals,
		Targets:           targets,
		Calories:          progress(totals.TotalCalories, targets.DailyCalories),
		Protein:           progress(totals.ProteinG, targets.ProteinG),
		Carbs:             progress(totals.CarbsG, targets.CarbsG),
		Fat:               progress(totals.FatG, targets.FatG),
		MacroTotalGrams:   totals.ProteinG + totals.CarbsG + totals.FatG,
		CaloriesRemaining: targets.DailyCalories - totals.TotalCalories,
		History:           history,
	}, nil
}

// progress clamps consumed/target to [0, 100] percent; a non-positive target
// reports 0.
func progress(consumed, target int) MacroProgress {
	p := 0.0
	if target > 0 {
		p = float64(consumed) / float64(target) * 100
	}
	return MacroProgress{Consumed: consumed, Target: target, Percent: math.Max(0, math.Min(100, p))}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shenikar/civic_issue_tracker/internal/models"
)

// StatsSource - источник согласованного снимка счетчиков
type StatsSource interface {
	CollectStats(ctx context.Context, recentSince, trendSince time.Time) (*models.StatsSnapshot, error)
}

// StatsAggregator строит отчет по снимку хранилища. Кеширования нет: каждый вызов читает текущее состояние.
type StatsAggregator struct {
	source    StatsSource
	window    time.Duration
	trendDays int
}

func NewStatsAggregator(source StatsSource, window time.Duration, trendDays int) *StatsAggregator {
	if trendDays < 1 {
		trendDays = 1
	}
	return &StatsAggregator{source: source, window: window, trendDays: trendDays}
}

// Report собирает отчет на момент now. Total считается как сумма по статусам,
// поэтому сумма byStatus всегда равна total.
func (a *StatsAggregator) Report(ctx context.Context, now time.Time) (*models.StatsReport, error) {
	now = now.UTC()
	recentSince := now.Add(-a.window)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	trendSince := today.AddDate(0, 0, -(a.trendDays - 1))

	snapshot, err := a.source.CollectStats(ctx, recentSince, trendSince)
	if err != nil {
		return nil, fmt.Errorf("stats: could not collect snapshot: %w", err)
	}

	report := &models.StatsReport{
		ByStatus:    make(map[models.Status]int, len(models.Statuses)),
		ByCategory:  make(map[models.Category]int, len(models.Categories)),
		RecentCount: snapshot.RecentCount,
		WindowStart: recentSince,
		DailyTrend:  make([]models.DailyCount, 0, a.trendDays),
		GeneratedAt: now,
	}

	for _, status := range models.Statuses {
		report.ByStatus[status] = snapshot.ByStatus[string(status)]
		report.Total += report.ByStatus[status]
	}
	for _, category := range models.Categories {
		report.ByCategory[category] = snapshot.ByCategory[string(category)]
	}
	for day := trendSince; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		report.DailyTrend = append(report.DailyTrend, models.DailyCount{Date: key, Count: snapshot.Daily[key]})
	}

	return report, nil
}

// zeroFilled дополняет агрегат нулями для всех значений перечисления
func zeroFilled(dimension models.Dimension, counts map[string]int) map[string]int {
	result := make(map[string]int)
	switch dimension {
	case models.DimensionStatus:
		for _, s := range models.Statuses {
			result[string(s)] = 0
		}
	case models.DimensionCategory:
		for _, c := range models.Categories {
			result[string(c)] = 0
		}
	}
	for k, v := range counts {
		result[k] = v
	}
	return result
}

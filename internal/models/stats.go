package models

import "time"

// DailyCount - количество обращений, созданных за сутки (UTC)
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// StatsSnapshot - сырые счётчики, прочитанные из хранилища одной read-only транзакцией
type StatsSnapshot struct {
	ByStatus    map[string]int
	ByCategory  map[string]int
	RecentCount int
	Daily       map[string]int // ключ - дата в формате 2006-01-02
}

// StatsReport - итоговая статистика для администратора
type StatsReport struct {
	Total       int              `json:"total"`
	ByStatus    map[Status]int   `json:"by_status"`
	ByCategory  map[Category]int `json:"by_category"`
	RecentCount int              `json:"recent_count"`
	WindowStart time.Time        `json:"window_start"`
	DailyTrend  []DailyCount     `json:"daily_trend"`
	GeneratedAt time.Time        `json:"generated_at"`
}

package v1

import (
	"time"

	"github.com/google/uuid"
)

// CreateIssueForm - поля multipart формы создания обращения. Файл передается отдельно в поле image.
// @Description Поля формы создания обращения
type CreateIssueForm struct {
	Title       string   `form:"title" validate:"required,max=200"`
	Description string   `form:"description" validate:"required,max=2000"`
	Category    string   `form:"category" validate:"required"`
	Longitude   *float64 `form:"longitude" validate:"required"`
	Latitude    *float64 `form:"latitude" validate:"required"`
	Address     string   `form:"address" validate:"max=500"`
	ImageHandle string   `form:"image_handle" validate:"max=255"`
}

// UpdateStatusRequest DTO для смены статуса обращения
// @Description DTO для смены статуса обращения
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// IssueResponse DTO для ответа с информацией об обращении
// @Description DTO для ответа с информацией об обращении
type IssueResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Longitude   float64   `json:"longitude"`
	Latitude    float64   `json:"latitude"`
	Address     string    `json:"address,omitempty"`
	Image       string    `json:"image,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ReportedBy  string    `json:"reported_by"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NearbyIssueResponse - обращение и расстояние до центра поиска
// @Description Обращение и расстояние до центра поиска в метрах
type NearbyIssueResponse struct {
	IssueResponse
	DistanceMeters float64 `json:"distance_meters"`
}

// IssueListResponse DTO для страницы обращений
type IssueListResponse struct {
	Items    []*IssueResponse `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// DailyCountResponse - количество новых обращений за день
type DailyCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	Total       int                  `json:"total"`
	ByStatus    map[string]int       `json:"by_status"`
	ByCategory  map[string]int       `json:"by_category"`
	RecentCount int                  `json:"recent_count"`
	WindowStart time.Time            `json:"window_start"`
	DailyTrend  []DailyCountResponse `json:"daily_trend"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// ErrorResponse - тело ответа с ошибкой
// @Description Тело ответа с ошибкой
type ErrorResponse struct {
	Error      string `json:"error"`
	Field      string `json:"field,omitempty"`
	Current    string `json:"current,omitempty"`
	Attempted  string `json:"attempted,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

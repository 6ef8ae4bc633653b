package models

import (
	"time"

	"github.com/google/uuid"
)

// Category - категория обращения
type Category string

const (
	CategoryPothole     Category = "Pothole"
	CategoryGarbage     Category = "Garbage"
	CategoryStreetlight Category = "Streetlight"
	CategoryWater       Category = "Water"
	CategoryOther       Category = "Other"
)

// Categories перечисляет все допустимые категории в стабильном порядке
var Categories = []Category{
	CategoryPothole,
	CategoryGarbage,
	CategoryStreetlight,
	CategoryWater,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Point - географическая точка (долгота, широта) в WGS84
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Issue - обращение жителя о городской проблеме
type Issue struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Location    Point     `json:"location"`
	Address     string    `json:"address,omitempty"`
	Image       string    `json:"image,omitempty"`
	ReportedBy  string    `json:"reported_by"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NearbyIssue - обращение вместе с расстоянием до центра поиска
type NearbyIssue struct {
	Issue          *Issue  `json:"issue"`
	DistanceMeters float64 `json:"distance_meters"`
}

// ImageUpload - загружаемые байты изображения
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// NewIssueInput - данные для создания обращения.
// Image и ImageHandle взаимоисключающие: либо байты для записи в хранилище, либо уже загруженный файл.
type NewIssueInput struct {
	Title       string       `validate:"required,max=200"`
	Description string       `validate:"required,max=2000"`
	Category    Category     `validate:"required"`
	Location    Point        `validate:"-"`
	Address     string       `validate:"max=500"`
	Image       *ImageUpload `validate:"-"`
	ImageHandle string       `validate:"max=255"`
}

// IssueFilter - необязательные фильтры списка
type IssueFilter struct {
	Status     *Status
	Category   *Category
	ReportedBy *string
}

// Pagination - параметры постраничной выдачи
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize приводит параметры пагинации к допустимым значениям
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Dimension - измерение для агрегации
type Dimension string

const (
	DimensionStatus   Dimension = "status"
	DimensionCategory Dimension = "category"
)

func (d Dimension) Valid() bool {
	return d == DimensionStatus || d == DimensionCategory
}

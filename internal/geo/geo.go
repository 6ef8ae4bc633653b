// Package geo содержит проверку координат и сферическое расстояние.
//
// Метрика - расстояние по большому кругу на сфере радиусом EarthRadiusMeters.
// PostGIS запрашивается с use_spheroid = false, то есть на той же сфере,
// поэтому фильтрация в базе и проверки в Go дают одинаковый результат.
package geo

import (
	"math"

	"github.com/shenikar/civic_issue_tracker/internal/apperrors"
	"github.com/shenikar/civic_issue_tracker/internal/models"
)

const (
	// EarthRadiusMeters - средний радиус Земли, совпадает со сферой PostGIS
	EarthRadiusMeters = 6371008.8

	// MaxRadiusMeters - верхняя граница радиуса поиска
	MaxRadiusMeters = 100_000
)

// ValidatePoint проверяет, что точка конечна и лежит в допустимых диапазонах
func ValidatePoint(p models.Point) error {
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) || p.Longitude < -180 || p.Longitude > 180 {
		return apperrors.Validation("longitude", "must be within [-180, 180], got %v", p.Longitude)
	}
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) || p.Latitude < -90 || p.Latitude > 90 {
		return apperrors.Validation("latitude", "must be within [-90, 90], got %v", p.Latitude)
	}
	return nil
}

// ValidateRadius проверяет радиус поиска в метрах
func ValidateRadius(radiusMeters float64) error {
	if math.IsNaN(radiusMeters) || radiusMeters <= 0 {
		return apperrors.Validation("radius", "must be greater than 0")
	}
	if radiusMeters > MaxRadiusMeters {
		return apperrors.Validation("radius", "must not exceed %d meters", MaxRadiusMeters)
	}
	return nil
}

// Distance возвращает расстояние по большому кругу между точками в метрах (формула гаверсинусов)
func Distance(a, b models.Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

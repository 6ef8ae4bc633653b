package models

// Priority - приоритет обращения, вычисляется один раз при создании
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var categoryPriority = map[Category]Priority{
	CategoryWater:       PriorityHigh,
	CategoryPothole:     PriorityMedium,
	CategoryStreetlight: PriorityMedium,
	CategoryOther:       PriorityMedium,
	CategoryGarbage:     PriorityLow,
}

// PriorityFor возвращает приоритет для категории; для неизвестной категории - Medium
func PriorityFor(c Category) Priority {
	if p, ok := categoryPriority[c]; ok {
		return p
	}
	return PriorityMedium
}

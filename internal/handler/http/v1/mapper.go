package v1

import (
	"github.com/shenikar/civic_issue_tracker/internal/models"
)

// FormToNewIssueInput преобразует поля формы в вход сервиса; изображение добавляется отдельно
func FormToNewIssueInput(form CreateIssueForm) models.NewIssueInput {
	input := models.NewIssueInput{
		Title:       form.Title,
		Description: form.Description,
		Category:    models.Category(form.Category),
		Address:     form.Address,
		ImageHandle: form.ImageHandle,
	}
	if form.Longitude != nil {
		input.Location.Longitude = *form.Longitude
	}
	if form.Latitude != nil {
		input.Location.Latitude = *form.Latitude
	}
	return input
}

// ModelToIssueResponse преобразует доменную модель в DTO для ответа
func ModelToIssueResponse(model *models.Issue) *IssueResponse {
	resp := &IssueResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Category:    string(model.Category),
		Longitude:   model.Location.Longitude,
		Latitude:    model.Location.Latitude,
		Address:     model.Address,
		Image:       model.Image,
		ReportedBy:  model.ReportedBy,
		Status:      string(model.Status),
		Priority:    string(model.Priority),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.Image != "" {
		resp.ImageURL = uploadsPath + "/" + model.Image
	}
	return resp
}

// ModelsToIssueResponses преобразует слайс моделей в слайс DTO
func ModelsToIssueResponses(models []*models.Issue) []*IssueResponse {
	responses := make([]*IssueResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIssueResponse(model)
	}
	return responses
}

func ModelsToNearbyResponses(items []*models.NearbyIssue) []*NearbyIssueResponse {
	responses := make([]*NearbyIssueResponse, len(items))
	for i, item := range items {
		responses[i] = &NearbyIssueResponse{
			IssueResponse:  *ModelToIssueResponse(item.Issue),
			DistanceMeters: item.DistanceMeters,
		}
	}
	return responses
}

func ModelToStatsResponse(report *models.StatsReport) *StatsResponse {
	resp := &StatsResponse{
		Total:       report.Total,
		ByStatus:    make(map[string]int, len(report.ByStatus)),
		ByCategory:  make(map[string]int, len(report.ByCategory)),
		RecentCount: report.RecentCount,
		WindowStart: report.WindowStart,
		DailyTrend:  make([]DailyCountResponse, len(report.DailyTrend)),
		GeneratedAt: report.GeneratedAt,
	}
	for status, count := range report.ByStatus {
		resp.ByStatus[string(status)] = count
	}
	for category, count := range report.ByCategory {
		resp.ByCategory[string(category)] = count
	}
	for i, day := range report.DailyTrend {
		resp.DailyTrend[i] = DailyCountResponse{Date: day.Date, Count: day.Count}
	}
	return resp
}

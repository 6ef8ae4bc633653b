package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/shenikar/civic_issue_tracker/internal/apperrors"
	"github.com/shenikar/civic_issue_tracker/internal/config"
	v1mocks "github.com/shenikar/civic_issue_tracker/internal/handler/http/v1/mocks"
	"github.com/shenikar/civic_issue_tracker/internal/models"
	"github.com/shenikar/civic_issue_tracker/internal/service/mocks"
	"github.com/shenikar/civic_issue_tracker/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testJWTSecret = "test-secret"

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

// newTestHandler создает новый экземпляр Handler с мокированным сервисом и лимитером
func newTestHandler(t *testing.T) (*mocks.MockIssueService, *v1mocks.MockCreationLimiter, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockIssueService(ctrl)
	mockLimiter := v1mocks.NewMockCreationLimiter(ctrl)

	cfg := &config.Config{
		JWTSecret:      testJWTSecret,
		MaxUploadBytes: 1024,
	}

	handler := NewHandler(mockService, mockLimiter, logger.Discard(), cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return mockService, mockLimiter, router
}

func signToken(t *testing.T, method jwt.SigningMethod, subject, role string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(method, ActorClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func bearer(t *testing.T, actor models.Actor) map[string]string {
	return map[string]string{"Authorization": "Bearer " + signToken(t, jwt.SigningMethodHS256, actor.ID, string(actor.Role), time.Hour)}
}

var (
	userActor  = models.Actor{ID: "user-1", Role: models.RoleUser}
	adminActor = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
)

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func multipartForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, map[string]string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, map[string]string{"Content-Type": writer.FormDataContentType()}
}

func validFields() map[string]string {
	return map[string]string{
		"title":       "Broken streetlight",
		"description": "Dark for a week",
		"category":    "Streetlight",
		"longitude":   "77.5946",
		"latitude":    "0",
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuth_MissingToken(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	mockService.EXPECT().ListIssues(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/issues", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authorization token required")
}

func TestAuth_InvalidTokens(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	mockService.EXPECT().ListIssues(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	tokens := map[string]string{
		"expired":      signToken(t, jwt.SigningMethodHS256, "user-1", "user", -time.Minute),
		"wrong method": signToken(t, jwt.SigningMethodHS384, "user-1", "user", time.Hour),
		"unknown role": signToken(t, jwt.SigningMethodHS256, "user-1", "superuser", time.Hour),
		"missing sub":  signToken(t, jwt.SigningMethodHS256, "", "admin", time.Hour),
		"not a jwt":    "garbage",
		"wrong secret": func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, ActorClaims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}})
			s, _ := token.SignedString([]byte("other-secret"))
			return s
		}(),
	}

	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			w := makeRequest(router, "GET", "/api/v1/issues", nil, map[string]string{"Authorization": "Bearer " + token})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestCreateIssue_Success(t *testing.T) {
	mockService, mockLimiter, router := newTestHandler(t)
	issueID := uuid.New()

	mockLimiter.EXPECT().Allow(gomock.Any(), userActor.ID).Return(true, time.Duration(0), nil)
	mockService.EXPECT().
		CreateIssue(gomock.Any(), userActor, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Actor, input models.NewIssueInput) (*models.Issue, error) {
			assert.Equal(t, "Broken streetlight", input.Title)
			assert.Equal(t, models.CategoryStreetlight, input.Category)
			assert.Equal(t, models.Point{Longitude: 77.5946, Latitude: 0}, input.Location)
			require.NotNil(t, input.Image)
			assert.Equal(t, pngBytes, input.Image.Data)
			return &models.Issue{
				ID:         issueID,
				Title:      input.Title,
				Category:   input.Category,
				Location:   input.Location,
				Image:      "abc.png",
				ReportedBy: userActor.ID,
				Status:     models.StatusPending,
				Priority:   models.PriorityMedium,
			}, nil
		}).Times(1)

	body, headers := multipartForm(t, validFields(), pngBytes)
	w := makeRequest(router, "POST", "/api/v1/issues", body, bearer(t, userActor), headers)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp IssueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, issueID, resp.ID)
	assert.Equal(t, "Pending", resp.Status)
	assert.Equal(t, "Medium", resp.Priority)
	assert.Equal(t, "/uploads/abc.png", resp.ImageURL)
}

func TestCreateIssue_WithoutImage(t *testing.T) {
	mockService, mockLimiter, router := newTestHandler(t)

	mockLimiter.EXPECT().Allow(gomock.Any(), userActor.ID).Return(true, time.Duration(0), nil)
	mockService.EXPECT().
		CreateIssue(gomock.Any(), userActor, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Actor, input models.NewIssueInput) (*models.Issue, error) {
			assert.Nil(t, input.Image)
			return &models.Issue{ID: uuid.New(), Status: models.StatusPending}, nil
		})

	body, headers := multipartForm(t, validFields(), nil)
	w := makeRequest(router, "POST", "/api/v1/issues", body, bearer(t, userActor), headers)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateIssue_ValidationError(t *testing.T) {
	mockService, mockLimiter, router := newTestHandler(t)
	fields := validFields()
	delete(fields, "title")

	mockLimiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(true, time.Duration(0), nil)
	mockLimiter.EXPECT().Refund(gomock.Any(), userActor.ID).Return(nil).Times(1)
	mockService.EXPECT().CreateIssue(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	body, headers := multipartForm(t, fields, nil)
	w := makeRequest(router, "POST", "/api/v1/issues", body, bearer(t, userActor), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Title' failed on the 'required' tag")
}

func TestCreateIssue_MissingCoordinates(t *testing.T) {
	mockService, mockLimiter, router := newTestHandler(t)
	fields := validFields()
	delete(fields, "latitude")

	mockLimiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(true, time.Duration(0), nil)
	mockLimiter.EXPECT().Refund(gomock.Any(), userActor.ID).Return(nil).Times(1)
	mockService.EXPECT().CreateIssue(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	body, headers := multipartForm(t, fields, nil)
	w := makeRequest(router, "POST", "/api/v1/issues", body, bearer(t, userActor), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "'Latitude' failed on the 'required' tag")
}

func TestCreateIssue_ImageTooLarge(t *testing.T) {
	mockService, mockLimiter, router := newTestHandler(t)

	mockLimiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(true, time.Duration(0), nil)
	mockLimiter.EXPECT().Refund(gomock.Any(), userActor.ID).Return(nil).Times(1)
	mockService.EXPECT().CreateIssue(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	body, headers := multipartForm(t, validFields(), make([]byte, 2048))
	w := makeRequest(router, "POST", "/api/v1/issues", body, bearer(t, userActor), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "image", decodeError(t, w).Field)
}

func TestCreateIssue_RateLimited(t *testing.T) {
	mockService, mockLimiter, router := newTestHandler(t)

	mockLimiter.EXPECT().Allow(gomock.Any(), userActor.ID).Return(false, 90*time.Second, nil)
	mockService.EXPECT().CreateIssue(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	body, headers := multipartForm(t, validFields(), nil)
	w := makeRequest(router, "POST", "/api/v1/issues", body, bearer(t, userActor), headers)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "90", w.Header().Get("Retry-After"))
	assert.Equal(t, 90, decodeError(t, w).RetryAfter)
}

func TestCreateIssue_RetryAfterAtLeastOneSecond(t *testing.T) {
	mockService, mockLimiter, router := newTestHandler(t)

	mockLimiter.EXPECT().Allow(gomock.Any(), userActor.ID).Return(false, 200*time.Millisecond, nil)
	mockService.EXPECT().CreateIssue(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	body, headers := multipartForm(t, validFields(), nil)
	w := makeRequest(router, "POST", "/api/v1/issues", body, bearer(t, userActor), headers)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestCreateIssue_RefundFailureKeepsResponse(t *testing.T) {
	mockService, mockLimiter, router := newTestHandler(t)
	fields := validFields()
	delete(fields, "title")

	mockLimiter.EXPECT().Allow(gomock.Any(), userActor.ID).Return(true, time.Duration(0), nil)
	mockLimiter.EXPECT().Refund(gomock.Any(), userActor.ID).Return(errors.New("redis down"))
	mockService.EXPECT().CreateIssue(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	body, headers := multipartForm(t, fields, nil)
	w := makeRequest(router, "POST", "/api/v1/issues", body, bearer(t, userActor), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateIssue_LimiterFailureDoesNotBlock(t *testing.T) {
	mockService, mockLimiter, router := newTestHandler(t)

	mockLimiter.EXPECT().Allow(gomock.Any(), userActor.ID).Return(false, time.Duration(0), errors.New("redis down"))
	mockService.EXPECT().CreateIssue(gomock.Any(), gomock.Any(), gomock.Any()).Return(&models.Issue{ID: uuid.New()}, nil)

	body, headers := multipartForm(t, validFields(), nil)
	w := makeRequest(router, "POST", "/api/v1/issues", body, bearer(t, userActor), headers)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateIssue_ServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", apperrors.Validation("category", "unknown category"), http.StatusBadRequest},
		{"blob store down", apperrors.Dependency("blob store", errors.New("disk full")), http.StatusServiceUnavailable},
		{"database", fmt.Errorf("service: could not create issue: %w", errors.New("conn reset")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockService, mockLimiter, router := newTestHandler(t)
			mockLimiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(true, time.Duration(0), nil)
			mockLimiter.EXPECT().Refund(gomock.Any(), userActor.ID).Return(nil).Times(1)
			mockService.EXPECT().CreateIssue(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)

			body, headers := multipartForm(t, validFields(), nil)
			w := makeRequest(router, "POST", "/api/v1/issues", body, bearer(t, userActor), headers)

			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestListIssues_PassesFiltersAndPagination(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	status := models.StatusInProgress
	category := models.CategoryWater
	reporter := "user-9"
	expectedFilter := models.IssueFilter{Status: &status, Category: &category, ReportedBy: &reporter}

	mockService.EXPECT().
		ListIssues(gomock.Any(), userActor, expectedFilter, models.Pagination{Page: 2, PageSize: 20}).
		Return([]*models.Issue{{ID: uuid.New()}, {ID: uuid.New()}}, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/issues?status=In+Progress&category=Water&reportedBy=user-9&page=2&pageSize=500", nil, bearer(t, userActor))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IssueListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
}

func TestListIssues_InvalidFilter(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		ListIssues(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperrors.Validation("status", "unknown status %q", "Archived"))

	w := makeRequest(router, "GET", "/api/v1/issues?status=Archived", nil, bearer(t, userActor))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status", decodeError(t, w).Field)
}

func TestGetIssue_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	issueID := uuid.New()
	expected := &models.Issue{
		ID:       issueID,
		Title:    "Retrieved issue",
		Location: models.Point{Longitude: 40, Latitude: 30},
		Status:   models.StatusVerified,
	}

	mockService.EXPECT().GetIssue(gomock.Any(), userActor, issueID).Return(expected, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/issues/%s", issueID.String()), nil, bearer(t, userActor))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IssueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, issueID, resp.ID)
	assert.Equal(t, expected.Title, resp.Title)
	assert.Equal(t, 40.0, resp.Longitude)
	assert.Empty(t, resp.ImageURL)
}

func TestGetIssue_InvalidID(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().GetIssue(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "GET", "/api/v1/issues/invalid-uuid", nil, bearer(t, userActor))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid issue ID")
}

func TestGetIssue_NotFound(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	issueID := uuid.New()

	mockService.EXPECT().
		GetIssue(gomock.Any(), gomock.Any(), issueID).
		Return(nil, fmt.Errorf("service: could not get issue: %w", apperrors.NotFound("issue", issueID.String())))

	w := makeRequest(router, "GET", "/api/v1/issues/"+issueID.String(), nil, bearer(t, userActor))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateIssueStatus_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	issueID := uuid.New()

	mockService.EXPECT().
		UpdateIssueStatus(gomock.Any(), adminActor, issueID, models.StatusVerified).
		Return(&models.Issue{ID: issueID, Status: models.StatusVerified}, nil).
		Times(1)

	w := makeRequest(router, "PUT", "/api/v1/issues/"+issueID.String()+"/status",
		bytes.NewBufferString(`{"status":"Verified"}`), bearer(t, adminActor))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Verified"`)
}

func TestUpdateIssueStatus_Conflict(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	issueID := uuid.New()

	mockService.EXPECT().
		UpdateIssueStatus(gomock.Any(), adminActor, issueID, models.StatusResolved).
		Return(nil, apperrors.Conflict("Pending", "Resolved"))

	w := makeRequest(router, "PUT", "/api/v1/issues/"+issueID.String()+"/status",
		bytes.NewBufferString(`{"status":"Resolved"}`), bearer(t, adminActor))

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Pending", resp.Current)
	assert.Equal(t, "Resolved", resp.Attempted)
}

func TestUpdateIssueStatus_Forbidden(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	issueID := uuid.New()

	mockService.EXPECT().
		UpdateIssueStatus(gomock.Any(), userActor, issueID, models.StatusVerified).
		Return(nil, apperrors.Forbidden("updateStatus", userActor.ID))

	w := makeRequest(router, "PUT", "/api/v1/issues/"+issueID.String()+"/status",
		bytes.NewBufferString(`{"status":"Verified"}`), bearer(t, userActor))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateIssueStatus_InvalidBody(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	mockService.EXPECT().UpdateIssueStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "PUT", "/api/v1/issues/"+uuid.NewString()+"/status",
		bytes.NewBufferString(`{"status":`), bearer(t, adminActor))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(router, "PUT", "/api/v1/issues/"+uuid.NewString()+"/status",
		bytes.NewBufferString(`{}`), bearer(t, adminActor))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteIssue(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	ownID := uuid.New()
	foreignID := uuid.New()

	mockService.EXPECT().DeleteIssue(gomock.Any(), userActor, ownID).Return(nil).Times(1)
	mockService.EXPECT().DeleteIssue(gomock.Any(), userActor, foreignID).Return(apperrors.Forbidden("delete", userActor.ID)).Times(1)

	w := makeRequest(router, "DELETE", "/api/v1/issues/"+ownID.String(), nil, bearer(t, userActor))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = makeRequest(router, "DELETE", "/api/v1/issues/"+foreignID.String(), nil, bearer(t, userActor))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNearbyIssues_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	center := models.Point{Longitude: 77.5946, Latitude: 12.9716}
	issueID := uuid.New()

	mockService.EXPECT().
		NearbyIssues(gomock.Any(), userActor, center, 5000.0, 10).
		Return([]*models.NearbyIssue{{Issue: &models.Issue{ID: issueID}, DistanceMeters: 420.5}}, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/issues/nearby/77.5946/12.9716/5000?limit=10", nil, bearer(t, userActor))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []NearbyIssueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, issueID, resp[0].ID)
	assert.Equal(t, 420.5, resp[0].DistanceMeters)
}

func TestNearbyIssues_InvalidParams(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().NearbyIssues(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/issues/nearby/abc/12.9/5000", nil, bearer(t, userActor))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "longitude", decodeError(t, w).Field)

	w = makeRequest(router, "GET", "/api/v1/issues/nearby/77.5/12.9/far", nil, bearer(t, userActor))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "distance", decodeError(t, w).Field)
}

func TestNearbyIssues_RadiusRejectedByService(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		NearbyIssues(gomock.Any(), gomock.Any(), gomock.Any(), 0.0, 0).
		Return(nil, apperrors.Validation("radius", "must be greater than 0"))

	w := makeRequest(router, "GET", "/api/v1/issues/nearby/77.5/12.9/0", nil, bearer(t, userActor))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "radius", decodeError(t, w).Field)
}

func TestGetStats(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	generated := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	mockService.EXPECT().GetStats(gomock.Any(), adminActor).Return(&models.StatsReport{
		Total:       3,
		ByStatus:    map[models.Status]int{models.StatusPending: 2, models.StatusResolved: 1},
		ByCategory:  map[models.Category]int{models.CategoryWater: 3},
		RecentCount: 1,
		DailyTrend:  []models.DailyCount{{Date: "2026-10-16", Count: 1}},
		GeneratedAt: generated,
	}, nil).Times(1)
	mockService.EXPECT().GetStats(gomock.Any(), userActor).Return(nil, apperrors.Forbidden("viewStats", userActor.ID)).Times(1)

	w := makeRequest(router, "GET", "/api/v1/issues/admin/stats", nil, bearer(t, adminActor))
	assert.Equal(t, http.StatusOK, w.Code)
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.ByStatus["Pending"])
	assert.Equal(t, []DailyCountResponse{{Date: "2026-10-16", Count: 1}}, resp.DailyTrend)

	w = makeRequest(router, "GET", "/api/v1/issues/admin/stats", nil, bearer(t, userActor))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCountBy(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		CountBy(gomock.Any(), adminActor, models.DimensionCategory).
		Return(map[string]int{"Water": 2, "Garbage": 0}, nil)

	w := makeRequest(router, "GET", "/api/v1/issues/admin/stats/category", nil, bearer(t, adminActor))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"Water":2,"Garbage":0}`, w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

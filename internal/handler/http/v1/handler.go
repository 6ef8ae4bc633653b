package v1

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/civic_issue_tracker/internal/apperrors"
	"github.com/shenikar/civic_issue_tracker/internal/config"
	"github.com/shenikar/civic_issue_tracker/internal/models"
	"github.com/shenikar/civic_issue_tracker/internal/service"
	"github.com/sirupsen/logrus"
)

// multipartOverhead - запас на текстовые поля и заголовки multipart сверх размера файла
const multipartOverhead = 64 << 10

type Handler struct {
	issueService service.IssueService
	limiter      CreationLimiter
	logger       *logrus.Logger
	validate     *validator.Validate
	cfg          *config.Config
}

func NewHandler(issueService service.IssueService, limiter CreationLimiter, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		issueService: issueService,
		limiter:      limiter,
		logger:       logger,
		validate:     validator.New(),
		cfg:          cfg,
	}
}

// @Summary Report a new issue
// @Description Create a new civic issue with an optional photo. The issue starts as Pending, priority is derived from the category.
// @Tags Issues
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category" Enums(Pothole, Garbage, Streetlight, Water, Other)
// @Param longitude formData number true "Longitude"
// @Param latitude formData number true "Latitude"
// @Param address formData string false "Address"
// @Param image formData file false "Photo of the issue"
// @Param image_handle formData string false "Handle of an already uploaded photo"
// @Success 201 {object} IssueResponse
// @Failure 400 {object} ErrorResponse "Invalid form or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 429 {object} ErrorResponse "Creation rate limit exceeded"
// @Failure 503 {object} ErrorResponse "Blob store unavailable"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /issues [post]
func (h *Handler) createIssue(c *gin.Context) {
	log := h.logger.WithField("method", "createIssue")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes+multipartOverhead)

	var form CreateIssueForm
	if err := c.ShouldBind(&form); err != nil {
		log.WithError(err).Warn("Failed to bind form")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.validate.Struct(form); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	input := FormToNewIssueInput(form)
	fileHeader, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// изображение необязательно
	case err != nil:
		log.WithError(err).Warn("Failed to read image part")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image upload", Field: "image"})
		return
	default:
		image, err := readUpload(fileHeader, h.cfg.MaxUploadBytes)
		if err != nil {
			writeError(c, log, err)
			return
		}
		input.Image = image
	}

	issue, err := h.issueService.CreateIssue(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToIssueResponse(issue))
}

// @Summary Get a list of issues
// @Description Get a paginated list of issues, newest first, with optional filters.
// @Tags Issues
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(Pending, Verified, In Progress, Resolved, Rejected)
// @Param category query string false "Category filter" Enums(Pothole, Garbage, Streetlight, Water, Other)
// @Param reportedBy query string false "Reporter id filter"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {object} IssueListResponse
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /issues [get]
func (h *Handler) listIssues(c *gin.Context) {
	log := h.logger.WithField("method", "listIssues")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(models.DefaultPageSize)))
	pagination := models.Pagination{Page: page, PageSize: pageSize}.Normalize()

	var filter models.IssueFilter
	if v, ok := c.GetQuery("status"); ok {
		status := models.Status(v)
		filter.Status = &status
	}
	if v, ok := c.GetQuery("category"); ok {
		category := models.Category(v)
		filter.Category = &category
	}
	if v, ok := c.GetQuery("reportedBy"); ok {
		filter.ReportedBy = &v
	}

	issues, err := h.issueService.ListIssues(c.Request.Context(), actorFrom(c), filter, pagination)
	if err != nil {
		writeError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, IssueListResponse{
		Items:    ModelsToIssueResponses(issues),
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	})
}

// @Summary Get issue by ID
// @Description Get a single issue by its ID.
// @Tags Issues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Success 200 {object} IssueResponse
// @Failure 400 {object} ErrorResponse "Invalid issue ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Issue not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /issues/{id} [get]
func (h *Handler) getIssue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid issue ID", Field: "id"})
		return
	}
	log := h.logger.WithField("method", "getIssue").WithField("id", id)

	issue, err := h.issueService.GetIssue(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIssueResponse(issue))
}

// @Summary Change issue status
// @Description Move an issue along its lifecycle. Admin only. Allowed: Pending→Verified, Verified→In Progress, In Progress→Resolved, Pending→Rejected, Verified→Rejected.
// @Tags Issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} IssueResponse
// @Failure 400 {object} ErrorResponse "Invalid issue ID, body or status"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not an admin"
// @Failure 404 {object} ErrorResponse "Issue not found"
// @Failure 409 {object} ErrorResponse "Illegal transition, body carries current and attempted status"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /issues/{id}/status [put]
func (h *Handler) updateIssueStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid issue ID", Field: "id"})
		return
	}
	log := h.logger.WithField("method", "updateIssueStatus").WithField("id", id)

	var input UpdateStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	issue, err := h.issueService.UpdateIssueStatus(c.Request.Context(), actorFrom(c), id, models.Status(input.Status))
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIssueResponse(issue))
}

// @Summary Delete an issue
// @Description Permanently delete an issue and its photo. Allowed for admins and the reporter.
// @Tags Issues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Invalid issue ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Neither admin nor reporter"
// @Failure 404 {object} ErrorResponse "Issue not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /issues/{id} [delete]
func (h *Handler) deleteIssue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid issue ID", Field: "id"})
		return
	}
	log := h.logger.WithField("method", "deleteIssue").WithField("id", id)

	if err := h.issueService.DeleteIssue(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Find issues nearby
// @Description Find issues within a radius (meters, up to 100 km) of a point, nearest first.
// @Tags Issues
// @Produce json
// @Security BearerAuth
// @Param longitude path number true "Longitude"
// @Param latitude path number true "Latitude"
// @Param distance path number true "Radius in meters"
// @Param limit query int false "Maximum number of results" default(50)
// @Success 200 {array} NearbyIssueResponse
// @Failure 400 {object} ErrorResponse "Invalid coordinates or radius"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 503 {object} ErrorResponse "Geo index unavailable"
// @Router /issues/nearby/{longitude}/{latitude}/{distance} [get]
func (h *Handler) nearbyIssues(c *gin.Context) {
	log := h.logger.WithField("method", "nearbyIssues")

	var center models.Point
	var radius float64
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"longitude", &center.Longitude},
		{"latitude", &center.Latitude},
		{"distance", &radius},
	} {
		v, err := strconv.ParseFloat(c.Param(p.name), 64)
		if err != nil {
			writeError(c, log, apperrors.Validation(p.name, "must be a number"))
			return
		}
		*p.dst = v
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	nearby, err := h.issueService.NearbyIssues(c.Request.Context(), actorFrom(c), center, radius, limit)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToNearbyResponses(nearby))
}

// @Summary Get issue statistics
// @Description Totals by status and category, recent count and daily trend. Admin only.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not an admin"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /issues/admin/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	report, err := h.issueService.GetStats(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelToStatsResponse(report))
}

// @Summary Count issues by dimension
// @Description Number of issues per status or per category, every value present. Admin only.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param dimension path string true "Dimension" Enums(status, category)
// @Success 200 {object} map[string]int
// @Failure 400 {object} ErrorResponse "Unknown dimension"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not an admin"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /issues/admin/stats/{dimension} [get]
func (h *Handler) countBy(c *gin.Context) {
	log := h.logger.WithField("method", "countBy")

	counts, err := h.issueService.CountBy(c.Request.Context(), actorFrom(c), models.Dimension(c.Param("dimension")))
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readUpload читает файл из формы, не больше max байт
func readUpload(fileHeader *multipart.FileHeader, max int64) (*models.ImageUpload, error) {
	if fileHeader.Size > max {
		return nil, apperrors.Validation("image", "must not exceed %d bytes", max)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.Validation("image", "could not open upload: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, apperrors.Validation("image", "could not read upload: %v", err)
	}
	if int64(len(data)) > max {
		return nil, apperrors.Validation("image", "must not exceed %d bytes", max)
	}
	return &models.ImageUpload{Data: data, ContentType: fileHeader.Header.Get("Content-Type")}, nil
}

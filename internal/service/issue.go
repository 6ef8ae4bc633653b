package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/civic_issue_tracker/internal/apperrors"
	"github.com/shenikar/civic_issue_tracker/internal/config"
	"github.com/shenikar/civic_issue_tracker/internal/geo"
	"github.com/shenikar/civic_issue_tracker/internal/models"
	"github.com/shenikar/civic_issue_tracker/internal/policy"
	"github.com/shenikar/civic_issue_tracker/internal/webhook"
	"github.com/sirupsen/logrus"
)

const (
	DefaultNearbyLimit = 50
	MaxNearbyLimit     = 200
)

type issueService struct {
	repo      IssueRepository
	geoIndex  GeoIndex
	cache     IssueCache
	blobs     BlobStore
	publisher webhook.WebhookPublisher
	stats     *StatsAggregator
	logger    *logrus.Logger
	cfg       *config.Config
	validate  *validator.Validate
	now       func() time.Time
}

func NewIssueService(
	repo IssueRepository,
	geoIndex GeoIndex,
	cache IssueCache,
	blobs BlobStore,
	publisher webhook.WebhookPublisher,
	logger *logrus.Logger,
	cfg *config.Config,
) IssueService {
	return &issueService{
		repo:      repo,
		geoIndex:  geoIndex,
		cache:     cache,
		blobs:     blobs,
		publisher: publisher,
		stats:     NewStatsAggregator(repo, cfg.StatsRecentWindow, cfg.StatsTrendDays),
		logger:    logger,
		cfg:       cfg,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// CreateIssue создает обращение. Если переданы байты изображения, сначала пишет их в хранилище файлов;
// при ошибке записи в БД загруженный файл удаляется, чтобы не оставлять сирот.
func (s *issueService) CreateIssue(ctx context.Context, actor models.Actor, input models.NewIssueInput) (*models.Issue, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "issue",
		"method":   "CreateIssue",
		"actor_id": actor.ID,
		"category": input.Category,
	})
	log.Info("Attempting to create a new issue")

	if !policy.CanPerform(actor, policy.OpCreate, nil) {
		log.Warn("Actor is not allowed to create issues")
		return nil, apperrors.Forbidden(string(policy.OpCreate), actor.ID)
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Address = strings.TrimSpace(input.Address)
	input.ImageHandle = strings.TrimSpace(input.ImageHandle)
	if err := s.validateNewIssue(input); err != nil {
		log.WithError(err).Warn("Issue input rejected")
		return nil, err
	}

	issue := &models.Issue{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    input.Location,
		Address:     input.Address,
		Image:       input.ImageHandle,
		ReportedBy:  actor.ID,
		Status:      models.StatusPending,
		Priority:    models.PriorityFor(input.Category),
	}

	var storedHandle string
	if input.Image != nil {
		handle, err := s.blobs.Store(ctx, input.Image.Data, input.Image.ContentType)
		if err != nil {
			if apperrors.IsValidation(err) {
				log.WithError(err).Warn("Uploaded image rejected")
				return nil, err
			}
			log.WithError(err).Error("Failed to store uploaded image")
			return nil, apperrors.Dependency("blob store", err)
		}
		storedHandle = handle
		issue.Image = handle
	}

	if err := s.repo.Create(ctx, issue); err != nil {
		log.WithError(err).Error("Failed to create issue in repository")
		if storedHandle != "" {
			s.reclaimBlob(ctx, log, storedHandle)
		}
		return nil, fmt.Errorf("service: could not create issue: %w", err)
	}

	log = log.WithField("issue_id", issue.ID)
	s.refreshCache(ctx, log, issue)
	s.publish(ctx, log, webhook.WebhookEvent{
		Type:    webhook.EventIssueCreated,
		IssueID: issue.ID.String(),
		ActorID: actor.ID,
		Status:  issue.Status,
		Issue:   issue,
	})

	log.WithField("priority", issue.Priority).Info("Issue created successfully")
	return issue, nil
}

// GetIssue получает обращение по ID, сначала из кеша
func (s *issueService) GetIssue(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Issue, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "issue",
		"method":   "GetIssue",
		"issue_id": id,
	})

	if id == uuid.Nil {
		return nil, apperrors.Validation("id", "must be a non-nil UUID")
	}
	if !policy.CanPerform(actor, policy.OpReadOne, nil) {
		return nil, apperrors.Forbidden(string(policy.OpReadOne), actor.ID)
	}

	cached, err := s.cache.Get(ctx, id)
	switch {
	case apperrors.IsNotFound(err):
		log.Debug("Issue is marked as deleted in cache")
		return nil, err
	case err != nil:
		log.WithError(err).Warn("Failed to read issue from cache, falling back to database")
	case cached != nil:
		log.Debug("Issue served from cache")
		return cached, nil
	}

	issue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get issue in repository")
		return nil, fmt.Errorf("service: could not get issue: %w", err)
	}

	if err := s.cache.Fill(ctx, issue); err != nil {
		log.WithError(err).Warn("Failed to fill issue cache")
	}
	return issue, nil
}

// ListIssues возвращает обращения по фильтру, новые первыми
func (s *issueService) ListIssues(ctx context.Context, actor models.Actor, filter models.IssueFilter, page models.Pagination) ([]*models.Issue, error) {
	page = page.Normalize()
	log := s.logger.WithFields(logrus.Fields{
		"service":   "issue",
		"method":    "ListIssues",
		"page":      page.Page,
		"page_size": page.PageSize,
	})

	if !policy.CanPerform(actor, policy.OpList, nil) {
		return nil, apperrors.Forbidden(string(policy.OpList), actor.ID)
	}
	if err := validateFilter(filter); err != nil {
		log.WithError(err).Warn("Invalid list filter")
		return nil, err
	}

	issues, err := s.repo.List(ctx, filter, page)
	if err != nil {
		log.WithError(err).Error("Failed to list issues from repository")
		return nil, fmt.Errorf("service: could not list issues: %w", err)
	}

	log.WithField("count", len(issues)).Info("Issues listed successfully")
	return issues, nil
}

// UpdateIssueStatus переводит обращение в новый статус.
// Сначала проверяется роль, затем допустимость перехода, затем выполняется условное обновление.
func (s *issueService) UpdateIssueStatus(ctx context.Context, actor models.Actor, id uuid.UUID, status models.Status) (*models.Issue, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "issue",
		"method":   "UpdateIssueStatus",
		"issue_id": id,
		"actor_id": actor.ID,
		"status":   status,
	})
	log.Info("Attempting to update issue status")

	if !policy.CanPerform(actor, policy.OpUpdateStatus, nil) {
		log.Warn("Actor is not allowed to change issue status")
		return nil, apperrors.Forbidden(string(policy.OpUpdateStatus), actor.ID)
	}
	if id == uuid.Nil {
		return nil, apperrors.Validation("id", "must be a non-nil UUID")
	}
	if !status.Valid() {
		return nil, apperrors.Validation("status", "unknown status %q", status)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update status of a missing issue")
		return nil, fmt.Errorf("service: could not load issue for status update: %w", err)
	}

	if !models.CanTransition(current.Status, status) {
		log.WithField("current_status", current.Status).Warn("Illegal status transition")
		return nil, apperrors.Conflict(string(current.Status), string(status))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, status)
	if err != nil {
		log.WithError(err).Warn("Failed to update issue status in repository")
		return nil, fmt.Errorf("service: could not update issue status: %w", err)
	}

	s.refreshCache(ctx, log, updated)
	s.publish(ctx, log, webhook.WebhookEvent{
		Type:           webhook.EventIssueStatusChanged,
		IssueID:        id.String(),
		ActorID:        actor.ID,
		Status:         updated.Status,
		PreviousStatus: current.Status,
		Issue:          updated,
	})

	log.Info("Issue status updated successfully")
	return updated, nil
}

// DeleteIssue удаляет обращение; разрешено администратору и автору обращения
func (s *issueService) DeleteIssue(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "issue",
		"method":   "DeleteIssue",
		"issue_id": id,
		"actor_id": actor.ID,
	})
	log.Info("Attempting to delete issue")

	if id == uuid.Nil {
		return apperrors.Validation("id", "must be a non-nil UUID")
	}
	if !actor.Authenticated() {
		return apperrors.Forbidden(string(policy.OpDelete), actor.ID)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to delete a missing issue")
		return fmt.Errorf("service: could not load issue for delete: %w", err)
	}

	if !policy.CanPerform(actor, policy.OpDelete, existing) {
		log.Warn("Actor is neither admin nor reporter")
		return apperrors.Forbidden(string(policy.OpDelete), actor.ID)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to delete issue in repository")
		return fmt.Errorf("service: could not delete issue: %w", err)
	}

	if err := s.cache.Forget(ctx, id); err != nil {
		log.WithError(err).Error("Failed to mark issue as deleted in cache")
	}
	if deleted.Image != "" {
		s.reclaimBlob(ctx, log, deleted.Image)
	}
	s.publish(ctx, log, webhook.WebhookEvent{
		Type:           webhook.EventIssueDeleted,
		IssueID:        id.String(),
		ActorID:        actor.ID,
		PreviousStatus: deleted.Status,
	})

	log.Info("Issue deleted successfully")
	return nil
}

// NearbyIssues находит обращения в радиусе от точки, ближайшие первыми
func (s *issueService) NearbyIssues(ctx context.Context, actor models.Actor, center models.Point, radiusMeters float64, limit int) ([]*models.NearbyIssue, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "issue",
		"method":    "NearbyIssues",
		"longitude": center.Longitude,
		"latitude":  center.Latitude,
		"radius":    radiusMeters,
	})

	if !policy.CanPerform(actor, policy.OpList, nil) {
		return nil, apperrors.Forbidden(string(policy.OpList), actor.ID)
	}
	if err := geo.ValidatePoint(center); err != nil {
		return nil, err
	}
	if err := geo.ValidateRadius(radiusMeters); err != nil {
		return nil, err
	}
	if limit < 1 || limit > MaxNearbyLimit {
		limit = DefaultNearbyLimit
	}

	nearby, err := s.geoIndex.Nearby(ctx, center, radiusMeters, limit)
	if err != nil {
		log.WithError(err).Error("Geo index query failed")
		return nil, apperrors.Dependency("geo index", err)
	}

	log.WithField("count", len(nearby)).Info("Nearby search completed")
	return nearby, nil
}

// GetStats собирает статистику; доступно только администратору
func (s *issueService) GetStats(ctx context.Context, actor models.Actor) (*models.StatsReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "issue",
		"method":   "GetStats",
		"actor_id": actor.ID,
	})

	if !policy.CanPerform(actor, policy.OpViewStats, nil) {
		log.Warn("Actor is not allowed to view stats")
		return nil, apperrors.Forbidden(string(policy.OpViewStats), actor.ID)
	}

	report, err := s.stats.Report(ctx, s.now())
	if err != nil {
		log.WithError(err).Error("Failed to collect stats")
		return nil, fmt.Errorf("service: could not collect stats: %w", err)
	}
	return report, nil
}

// CountBy возвращает количество обращений по значениям измерения, все значения перечисления присутствуют
func (s *issueService) CountBy(ctx context.Context, actor models.Actor, dimension models.Dimension) (map[string]int, error) {
	if !policy.CanPerform(actor, policy.OpViewStats, nil) {
		return nil, apperrors.Forbidden(string(policy.OpViewStats), actor.ID)
	}
	if !dimension.Valid() {
		return nil, apperrors.Validation("dimension", "must be one of status, category")
	}

	counts, err := s.repo.AggregateBy(ctx, dimension)
	if err != nil {
		return nil, fmt.Errorf("service: could not aggregate by %s: %w", dimension, err)
	}
	return zeroFilled(dimension, counts), nil
}

func (s *issueService) validateNewIssue(input models.NewIssueInput) error {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperrors.Validation(strings.ToLower(fe.Field()), "failed on the '%s' rule", fe.Tag())
		}
		return apperrors.Validation("", "%v", err)
	}
	if !input.Category.Valid() {
		return apperrors.Validation("category", "unknown category %q", input.Category)
	}
	if err := geo.ValidatePoint(input.Location); err != nil {
		return err
	}
	if input.Image != nil && input.ImageHandle != "" {
		return apperrors.Validation("image", "provide either image bytes or an uploaded handle, not both")
	}
	if input.Image != nil && len(input.Image.Data) == 0 {
		return apperrors.Validation("image", "must not be empty")
	}
	if strings.ContainsAny(input.ImageHandle, `/\`) || strings.Contains(input.ImageHandle, "..") {
		return apperrors.Validation("image", "invalid image handle")
	}
	return nil
}

func validateFilter(filter models.IssueFilter) error {
	if filter.Status != nil && !filter.Status.Valid() {
		return apperrors.Validation("status", "unknown status %q", *filter.Status)
	}
	if filter.Category != nil && !filter.Category.Valid() {
		return apperrors.Validation("category", "unknown category %q", *filter.Category)
	}
	if filter.ReportedBy != nil && strings.TrimSpace(*filter.ReportedBy) == "" {
		return apperrors.Validation("reportedBy", "must not be blank")
	}
	return nil
}

// reclaimBlob удаляет файл вне зависимости от отмены запроса; неудача только логируется
func (s *issueService) reclaimBlob(ctx context.Context, log *logrus.Entry, handle string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), handle); err != nil {
		log.WithError(err).WithField("image", handle).Error("Failed to delete stored image, leaving orphan blob")
		return
	}
	log.WithField("image", handle).Info("Stored image deleted")
}

func (s *issueService) refreshCache(ctx context.Context, log *logrus.Entry, issue *models.Issue) {
	if err := s.cache.Put(ctx, issue); err != nil {
		log.WithError(err).Error("Failed to refresh issue cache")
	}
}

func (s *issueService) publish(ctx context.Context, log *logrus.Entry, event webhook.WebhookEvent) {
	event.Timestamp = s.now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("event_type", event.Type).Error("Failed to publish webhook event")
	}
}

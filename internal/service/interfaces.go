package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/civic_issue_tracker/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// IssueRepository определяет контракт хранилища обращений
type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	List(ctx context.Context, filter models.IssueFilter, page models.Pagination) ([]*models.Issue, error)
	// UpdateStatus меняет статус, только если текущий статус все еще равен from
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.Status) (*models.Issue, error)
	// Delete удаляет запись и возвращает ее последнее состояние
	Delete(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	AggregateBy(ctx context.Context, dimension models.Dimension) (map[string]int, error)
	CollectStats(ctx context.Context, recentSince, trendSince time.Time) (*models.StatsSnapshot, error)
}

// GeoIndex - поиск обращений в радиусе, по возрастанию расстояния
type GeoIndex interface {
	Nearby(ctx context.Context, center models.Point, radiusMeters float64, limit int) ([]*models.NearbyIssue, error)
}

// IssueCache - кеш отдельных обращений.
// Get возвращает (nil, nil) при промахе и NotFoundError, если запись недавно удалена.
type IssueCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	// Fill кладет запись, только если ключа еще нет (заполнение после чтения)
	Fill(ctx context.Context, issue *models.Issue) error
	// Put перезаписывает запись после подтвержденного изменения
	Put(ctx context.Context, issue *models.Issue) error
	// Forget оставляет метку удаления
	Forget(ctx context.Context, id uuid.UUID) error
}

// BlobStore - внешнее хранилище загруженных файлов
type BlobStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, handle string) error
}

// IssueService определяет контракт бизнес-логики жизненного цикла обращений
type IssueService interface {
	CreateIssue(ctx context.Context, actor models.Actor, input models.NewIssueInput) (*models.Issue, error)
	ListIssues(ctx context.Context, actor models.Actor, filter models.IssueFilter, page models.Pagination) ([]*models.Issue, error)
	GetIssue(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Issue, error)
	UpdateIssueStatus(ctx context.Context, actor models.Actor, id uuid.UUID, status models.Status) (*models.Issue, error)
	DeleteIssue(ctx context.Context, actor models.Actor, id uuid.UUID) error
	NearbyIssues(ctx context.Context, actor models.Actor, center models.Point, radiusMeters float64, limit int) ([]*models.NearbyIssue, error)
	GetStats(ctx context.Context, actor models.Actor) (*models.StatsReport, error)
	CountBy(ctx context.Context, actor models.Actor, dimension models.Dimension) (map[string]int, error)
}

package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/civic_issue_tracker/internal/models"
)

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

const (
	webhookQueueKey = "webhook_events"
)

// EventType - тип события жизненного цикла обращения
type EventType string

const (
	EventIssueCreated       EventType = "issue.created"
	EventIssueStatusChanged EventType = "issue.status_changed"
	EventIssueDeleted       EventType = "issue.deleted"
)

// WebhookEvent - структура для данных вебхука
type WebhookEvent struct {
	Type           EventType     `json:"type"`
	IssueID        string        `json:"issue_id"`
	ActorID        string        `json:"actor_id"`
	Status         models.Status `json:"status,omitempty"`
	PreviousStatus models.Status `json:"previous_status,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
	Issue          *models.Issue `json:"issue,omitempty"` // Снимок обращения после изменения, для удаления пустой
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH в паре с BRPOP в воркере дает FIFO
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}

// NopPublisher отбрасывает события; используется, когда WEBHOOK_URL не задан
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, WebhookEvent) error { return nil }

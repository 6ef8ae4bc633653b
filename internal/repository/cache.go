package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/civic_issue_tracker/internal/apperrors"
	"github.com/shenikar/civic_issue_tracker/internal/models"
)

// deletedMarker хранится вместо JSON удаленного обращения
const deletedMarker = "deleted"

// putScript записывает запись, только если в ключе нет метки удаления
// и нет записи с той же или более новой версией.
// KEYS[1] - ключ, ARGV[1] - значение, ARGV[2] - версия, ARGV[3] - метка удаления, ARGV[4] - TTL в мс.
var putScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == ARGV[3] then
	return 0
end
if current then
	local ok, entry = pcall(cjson.decode, current)
	if ok and type(entry) == 'table' and tonumber(entry.version) and tonumber(entry.version) >= tonumber(ARGV[2]) then
		return 0
	end
end
if tonumber(ARGV[4]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[4])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// cacheEntry - значение в Redis; версия равна updated_at в микросекундах
type cacheEntry struct {
	Version int64         `json:"version"`
	Issue   *models.Issue `json:"issue"`
}

func marshalEntry(issue *models.Issue) ([]byte, error) {
	val, err := json.Marshal(cacheEntry{Version: issue.UpdatedAt.UnixMicro(), Issue: issue})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal issue for cache: %w", err)
	}
	return val, nil
}

// IssueCache кеширует отдельные обращения в Redis.
// Писатель после коммита обновляет ключ, если его версия новее; читатель только заполняет пустой ключ (SETNX).
type IssueCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewIssueCache(redisClient *redis.Client, ttl time.Duration) *IssueCache {
	return &IssueCache{redisClient: redisClient, ttl: ttl}
}

func issueKey(id uuid.UUID) string {
	return fmt.Sprintf("issue:%s", id.String())
}

// Get пытается получить обращение из Redis
func (c *IssueCache) Get(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	val, err := c.redisClient.Get(ctx, issueKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get issue from cache: %w", err)
	}
	if string(val) == deletedMarker {
		return nil, apperrors.NotFound("issue", id.String())
	}

	var entry cacheEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issue from cache: %w", err)
	}
	return entry.Issue, nil
}

// Fill сохраняет прочитанное из базы обращение, если ключ еще пуст
func (c *IssueCache) Fill(ctx context.Context, issue *models.Issue) error {
	val, err := marshalEntry(issue)
	if err != nil {
		return err
	}
	if err := c.redisClient.SetNX(ctx, issueKey(issue.ID), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to fill issue cache: %w", err)
	}
	return nil
}

// Put сохраняет обращение после подтвержденного изменения.
// Запоздавшая запись не перетирает метку удаления и более новую версию.
func (c *IssueCache) Put(ctx context.Context, issue *models.Issue) error {
	val, err := marshalEntry(issue)
	if err != nil {
		return err
	}
	args := []any{val, issue.UpdatedAt.UnixMicro(), deletedMarker, c.ttl.Milliseconds()}
	if err := putScript.Run(ctx, c.redisClient, []string{issueKey(issue.ID)}, args...).Err(); err != nil {
		return fmt.Errorf("failed to set issue in cache: %w", err)
	}
	return nil
}

// Forget заменяет запись меткой удаления на время жизни кеша
func (c *IssueCache) Forget(ctx context.Context, id uuid.UUID) error {
	if err := c.redisClient.Set(ctx, issueKey(id), deletedMarker, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark issue as deleted in cache: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript увеличивает счетчик и ставит TTL, если его нет, за один вызов.
// Возвращает {значение счетчика, оставшийся TTL в мс}.
var incrScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// refundScript уменьшает существующий счетчик, не создавая новый ключ
var refundScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]))
if count and count > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

// CreationCounter считает созданные пользователем обращения в скользящем окне
type CreationCounter struct {
	redisClient *redis.Client
	limit       int
	window      time.Duration
}

func NewCreationCounter(redisClient *redis.Client, limit int, window time.Duration) *CreationCounter {
	return &CreationCounter{redisClient: redisClient, limit: limit, window: window}
}

func creationKey(actorID string) string {
	return fmt.Sprintf("issue_limit:%s", actorID)
}

// Allow увеличивает счетчик пользователя и сообщает, не превышен ли лимит.
// Если превышен, возвращает время до сброса счетчика. limit <= 0 отключает проверку.
func (c *CreationCounter) Allow(ctx context.Context, actorID string) (bool, time.Duration, error) {
	if c.limit <= 0 {
		return true, 0, nil
	}

	res, err := incrScript.Run(ctx, c.redisClient, []string{creationKey(actorID)}, c.window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment creation counter: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected creation counter reply: %v", res)
	}

	count, retryAfter := res[0], time.Duration(res[1])*time.Millisecond
	if count > int64(c.limit) {
		return false, retryAfter, nil
	}
	return true, 0, nil
}

// Refund возвращает единицу лимита, если обращение так и не было создано
func (c *CreationCounter) Refund(ctx context.Context, actorID string) error {
	if c.limit <= 0 {
		return nil
	}
	if err := refundScript.Run(ctx, c.redisClient, []string{creationKey(actorID)}).Err(); err != nil {
		return fmt.Errorf("failed to refund creation counter: %w", err)
	}
	return nil
}

package v1

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=ratelimit.go -destination=mocks/mock_ratelimit.go -package=mocks

// CreationLimiter ограничивает количество создаваемых пользователем обращений
type CreationLimiter interface {
	Allow(ctx context.Context, actorID string) (bool, time.Duration, error)
	// Refund возвращает единицу лимита за запрос, который не создал обращение
	Refund(ctx context.Context, actorID string) error
}

// IssueRateLimitMiddleware отвечает 429, если пользователь исчерпал лимит создания обращений.
// Отклоненный запрос лимит не расходует. Ошибка хранилища счетчиков не блокирует запрос.
func IssueRateLimitMiddleware(limiter CreationLimiter, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		if !actor.Authenticated() {
			c.Next()
			return
		}

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), actor.ID)
		if err != nil {
			log.WithError(err).WithField("actor_id", actor.ID).Error("Failed to check creation rate limit")
			c.Next()
			return
		}
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			log.WithField("actor_id", actor.ID).Warn("Issue creation rate limit exceeded")
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:      "rate limit exceeded",
				RetryAfter: seconds,
			})
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := limiter.Refund(context.WithoutCancel(c.Request.Context()), actor.ID); err != nil {
				log.WithError(err).WithField("actor_id", actor.ID).Error("Failed to refund creation rate limit")
			}
		}
	}
}

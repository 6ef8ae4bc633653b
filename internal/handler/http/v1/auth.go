package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shenikar/civic_issue_tracker/internal/config"
	"github.com/shenikar/civic_issue_tracker/internal/models"
	"github.com/sirupsen/logrus"
)

const actorContextKey = "actor"

// ActorClaims - утверждения токена провайдера идентификации: sub - id пользователя, role - его роль
type ActorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ActorAuthMiddleware - middleware, превращающий Bearer JWT (HS256) в Actor запроса
func ActorAuthMiddleware(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Warn("Bearer token missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authorization token required"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims := &ActorClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			log.WithError(err).Warn("Token validation failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid authorization token"})
			return
		}

		actor := models.Actor{ID: claims.Subject, Role: models.Role(claims.Role)}
		if !actor.Authenticated() {
			log.WithField("role", claims.Role).Warn("Token carries no usable identity")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token claims"})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// actorFrom возвращает актора, установленного middleware; без него - пустой (неаутентифицированный) актор
func actorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}

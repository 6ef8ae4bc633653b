package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/civic_issue_tracker/internal/apperrors"
	"github.com/sirupsen/logrus"
)

// writeError переводит типизированную ошибку ядра в HTTP-ответ
func writeError(c *gin.Context, log *logrus.Entry, err error) {
	var (
		validationErr *apperrors.ValidationError
		forbiddenErr  *apperrors.ForbiddenError
		notFoundErr   *apperrors.NotFoundError
		conflictErr   *apperrors.ConflictError
		dependencyErr *apperrors.DependencyError
	)

	switch {
	case errors.As(err, &validationErr):
		log.WithError(err).Warn("Request rejected by validation")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Message, Field: validationErr.Field})
	case errors.As(err, &forbiddenErr):
		log.WithError(err).Warn("Request forbidden by policy")
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.As(err, &notFoundErr):
		log.WithError(err).Warn("Issue not found")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		log.WithError(err).Warn("Illegal status transition")
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:     "illegal status transition",
			Current:   conflictErr.Current,
			Attempted: conflictErr.Attempted,
		})
	case errors.As(err, &dependencyErr):
		log.WithError(err).Error("Dependency unavailable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: dependencyErr.Dependency + " unavailable"})
	default:
		log.WithError(err).Error("Unexpected error in service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

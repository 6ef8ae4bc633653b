package v1

import (
	"github.com/gin-gonic/gin"
)

// uploadsPath - публичный путь, по которому раздаются загруженные изображения
const uploadsPath = "/uploads"

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	issues := api.Group("/issues", ActorAuthMiddleware(h.cfg, h.logger))
	{
		issues.POST("", IssueRateLimitMiddleware(h.limiter, h.logger), h.createIssue)
		issues.GET("", h.listIssues)
		issues.GET("/:id", h.getIssue)
		issues.PUT("/:id/status", h.updateIssueStatus)
		issues.DELETE("/:id", h.deleteIssue)
		issues.GET("/nearby/:longitude/:latitude/:distance", h.nearbyIssues)

		// Маршруты администратора; роль проверяет политика в сервисе
		issues.GET("/admin/stats", h.getStats)
		issues.GET("/admin/stats/:dimension", h.countBy)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}

// RegisterUploads раздает загруженные изображения из каталога хранилища
func RegisterUploads(router *gin.Engine, dir string) {
	router.Static(uploadsPath, dir)
}

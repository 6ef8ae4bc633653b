package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/shenikar/civic_issue_tracker/internal/blob"
	"github.com/shenikar/civic_issue_tracker/internal/config"
	v1 "github.com/shenikar/civic_issue_tracker/internal/handler/http/v1"
	"github.com/shenikar/civic_issue_tracker/internal/repository"
	"github.com/shenikar/civic_issue_tracker/internal/service"
	"github.com/shenikar/civic_issue_tracker/internal/webhook"
	"github.com/shenikar/civic_issue_tracker/pkg/logger"
	"github.com/shenikar/civic_issue_tracker/pkg/postgres"
	redisclient "github.com/shenikar/civic_issue_tracker/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/civic_issue_tracker/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// creationWindow - окно, в котором действует лимит создания обращений
const creationWindow = 24 * time.Hour

// @title Civic Issue Tracker API
// @version 1.0
// @description Citizens report civic issues with a photo and a location; admins triage them by proximity, status and priority.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
		migrationURL = strings.Replace(migrationURL, "postgresql://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://"+cfg.MigrationsPath,
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Хранилище изображений
	blobStore, err := blob.NewLocalStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}

	// Издатель вебхуков и воркер доставки; без WEBHOOK_URL события не публикуются
	var webhookPublisher webhook.WebhookPublisher = webhook.NopPublisher{}
	if cfg.WebhookURL != "" {
		webhookPublisher = webhook.NewRedisWebhookPublisher(redisClient)
		webhook.NewWebhookWorker(redisClient, log, cfg).Start(ctx)
	} else {
		log.Info("WEBHOOK_URL is not set, webhook events are disabled")
	}

	// Инициализация репозиториев
	issueRepo := repository.NewIssueRepository(dbpool)
	issueCache := repository.NewIssueCache(redisClient, cfg.CacheTTL)
	creationCounter := repository.NewCreationCounter(redisClient, cfg.IssueDailyLimit, creationWindow)

	// Инициализация сервисов
	issueService := service.NewIssueService(issueRepo, issueRepo, issueCache, blobStore, webhookPublisher, log, cfg)

	// Инициализация хэндлеров
	handler := v1.NewHandler(issueService, creationCounter, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	v1.RegisterUploads(router, blobStore.Dir())

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}

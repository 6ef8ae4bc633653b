package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/civic_issue_tracker/internal/config"
)

// NewPostgresDB создает пул соединений PostgreSQL и проверяет, что доступно расширение PostGIS
func NewPostgresDB(ctx context.Context, appCfg *config.Config) (*pgxpool.Pool, error) {
	cfgPool, err := pgxpool.ParseConfig(appCfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	cfgPool.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(ctx, cfgPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем соединение с базой данных
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	var postgisVersion string
	if err := dbpool.QueryRow(ctx, "SELECT postgis_lib_version()").Scan(&postgisVersion); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("postgis extension is not available: %w", err)
	}

	return dbpool, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/civic_issue_tracker/internal/apperrors"
	"github.com/shenikar/civic_issue_tracker/internal/models"
)

const issueColumns = `
	id,
	title,
	description,
	category,
	ST_X(location::geometry) AS longitude,
	ST_Y(location::geometry) AS latitude,
	address,
	image,
	reported_by,
	status,
	priority,
	created_at,
	updated_at`

// aggregateColumns - белый список колонок для группировки, имя колонки подставляется в SQL
var aggregateColumns = map[models.Dimension]string{
	models.DimensionStatus:   "status",
	models.DimensionCategory: "category",
}

// querier - общее подмножество пула и транзакции
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IssueRepository хранит обращения в PostgreSQL/PostGIS и отвечает на запросы поиска в радиусе
type IssueRepository struct {
	db *pgxpool.Pool
}

func NewIssueRepository(db *pgxpool.Pool) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create создает новую запись об обращении; id и обе метки времени назначает база одним запросом
func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	query := `
		INSERT INTO issues (title, description, category, location, address, image, reported_by, status, priority)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		string(issue.Category),
		issue.Location.Longitude,
		issue.Location.Latitude,
		issue.Address,
		issue.Image,
		issue.ReportedBy,
		string(issue.Status),
		string(issue.Priority),
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}
	return nil
}

// GetByID возвращает обращение по его UUID
func (r *IssueRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	return getByID(ctx, r.db, id)
}

func getByID(ctx context.Context, q querier, id uuid.UUID) (*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1;`

	issue, err := scanIssue(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("issue", id.String())
		}
		return nil, fmt.Errorf("failed to get issue by id: %w", err)
	}
	return issue, nil
}

// List возвращает обращения по фильтру с пагинацией, новые первыми
func (r *IssueRepository) List(ctx context.Context, filter models.IssueFilter, page models.Pagination) ([]*models.Issue, error) {
	page = page.Normalize()

	var (
		conditions []string
		args       []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.ReportedBy != nil {
		args = append(args, *filter.ReportedBy)
		conditions = append(conditions, fmt.Sprintf("reported_by = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, page.PageSize, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM issues
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d;
	`, issueColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	issues := make([]*models.Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue row: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return issues, nil
}

// UpdateStatus выполняет compare-and-swap: строка меняется, только если статус все еще равен from.
// updated_at строго возрастает даже при совпадении часов.
func (r *IssueRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.Status) (*models.Issue, error) {
	query := `
		UPDATE issues SET
			status = $3,
			updated_at = GREATEST(clock_timestamp(), updated_at + INTERVAL '1 microsecond')
		WHERE id = $1 AND status = $2
		RETURNING ` + issueColumns + `;
	`
	issue, err := scanIssue(r.db.QueryRow(ctx, query, id, string(from), string(to)))
	if err == nil {
		return issue, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update issue status: %w", err)
	}

	// Ни одна строка не обновлена: записи нет, либо статус успели изменить
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, apperrors.Conflict(string(current.Status), string(to))
}

// Delete удаляет обращение и возвращает его последнее состояние (нужно для удаления файла)
func (r *IssueRepository) Delete(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	query := `DELETE FROM issues WHERE id = $1 RETURNING ` + issueColumns + `;`

	issue, err := scanIssue(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("issue", id.String())
		}
		return nil, fmt.Errorf("failed to delete issue: %w", err)
	}
	return issue, nil
}

// AggregateBy возвращает количество обращений по значениям измерения
func (r *IssueRepository) AggregateBy(ctx context.Context, dimension models.Dimension) (map[string]int, error) {
	return aggregateBy(ctx, r.db, dimension)
}

func aggregateBy(ctx context.Context, q querier, dimension models.Dimension) (map[string]int, error) {
	column, ok := aggregateColumns[dimension]
	if !ok {
		return nil, apperrors.Validation("dimension", "unknown dimension %q", dimension)
	}

	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*) FROM issues GROUP BY %[1]s;`, column)
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate issues by %s: %w", dimension, err)
	}
	return collectCounts(rows)
}

// CollectStats читает все счетчики статистики в одной транзакции REPEATABLE READ,
// поэтому отчет соответствует одному моменту времени
func (r *IssueRepository) CollectStats(ctx context.Context, recentSince, trendSince time.Time) (*models.StatsSnapshot, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin stats transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	snapshot := &models.StatsSnapshot{}
	if snapshot.ByStatus, err = aggregateBy(ctx, tx, models.DimensionStatus); err != nil {
		return nil, err
	}
	if snapshot.ByCategory, err = aggregateBy(ctx, tx, models.DimensionCategory); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM issues WHERE created_at >= $1;`, recentSince).Scan(&snapshot.RecentCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent issues: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM issues
		WHERE created_at >= $1
		GROUP BY day;
	`, trendSince)
	if err != nil {
		return nil, fmt.Errorf("failed to count issues per day: %w", err)
	}
	if snapshot.Daily, err = collectCounts(rows); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stats transaction: %w", err)
	}
	return snapshot, nil
}

// Nearby находит обращения в радиусе от точки, ближайшие первыми.
// use_spheroid = false: расстояние считается на сфере, как и geo.Distance.
func (r *IssueRepository) Nearby(ctx context.Context, center models.Point, radiusMeters float64, limit int) ([]*models.NearbyIssue, error) {
	query := `
		SELECT ` + issueColumns + `,
			ST_Distance(location, c.center, false) AS distance
		FROM issues,
			(SELECT ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography AS center) AS c
		WHERE ST_DWithin(location, c.center, $3, false)
		ORDER BY distance, id
		LIMIT $4;
	`
	rows, err := r.db.Query(ctx, query, center.Longitude, center.Latitude, radiusMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find issues by location: %w", err)
	}
	defer rows.Close()

	result := make([]*models.NearbyIssue, 0)
	for rows.Next() {
		item := &models.NearbyIssue{}
		item.Issue, err = scanIssue(rows, &item.DistanceMeters)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue row in Nearby: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in Nearby: %w", err)
	}
	return result, nil
}

// scanIssue читает колонки issueColumns и, при необходимости, дополнительные колонки после них
func scanIssue(row pgx.Row, extra ...any) (*models.Issue, error) {
	var (
		issue                      models.Issue
		category, status, priority string
	)
	dest := []any{
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&category,
		&issue.Location.Longitude,
		&issue.Location.Latitude,
		&issue.Address,
		&issue.Image,
		&issue.ReportedBy,
		&status,
		&priority,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	issue.Category = models.Category(category)
	issue.Status = models.Status(status)
	issue.Priority = models.Priority(priority)
	return &issue, nil
}

func collectCounts(rows pgx.Rows) (map[string]int, error) {
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error count iteration: %w", err)
	}
	return counts, nil
}

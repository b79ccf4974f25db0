package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/stratus-tools/bug-advisor/internal/models"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

// UsageOverview is the rolled-up view over a time window, computed in SQL
// so the log table stays the single source of truth.
type UsageOverview struct {
	TotalQueries    int64   `json:"total_queries"`
	AvgResponseTime float64 `json:"avg_response_time"`
	SuccessRate     float64 `json:"success_rate"`
	UniqueUsers     int64   `json:"unique_users"`
}

type ProductCount struct {
	Product string `json:"product"`
	Count   int64  `json:"count"`
}

type QueryLogRepo interface {
	Insert(ctx context.Context, row *models.QueryLog) error
	GetByID(ctx context.Context, id int64) (*models.QueryLog, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.QueryLog, error)
	Overview(ctx context.Context, since time.Time) (*UsageOverview, error)
	CountByProduct(ctx context.Context, since time.Time) ([]ProductCount, error)
	RecentErrors(ctx context.Context, since time.Time, limit int) ([]models.QueryLog, error)
}

type queryLogRepo struct {
	db *gorm.DB
}

func NewQueryLogRepo(db *gorm.DB) QueryLogRepo {
	return &queryLogRepo{db: db}
}

func (r *queryLogRepo) Insert(ctx context.Context, row *models.QueryLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *queryLogRepo) GetByID(ctx context.Context, id int64) (*models.QueryLog, error) {
	var row models.QueryLog
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *queryLogRepo) ListBetween(ctx context.Context, from, to time.Time) ([]models.QueryLog, error) {
	var rows []models.QueryLog
	err := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp ASC").
		Find(&rows).Error
	return rows, err
}

func (r *queryLogRepo) Overview(ctx context.Context, since time.Time) (*UsageOverview, error) {
	var out UsageOverview
	err := r.db.WithContext(ctx).
		Model(&models.QueryLog{}).
		Select(
			"COUNT(*) AS total_queries, " +
				"COALESCE(AVG(response_time_ms), 0) AS avg_response_time, " +
				"COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END) * 100.0 / NULLIF(COUNT(*), 0), 0) AS success_rate, " +
				"COUNT(DISTINCT client_ip) AS unique_users").
		Where("timestamp >= ?", since).
		Scan(&out).Error
	return &out, err
}

func (r *queryLogRepo) CountByProduct(ctx context.Context, since time.Time) ([]ProductCount, error) {
	var rows []ProductCount
	err := r.db.WithContext(ctx).
		Model(&models.QueryLog{}).
		Select("product, COUNT(*) AS count").
		Where("timestamp >= ?", since).
		Group("product").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *queryLogRepo) RecentErrors(ctx context.Context, since time.Time, limit int) ([]models.QueryLog, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.QueryLog
	err := r.db.WithContext(ctx).
		Where("success = ? AND timestamp >= ?", false, since).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

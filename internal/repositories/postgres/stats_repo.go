package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stratus-tools/bug-advisor/internal/models"
)

type StatsRepo interface {
	// Upsert keeps exactly one row per date; concurrent recomputes for
	// the same date serialize on the storage-level conflict target.
	Upsert(ctx context.Context, stat *models.DailyUsageStat) error
	GetByDate(ctx context.Context, date time.Time) (*models.DailyUsageStat, error)
	ListRecent(ctx context.Context, days int) ([]models.DailyUsageStat, error)
}

type statsRepo struct {
	db *gorm.DB
}

func NewStatsRepo(db *gorm.DB) StatsRepo {
	return &statsRepo{db: db}
}

func (r *statsRepo) Upsert(ctx context.Context, stat *models.DailyUsageStat) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_queries", "successful_queries", "avg_response_time",
				"success_rate", "unique_users", "total_errors", "top_products", "updated_at",
			}),
		}).
		Create(stat).Error
}

func (r *statsRepo) GetByDate(ctx context.Context, date time.Time) (*models.DailyUsageStat, error) {
	var row models.DailyUsageStat
	err := r.db.WithContext(ctx).Where("date = ?", date).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *statsRepo) ListRecent(ctx context.Context, days int) ([]models.DailyUsageStat, error) {
	if days <= 0 {
		days = 30
	}
	var rows []models.DailyUsageStat
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Limit(days).
		Find(&rows).Error
	return rows, err
}

package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stratus-tools/bug-advisor/internal/models"
)

type FeedbackSummary struct {
	Total             int64   `json:"total"`
	HelpfulPercentage float64 `json:"helpful_percentage"`
}

type FeedbackRepo interface {
	Insert(ctx context.Context, row *models.Feedback) error
	Summary(ctx context.Context, since time.Time) (*FeedbackSummary, error)
}

type feedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepo(db *gorm.DB) FeedbackRepo {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Insert(ctx context.Context, row *models.Feedback) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *feedbackRepo) Summary(ctx context.Context, since time.Time) (*FeedbackSummary, error) {
	var out FeedbackSummary
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select(
			"COUNT(*) AS total, " +
				"COALESCE(SUM(CASE WHEN helpful THEN 1 ELSE 0 END) * 100.0 / NULLIF(COUNT(*), 0), 0) AS helpful_percentage").
		Where("timestamp >= ?", since).
		Scan(&out).Error
	return &out, err
}

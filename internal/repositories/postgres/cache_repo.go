package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stratus-tools/bug-advisor/internal/models"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

type CacheRepo interface {
	// Lookup returns the row for (hash, product) when it exists and has
	// not expired; utils.ErrNotFound otherwise.
	Lookup(ctx context.Context, queryHash, product string, now time.Time) (*models.CachedResponse, error)
	// IncrementHit bumps hit_count in a single SQL statement so
	// concurrent hits never lose an increment.
	IncrementHit(ctx context.Context, queryHash string) error
	// Upsert replaces any previous row for the hash, expired or not.
	Upsert(ctx context.Context, row *models.CachedResponse) error
}

type cacheRepo struct {
	db *gorm.DB
}

func NewCacheRepo(db *gorm.DB) CacheRepo {
	return &cacheRepo{db: db}
}

func (r *cacheRepo) Lookup(ctx context.Context, queryHash, product string, now time.Time) (*models.CachedResponse, error) {
	var row models.CachedResponse
	err := r.db.WithContext(ctx).
		Where("query_hash = ? AND product = ? AND expires_at > ?", queryHash, product, now).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *cacheRepo) IncrementHit(ctx context.Context, queryHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.CachedResponse{}).
		Where("query_hash = ?", queryHash).
		UpdateColumn("hit_count", gorm.Expr("hit_count + 1")).Error
}

func (r *cacheRepo) Upsert(ctx context.Context, row *models.CachedResponse) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "query_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"product", "response_text", "confidence", "created_at", "expires_at", "hit_count"}),
		}).
		Create(row).Error
}

package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stratus-tools/bug-advisor/internal/models"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

type ConfigRepo interface {
	Get(ctx context.Context, key string) (*models.ConfigEntry, error)
	GetAll(ctx context.Context) ([]models.ConfigEntry, error)
	Upsert(ctx context.Context, entry *models.ConfigEntry) error
}

type configRepo struct {
	db *gorm.DB
}

func NewConfigRepo(db *gorm.DB) ConfigRepo {
	return &configRepo{db: db}
}

func (r *configRepo) Get(ctx context.Context, key string) (*models.ConfigEntry, error) {
	var row models.ConfigEntry
	err := r.db.WithContext(ctx).Where("config_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *configRepo) GetAll(ctx context.Context) ([]models.ConfigEntry, error) {
	var rows []models.ConfigEntry
	err := r.db.WithContext(ctx).Order("config_key ASC").Find(&rows).Error
	return rows, err
}

func (r *configRepo) Upsert(ctx context.Context, entry *models.ConfigEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"config_value", "updated_at", "updated_by"}),
		}).
		Create(entry).Error
}

package config

import (
	"errors"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/stratus-tools/bug-advisor/internal/models"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

// defaultConfig is seeded once; existing rows are never overwritten so
// admin edits survive restarts.
var defaultConfig = []models.ConfigEntry{
	{Key: models.ConfigKeyAPIKey, Value: "", Description: "Anthropic API key used for bug analysis", IsEncrypted: true},
	{Key: models.ConfigKeyLLMProvider, Value: "anthropic", Description: "LLM provider (anthropic or vertex)"},
	{Key: models.ConfigKeyCacheTTLHours, Value: "24", Description: "Response cache TTL in hours"},
	{Key: models.ConfigKeyRateLimitPerHour, Value: "100", Description: "Max analyze requests per client IP per hour"},
	{Key: models.ConfigKeyMaxQueryLength, Value: "2000", Description: "Maximum query length in characters"},
	{Key: models.ConfigKeyMaintenanceMode, Value: "false", Description: "Reject analyze requests while true"},
}

// Bootstrap migrates the schema, seeds default config rows, and creates
// the initial admin account from ADMIN_USERNAME / ADMIN_PASSWORD.
func Bootstrap(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.QueryLog{},
		&models.Feedback{},
		&models.ConfigEntry{},
		&models.DailyUsageStat{},
		&models.CachedResponse{},
		&models.AdminUser{},
	); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, entry := range defaultConfig {
		var existing models.ConfigEntry
		err := db.Where("config_key = ?", entry.Key).Take(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		entry.UpdatedAt = now
		entry.UpdatedBy = "system"
		if err := db.Create(&entry).Error; err != nil {
			return err
		}
	}

	return seedAdmin(db, now)
}

func seedAdmin(db *gorm.DB, now time.Time) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		// No seed credentials configured; an operator can insert the row
		// out of band.
		return nil
	}

	var count int64
	if err := db.Model(&models.AdminUser{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return db.Create(&models.AdminUser{
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
	}).Error
}

package models

import "time"

// Config keys managed through the admin API.
const (
	ConfigKeyAPIKey           = "anthropic_api_key"
	ConfigKeyLLMProvider      = "llm_provider"
	ConfigKeyCacheTTLHours    = "cache_ttl_hours"
	ConfigKeyRateLimitPerHour = "rate_limit_per_hour"
	ConfigKeyMaxQueryLength   = "max_query_length"
	ConfigKeyMaintenanceMode  = "maintenance_mode"
)

type ConfigEntry struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Key         string    `gorm:"column:config_key;type:text;uniqueIndex" json:"key"`
	Value       string    `gorm:"column:config_value;type:text" json:"value"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	IsEncrypted bool      `gorm:"column:is_encrypted" json:"is_encrypted"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
	UpdatedBy   string    `gorm:"column:updated_by;type:text" json:"updated_by"`
}

func (ConfigEntry) TableName() string { return "api_config" }

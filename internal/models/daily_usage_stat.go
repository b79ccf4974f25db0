package models

import (
	"time"

	"gorm.io/datatypes"
)

// DailyUsageStat is a derived aggregate: exactly one row per UTC calendar
// date, replaced on every recompute. The query log stays the source of
// truth, so any row here can be rebuilt from a full rescan of that date.
type DailyUsageStat struct {
	ID                int64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Date              time.Time      `gorm:"column:date;type:date;uniqueIndex" json:"date"`
	TotalQueries      int64          `gorm:"column:total_queries" json:"total_queries"`
	SuccessfulQueries int64          `gorm:"column:successful_queries" json:"successful_queries"`
	AvgResponseTime   float64        `gorm:"column:avg_response_time" json:"avg_response_time"`
	SuccessRate       float64        `gorm:"column:success_rate" json:"success_rate"`
	UniqueUsers       int64          `gorm:"column:unique_users" json:"unique_users"`
	TotalErrors       int64          `gorm:"column:total_errors" json:"total_errors"`
	TopProducts       datatypes.JSON `gorm:"column:top_products;type:jsonb" json:"top_products"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (DailyUsageStat) TableName() string { return "daily_usage_stats" }

package models

import "time"

// CachedResponse is the durable cache tier. Rows past expires_at are
// logical misses; they stay on disk until the next store for the same
// hash overwrites them.
type CachedResponse struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	QueryHash    string    `gorm:"column:query_hash;type:text;uniqueIndex" json:"query_hash"`
	Product      string    `gorm:"column:product;type:text;index" json:"product"`
	ResponseText string    `gorm:"column:response_text;type:text" json:"response_text"`
	Confidence   float64   `gorm:"column:confidence" json:"confidence"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	ExpiresAt    time.Time `gorm:"column:expires_at;type:timestamptz;index" json:"expires_at"`
	HitCount     int64     `gorm:"column:hit_count" json:"hit_count"`
}

func (CachedResponse) TableName() string { return "response_cache" }

func (r *CachedResponse) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

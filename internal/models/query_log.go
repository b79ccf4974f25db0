package models

import "time"

// QueryLog is the append-only record of every analysis request. Rows are
// never updated; daily stats are derived from them and can always be
// rebuilt by rescanning.
type QueryLog struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Product        string    `gorm:"column:product;type:text;index" json:"product"`
	QueryText      string    `gorm:"column:query_text;type:text" json:"query_text"`
	QueryLength    int       `gorm:"column:query_length" json:"query_length"`
	QueryHash      string    `gorm:"column:query_hash;type:text;index" json:"query_hash"`
	ResponseTimeMs *int64    `gorm:"column:response_time_ms" json:"response_time_ms"`
	Success        bool      `gorm:"column:success" json:"success"`
	Cached         bool      `gorm:"column:cached" json:"cached"`
	ErrorMessage   string    `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	ClientIP       string    `gorm:"column:client_ip;type:text;index" json:"client_ip"`
	UserAgent      string    `gorm:"column:user_agent;type:text" json:"user_agent"`
	Timestamp      time.Time `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
}

func (QueryLog) TableName() string { return "query_logs" }

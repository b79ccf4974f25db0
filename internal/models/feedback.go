package models

import "time"

// Feedback is a weak reference to a query log row: the query may be purged
// later, so query_id is not a foreign key and query_hash is copied in.
type Feedback struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QueryID      *int64    `gorm:"column:query_id" json:"query_id,omitempty"`
	QueryHash    string    `gorm:"column:query_hash;type:text" json:"query_hash,omitempty"`
	Helpful      *bool     `gorm:"column:helpful" json:"helpful"`
	FeedbackText string    `gorm:"column:feedback_text;type:text" json:"feedback_text,omitempty"`
	ClientIP     string    `gorm:"column:client_ip;type:text" json:"client_ip,omitempty"`
	Timestamp    time.Time `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
}

func (Feedback) TableName() string { return "feedback" }

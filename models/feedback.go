package models

import (
	"strings"
	"time"
)

// Feedback is a user correction attached to a served task/response pair.
// Rows are append-only: there is no update or delete path.
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Task      string    `gorm:"type:text" json:"task"`
	Response  string    `gorm:"type:text" json:"response"`
	Feedback  string    `gorm:"type:text" json:"feedback"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName keeps the table name used by the fine-tune dataset export.
func (Feedback) TableName() string {
	return "feedback"
}

// FeedbackCreate request payload for POST /api/feedback
type FeedbackCreate struct {
	Task     string `json:"task" binding:"required"`
	Response string `json:"response" binding:"required"`
	Feedback string `json:"feedback" binding:"required"`
}

// Normalize trims whitespace from input fields
func (f *FeedbackCreate) Normalize() {
	f.Task = strings.TrimSpace(f.Task)
	f.Response = strings.TrimSpace(f.Response)
	f.Feedback = strings.TrimSpace(f.Feedback)
}

package models

import (
	"strings"
	"time"
)

// HistoryEntry is one served /api/execute request.
type HistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Task      string    `gorm:"type:text" json:"task"`
	Response  string    `gorm:"type:text" json:"response"`
	Model     string    `gorm:"size:255" json:"model,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (HistoryEntry) TableName() string {
	return "history"
}

// HistoryRead is the public shape of a history row
type HistoryRead struct {
	Task     string `json:"task"`
	Response string `json:"response"`
}

// TaskRequest request payload for POST /api/execute
type TaskRequest struct {
	Task string `json:"task" binding:"required"`
}

// Normalize trims whitespace from the task
func (t *TaskRequest) Normalize() {
	t.Task = strings.TrimSpace(t.Task)
}

package models

import "time"

// KnowledgeItem is a scraped document kept by the local vector backend.
type KnowledgeItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text" json:"content"`
	URL       string    `gorm:"size:2048;index" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

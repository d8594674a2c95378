package models

import "time"

// Setting is a persisted key/value pair. The fine-tune runner keeps the
// promoted model name here so it survives restarts.
type Setting struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Setting) TableName() string { return "settings" }

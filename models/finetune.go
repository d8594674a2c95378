package models

import "time"

// Fine-tune run states
const (
	FineTuneRunning   = "running"
	FineTuneSucceeded = "succeeded"
	FineTuneFailed    = "failed"
)

// FineTuneRun records one pass of the feedback-driven fine-tune loop.
type FineTuneRun struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Status      string `gorm:"size:16;index" json:"status"`
	Trainer     string `gorm:"size:32" json:"trainer"`
	BaseModel   string `gorm:"size:255" json:"base_model"`
	ResultModel string `gorm:"size:255" json:"result_model,omitempty"`
	JobID       string `gorm:"size:255" json:"job_id,omitempty"`
	DatasetPath string `gorm:"size:1024" json:"dataset_path"`
	Examples    int    `json:"examples"`
	// LastFeedbackID is the highest feedback row included in the dataset.
	LastFeedbackID uint `json:"last_feedback_id"`
	// Promoted is set when ResultModel became the served model.
	Promoted   bool       `json:"promoted"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time  `gorm:"index" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

package service

import (
	"taskmind/crawler"
	"taskmind/finetune"
	"taskmind/llm"
	"taskmind/scheduler"
	"taskmind/state"
	"taskmind/vector"

	"gorm.io/gorm"
)

// Services is the global service container
type Services struct {
	Task      *TaskService
	Feedback  *FeedbackService
	History   *HistoryService
	Knowledge *KnowledgeService
	FineTune  *finetune.Runner
	// Schedule is set once the periodic jobs are registered; nil in one-shot modes.
	Schedule *scheduler.Scheduler
}

// GlobalServices is the global service instance
var GlobalServices *Services

// Deps are the collaborators the services are built from
type Deps struct {
	DB          *gorm.DB
	State       *state.AppState
	LLM         llm.ModelClient
	Vector      vector.Store
	Spider      *crawler.Spider
	SourcesFile string
	Trainer     finetune.Trainer
	FineTune    finetune.Options
}

// NewServices builds a container without touching GlobalServices
func NewServices(d Deps) *Services {
	trainer := d.Trainer
	if trainer == nil {
		trainer = finetune.LocalTrainer{}
	}
	return &Services{
		Task:      NewTaskService(d.DB, d.LLM, d.Vector, d.State),
		Feedback:  NewFeedbackService(d.DB),
		History:   NewHistoryService(d.DB),
		Knowledge: NewKnowledgeService(d.Vector, d.Spider, d.SourcesFile),
		FineTune:  finetune.NewRunner(d.DB, trainer, d.State, d.FineTune),
	}
}

// InitServices initializes all services
func InitServices(d Deps) {
	GlobalServices = NewServices(d)
}

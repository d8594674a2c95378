package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"taskmind/core"
	"taskmind/crawler"
	"taskmind/llm"
	"taskmind/metrics"
	"taskmind/models"
	"taskmind/prompt"
	"taskmind/state"
	"taskmind/vector"
	"time"

	"gorm.io/gorm"
)

// TaskService runs a task through the prompt template and the language model
type TaskService struct {
	db     *gorm.DB
	llm    llm.ModelClient
	vector vector.Store
	state  *state.AppState
}

// NewTaskService constructs a task service
func NewTaskService(db *gorm.DB, client llm.ModelClient, store vector.Store, appState *state.AppState) *TaskService {
	if store == nil {
		store = vector.Noop{}
	}
	return &TaskService{db: db, llm: client, vector: store, state: appState}
}

// Execute builds the prompt for task, generates a response with the active
// model and appends the pair to history.
func (s *TaskService) Execute(ctx context.Context, task string) (string, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		metrics.Get().TasksTotal.WithLabelValues("rejected").Inc()
		return "", wrapSentinel("task must not be empty", ErrEmptyTask)
	}

	taskContext := s.lookupContext(ctx, task)
	log.Printf("Processing task: %s with context: %s", task, taskContext)

	model := s.state.ActiveModel()
	start := time.Now()
	resp, err := s.llm.GenerateWithModel(ctx, model, prompt.Format(task, taskContext))
	metrics.Get().LLMLatency.WithLabelValues(s.state.Provider()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Get().TasksTotal.WithLabelValues("llm_error").Inc()
		core.LogErrorWithContext("TaskService", "LLM generation failed", err.Error(), map[string]interface{}{
			"model":    model,
			"provider": s.state.Provider(),
		})
		return "", core.NewUpstreamError("language model request failed", err)
	}

	entry := models.HistoryEntry{Task: task, Response: resp.Text, Model: resp.Model}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		metrics.Get().TasksTotal.WithLabelValues("store_error").Inc()
		core.LogErrorWithDetail("TaskService", "Failed to append history", err.Error())
		return "", fmt.Errorf("failed to append history: %w", err)
	}
	metrics.Get().HistoryTotal.Inc()
	metrics.Get().TasksTotal.WithLabelValues("ok").Inc()

	return resp.Text, nil
}

// lookupContext asks the vector store for the nearest document. Lookup
// failures are logged and fall back to the mock scrape.
func (s *TaskService) lookupContext(ctx context.Context, task string) string {
	text, err := s.vector.Near(ctx, task)
	if err != nil {
		metrics.Get().VectorErrors.WithLabelValues("near").Inc()
		core.LogWarn("TaskService", fmt.Sprintf("Vector lookup via %s failed", s.vector.Name()), err.Error())
		log.Printf("Warning: vector lookup failed: %v", err)
	}
	if strings.TrimSpace(text) != "" {
		return text
	}
	return crawler.MockScrape()[0].Content
}

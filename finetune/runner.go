// Package finetune turns collected feedback into a training dataset and
// swaps the served model once a training job finishes.
package finetune

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"taskmind/config"
	"taskmind/core"
	"taskmind/database"
	"taskmind/llm"
	"taskmind/metrics"
	"taskmind/models"
	"taskmind/state"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRunInProgress     = errors.New("fine-tune run already in progress")
	ErrNotEnoughFeedback = errors.New("not enough feedback to fine-tune")
)

// Options configures a Runner.
type Options struct {
	OutputDir   string
	BaseModel   string
	MinFeedback int
	Epochs      int
}

// OptionsFromConfig reads the FINETUNE_* settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		OutputDir:   cfg.FineTuneOutputDir,
		BaseModel:   cfg.FineTuneBaseModel,
		MinFeedback: cfg.FineTuneMinFeedback,
		Epochs:      cfg.FineTuneEpochs,
	}
}

// Runner executes at most one fine-tune run at a time.
type Runner struct {
	db      *gorm.DB
	trainer Trainer
	state   *state.AppState
	opts    Options

	mu      sync.Mutex
	running bool
}

func NewRunner(db *gorm.DB, trainer Trainer, appState *state.AppState, opts Options) *Runner {
	if opts.OutputDir == "" {
		opts.OutputDir = "./fine_tuned_model"
	}
	if opts.MinFeedback <= 0 {
		opts.MinFeedback = 1
	}
	return &Runner{db: db, trainer: trainer, state: appState, opts: opts}
}

// NewTrainer picks the OpenAI job trainer when the openai provider is
// configured and falls back to the local trainer otherwise. Local results are
// only promoted when the mock client serves requests; any other provider
// would reject the locally named model.
func NewTrainer(cfg *config.Config, client llm.ModelClient) Trainer {
	switch c := client.(type) {
	case *llm.OpenAIClient:
		if cfg.LLMProvider == llm.ProviderOpenAI {
			return NewOpenAITrainer(c.API(), time.Duration(cfg.FineTunePollSeconds)*time.Second)
		}
	case llm.Mock:
		return LocalTrainer{}
	}
	return LocalTrainer{RecordOnly: true}
}

// Running reports whether a run is in progress.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Run trains on all collected feedback once enough new rows arrived since
// the last successful run, and blocks until training ends.
func (r *Runner) Run(ctx context.Context) (*models.FineTuneRun, error) {
	run, examples, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	err = r.finish(ctx, run, examples)
	return run, err
}

// Start performs the same checks as Run and creates the run record, then
// trains in the background. The returned run is still in the running state.
func (r *Runner) Start(ctx context.Context) (*models.FineTuneRun, error) {
	run, examples, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := *run
	go func() {
		_ = r.finish(ctx, run, examples)
	}()
	return &snapshot, nil
}

// begin claims the runner and persists a new run. On success the caller must
// call finish, which releases the runner.
func (r *Runner) begin(ctx context.Context) (*models.FineTuneRun, []Example, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, nil, core.NewBusyError("cannot start fine-tune", ErrRunInProgress)
	}
	r.running = true
	r.mu.Unlock()

	run, examples, err := r.prepare(ctx)
	if err != nil {
		r.release()
		return nil, nil, err
	}
	return run, examples, nil
}

func (r *Runner) release() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *Runner) prepare(ctx context.Context) (*models.FineTuneRun, []Example, error) {
	cursor, err := r.lastCursor(ctx)
	if err != nil {
		return nil, nil, err
	}

	var fresh int64
	if err := r.db.WithContext(ctx).Model(&models.Feedback{}).Where("id > ?", cursor).Count(&fresh).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count feedback: %w", err)
	}
	if fresh < int64(r.opts.MinFeedback) {
		return nil, nil, fmt.Errorf("%w: %d new rows, need %d", ErrNotEnoughFeedback, fresh, r.opts.MinFeedback)
	}

	examples, lastID, err := PrepareDataset(ctx, r.db)
	if err != nil {
		return nil, nil, err
	}

	runID := uuid.NewString()
	run := &models.FineTuneRun{
		ID:             runID,
		Status:         models.FineTuneRunning,
		Trainer:        r.trainer.Name(),
		BaseModel:      r.opts.BaseModel,
		DatasetPath:    filepath.Join(r.opts.OutputDir, runID, "dataset.jsonl"),
		Examples:       len(examples),
		LastFeedbackID: lastID,
		StartedAt:      time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create fine-tune run: %w", err)
	}
	log.Printf("Fine-tune run %s started: %d examples, trainer=%s", run.ID, run.Examples, run.Trainer)
	return run, examples, nil
}

func (r *Runner) finish(ctx context.Context, run *models.FineTuneRun, examples []Example) error {
	defer r.release()

	result, trainErr := r.train(ctx, run, examples)
	finished := time.Now()
	run.FinishedAt = &finished
	run.JobID = result.JobID

	if trainErr != nil {
		run.Status = models.FineTuneFailed
		run.Error = trainErr.Error()
		r.save(run)
		metrics.Get().FineTuneRuns.WithLabelValues(models.FineTuneFailed).Inc()
		core.LogErrorWithDetail("FineTune", fmt.Sprintf("Fine-tune run %s failed", run.ID), trainErr.Error())
		log.Printf("Fine-tune run %s failed: %v", run.ID, trainErr)
		return trainErr
	}

	run.Status = models.FineTuneSucceeded
	run.ResultModel = result.Model
	run.Promoted = !result.RecordOnly
	r.save(run)
	metrics.Get().FineTuneRuns.WithLabelValues(models.FineTuneSucceeded).Inc()

	if result.RecordOnly {
		log.Printf("Fine-tune run %s produced %s; provider %s cannot serve it, keeping %s",
			run.ID, result.Model, r.state.Provider(), r.state.ActiveModel())
		return nil
	}
	if err := database.SetSetting(r.db, database.SettingActiveModel, result.Model); err != nil {
		log.Printf("Warning: failed to persist active model: %v", err)
	}
	prev := r.state.SwapModel(result.Model, finished)
	log.Printf("Fine-tuning complete: %s -> %s", prev, result.Model)
	return nil
}

func (r *Runner) train(ctx context.Context, run *models.FineTuneRun, examples []Example) (TrainResult, error) {
	if err := WriteJSONL(run.DatasetPath, examples); err != nil {
		return TrainResult{}, err
	}
	return r.trainer.Train(ctx, TrainRequest{
		RunID:       run.ID,
		DatasetPath: run.DatasetPath,
		BaseModel:   run.BaseModel,
		Examples:    run.Examples,
		Epochs:      r.opts.Epochs,
	})
}

// save uses a fresh context so a cancelled run still records its outcome.
func (r *Runner) save(run *models.FineTuneRun) {
	if err := r.db.WithContext(context.Background()).Save(run).Error; err != nil {
		log.Printf("Warning: failed to update fine-tune run %s: %v", run.ID, err)
	}
}

func (r *Runner) lastCursor(ctx context.Context) (uint, error) {
	var last models.FineTuneRun
	err := r.db.WithContext(ctx).
		Where("status = ?", models.FineTuneSucceeded).
		Order("started_at desc").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load last fine-tune run: %w", err)
	}
	return last.LastFeedbackID, nil
}

// ListRuns returns the most recent runs first.
func (r *Runner) ListRuns(limit int) ([]models.FineTuneRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.FineTuneRun
	if err := r.db.Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list fine-tune runs: %w", err)
	}
	return runs, nil
}

// RestoreActiveModel applies a model persisted by an earlier run.
func (r *Runner) RestoreActiveModel() {
	model, ok, err := database.GetSetting(r.db, database.SettingActiveModel)
	if err != nil {
		log.Printf("Warning: failed to read active model: %v", err)
		return
	}
	if ok && model != "" {
		r.state.SwapModel(model, time.Time{})
		log.Printf("Restored fine-tuned model: %s", model)
	}
}

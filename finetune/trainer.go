package finetune

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sashabaranov/go-openai"
)

// TrainRequest describes one training job.
type TrainRequest struct {
	RunID       string
	DatasetPath string
	BaseModel   string
	Examples    int
	Epochs      int
}

// TrainResult is the model produced by a job. RecordOnly results are kept in
// the run history but never become the served model.
type TrainResult struct {
	Model      string
	JobID      string
	RecordOnly bool
}

type Trainer interface {
	Name() string
	Train(ctx context.Context, req TrainRequest) (TrainResult, error)
}

// LocalTrainer does no in-process training. It writes a manifest next to the
// dataset for an external training job and names the resulting model.
// RecordOnly is set when the serving provider cannot load that model.
type LocalTrainer struct {
	RecordOnly bool
}

type localManifest struct {
	RunID     string    `json:"run_id"`
	BaseModel string    `json:"base_model"`
	Model     string    `json:"model"`
	Dataset   string    `json:"dataset"`
	Examples  int       `json:"examples"`
	Epochs    int       `json:"epochs"`
	CreatedAt time.Time `json:"created_at"`
}

func (LocalTrainer) Name() string { return "local" }

func (t LocalTrainer) Train(ctx context.Context, req TrainRequest) (TrainResult, error) {
	if err := ctx.Err(); err != nil {
		return TrainResult{}, err
	}

	short := req.RunID
	if len(short) > 8 {
		short = short[:8]
	}
	model := fmt.Sprintf("%s-ft-%s", req.BaseModel, short)

	manifest := localManifest{
		RunID:     req.RunID,
		BaseModel: req.BaseModel,
		Model:     model,
		Dataset:   filepath.Base(req.DatasetPath),
		Examples:  req.Examples,
		Epochs:    req.Epochs,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return TrainResult{}, err
	}
	path := filepath.Join(filepath.Dir(req.DatasetPath), "manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return TrainResult{}, fmt.Errorf("write manifest: %w", err)
	}

	return TrainResult{Model: model, RecordOnly: t.RecordOnly}, nil
}

// OpenAITrainer uploads the dataset and waits for an OpenAI fine-tuning job.
type OpenAITrainer struct {
	client       *openai.Client
	pollInterval time.Duration
}

func NewOpenAITrainer(client *openai.Client, pollInterval time.Duration) *OpenAITrainer {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &OpenAITrainer{client: client, pollInterval: pollInterval}
}

func (t *OpenAITrainer) Name() string { return "openai" }

func (t *OpenAITrainer) Train(ctx context.Context, req TrainRequest) (TrainResult, error) {
	file, err := t.client.CreateFile(ctx, openai.FileRequest{
		FileName: filepath.Base(req.DatasetPath),
		FilePath: req.DatasetPath,
		Purpose:  string(openai.PurposeFineTune),
	})
	if err != nil {
		return TrainResult{}, fmt.Errorf("upload dataset: %w", err)
	}

	jobReq := openai.FineTuningJobRequest{
		TrainingFile: file.ID,
		Model:        req.BaseModel,
	}
	if req.Epochs > 0 {
		jobReq.Hyperparameters = &openai.Hyperparameters{Epochs: req.Epochs}
	}

	job, err := t.client.CreateFineTuningJob(ctx, jobReq)
	if err != nil {
		return TrainResult{}, fmt.Errorf("create fine-tuning job: %w", err)
	}
	log.Printf("finetune: openai job %s created (file %s)", job.ID, file.ID)

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		switch job.Status {
		case "succeeded":
			return TrainResult{Model: job.FineTunedModel, JobID: job.ID}, nil
		case "failed", "cancelled":
			return TrainResult{JobID: job.ID}, fmt.Errorf("fine-tuning job %s %s", job.ID, job.Status)
		}

		select {
		case <-ctx.Done():
			return TrainResult{JobID: job.ID}, ctx.Err()
		case <-ticker.C:
		}

		next, err := t.client.RetrieveFineTuningJob(ctx, job.ID)
		if err != nil {
			return TrainResult{JobID: job.ID}, fmt.Errorf("poll fine-tuning job: %w", err)
		}
		job = next
	}
}

package finetune

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"taskmind/config"
	"taskmind/core"
	"taskmind/database"
	"taskmind/llm"
	"taskmind/models"
	"taskmind/state"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func addFeedback(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		row := models.Feedback{Task: "summarize", Response: "Mock Gemma response: x", Feedback: "be shorter"}
		require.NoError(t, db.Create(&row).Error)
	}
}

func TestWriteJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "dataset.jsonl")
	examples := []Example{
		{Prompt: "a", Response: "r1", Feedback: "f1"},
		{Prompt: "b", Response: "r2", Feedback: "f2"},
	}
	require.NoError(t, WriteJSONL(path, examples))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []chatLine
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var line chatLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "user", lines[0].Messages[0].Role)
	assert.Equal(t, "Task: a\nContext: \nResponse:", lines[0].Messages[0].Content)
	assert.Equal(t, "assistant", lines[0].Messages[1].Role)
	assert.Equal(t, "f1", lines[0].Messages[1].Content)
}

func TestPrepareDatasetCursor(t *testing.T) {
	db := openDB(t)
	addFeedback(t, db, 3)

	examples, lastID, err := PrepareDataset(context.Background(), db)
	require.NoError(t, err)
	assert.Len(t, examples, 3)
	assert.Equal(t, uint(3), lastID)
	assert.Equal(t, "be shorter", examples[0].Feedback)
}

func TestRunnerNotEnoughFeedback(t *testing.T) {
	db := openDB(t)
	addFeedback(t, db, 1)

	r := NewRunner(db, LocalTrainer{}, state.New("mock", "base"), Options{
		OutputDir:   t.TempDir(),
		BaseModel:   "base",
		MinFeedback: 2,
	})
	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrNotEnoughFeedback)

	var count int64
	db.Model(&models.FineTuneRun{}).Count(&count)
	assert.Zero(t, count)
}

func TestRunnerLocalSwapsModel(t *testing.T) {
	db := openDB(t)
	addFeedback(t, db, 2)
	appState := state.New("mock", "base")
	dir := t.TempDir()

	r := NewRunner(db, LocalTrainer{}, appState, Options{OutputDir: dir, BaseModel: "base", MinFeedback: 2})
	run, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.FineTuneSucceeded, run.Status)
	assert.True(t, strings.HasPrefix(run.ResultModel, "base-ft-"))
	assert.True(t, run.Promoted)
	assert.Equal(t, run.ResultModel, appState.ActiveModel())
	assert.FileExists(t, run.DatasetPath)
	assert.FileExists(t, filepath.Join(filepath.Dir(run.DatasetPath), "manifest.json"))

	model, ok, err := database.GetSetting(db, database.SettingActiveModel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, run.ResultModel, model)

	// Rows already trained on do not count towards the next run.
	_, err = r.Run(context.Background())
	require.ErrorIs(t, err, ErrNotEnoughFeedback)

	addFeedback(t, db, 2)
	second, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, second.Examples)

	runs, err := r.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

// claudeOnlyServer answers Anthropic messages calls for claude-x and 404s
// every other model, the way the real API treats unknown model names.
func claudeOnlyServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		if body.Model != "claude-x" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"not_found_error","message":"model not found"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-x",
			"content":[{"type":"text","text":"still served"}],
			"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewTrainerSelection(t *testing.T) {
	cfg := config.Default()

	cfg.LLMProvider = llm.ProviderMock
	assert.Equal(t, LocalTrainer{}, NewTrainer(cfg, llm.Mock{}))

	cfg.LLMProvider = llm.ProviderAnthropic
	assert.Equal(t, LocalTrainer{RecordOnly: true}, NewTrainer(cfg, llm.NewAnthropic("k", "", "claude-x", 16, nil)))

	cfg.LLMProvider = llm.ProviderOpenAI
	assert.IsType(t, &OpenAITrainer{}, NewTrainer(cfg, llm.NewOpenAI("k", "", "gpt", 16, nil)))
}

func TestRunnerLocalKeepsModelForRealProvider(t *testing.T) {
	srv := claudeOnlyServer(t)
	client := llm.NewAnthropic("sk-ant", srv.URL, "claude-x", 64, srv.Client())

	cfg := config.Default()
	cfg.LLMProvider = llm.ProviderAnthropic
	trainer := NewTrainer(cfg, client)

	db := openDB(t)
	addFeedback(t, db, 1)
	appState := state.New(llm.ProviderAnthropic, "claude-x")
	r := NewRunner(db, trainer, appState, Options{OutputDir: t.TempDir(), BaseModel: "google/gemma-2-9b", MinFeedback: 1})

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.FineTuneSucceeded, run.Status)
	assert.False(t, run.Promoted)
	assert.True(t, strings.HasPrefix(run.ResultModel, "google/gemma-2-9b-ft-"))
	assert.Equal(t, "claude-x", appState.ActiveModel())
	assert.True(t, appState.LastFineTune().IsZero())

	_, ok, err := database.GetSetting(db, database.SettingActiveModel)
	require.NoError(t, err)
	assert.False(t, ok, "record-only result must not be persisted as the active model")

	resp, err := client.GenerateWithModel(context.Background(), appState.ActiveModel(), "Task: hi")
	require.NoError(t, err)
	assert.Equal(t, "still served", resp.Text)
}

type blockingTrainer struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingTrainer) Name() string { return "blocking" }

func (b *blockingTrainer) Train(ctx context.Context, req TrainRequest) (TrainResult, error) {
	close(b.started)
	<-b.release
	return TrainResult{}, errors.New("trainer gave up")
}

func TestRunnerSingleFlight(t *testing.T) {
	db := openDB(t)
	addFeedback(t, db, 1)
	appState := state.New("mock", "base")
	trainer := &blockingTrainer{started: make(chan struct{}), release: make(chan struct{})}
	r := NewRunner(db, trainer, appState, Options{OutputDir: t.TempDir(), BaseModel: "base", MinFeedback: 1})

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background())
		done <- err
	}()

	<-trainer.started
	assert.True(t, r.Running())
	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrRunInProgress)
	var busy *core.AppError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, http.StatusConflict, busy.Code)

	close(trainer.release)
	require.Error(t, <-done)
	assert.False(t, r.Running())
	assert.Equal(t, "base", appState.ActiveModel())

	runs, err := r.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.FineTuneFailed, runs[0].Status)
	assert.Equal(t, "trainer gave up", runs[0].Error)
}

func TestRestoreActiveModel(t *testing.T) {
	db := openDB(t)
	require.NoError(t, database.SetSetting(db, database.SettingActiveModel, "base-ft-abc"))
	appState := state.New("mock", "base")

	NewRunner(db, LocalTrainer{}, appState, Options{}).RestoreActiveModel()
	assert.Equal(t, "base-ft-abc", appState.ActiveModel())
}

func TestOpenAITrainerPollsUntilSucceeded(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/files":
			_, _ = w.Write([]byte(`{"id":"file-1","object":"file","purpose":"fine-tune"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/fine_tuning/jobs":
			var req openai.FineTuningJobRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.TrainingFile != "file-1" || req.Model != "gpt-4o-mini" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"id":"ftjob-1","status":"queued"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/fine_tuning/jobs/ftjob-1":
			if atomic.AddInt32(&polls, 1) < 2 {
				_, _ = w.Write([]byte(`{"id":"ftjob-1","status":"running"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"ftjob-1","status":"succeeded","fine_tuned_model":"ft:gpt-4o-mini:taskmind"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	client := openai.NewClientWithConfig(cfg)

	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	require.NoError(t, WriteJSONL(path, []Example{{Prompt: "a", Feedback: "b"}}))

	trainer := NewOpenAITrainer(client, 10*time.Millisecond)
	res, err := trainer.Train(context.Background(), TrainRequest{
		RunID:       "run-1",
		DatasetPath: path,
		BaseModel:   "gpt-4o-mini",
		Examples:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, "ft:gpt-4o-mini:taskmind", res.Model)
	assert.Equal(t, "ftjob-1", res.JobID)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(2))
}

func TestRunnerStartTrainsInBackground(t *testing.T) {
	db := openDB(t)
	addFeedback(t, db, 1)
	appState := state.New("mock", "base")
	r := NewRunner(db, LocalTrainer{}, appState, Options{OutputDir: t.TempDir(), BaseModel: "base", MinFeedback: 1})

	run, err := r.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.FineTuneRunning, run.Status)

	require.Eventually(t, func() bool { return !r.Running() }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, strings.HasPrefix(appState.ActiveModel(), "base-ft-"))

	var stored models.FineTuneRun
	require.NoError(t, db.First(&stored, "id = ?", run.ID).Error)
	assert.Equal(t, models.FineTuneSucceeded, stored.Status)
}

package finetune

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"taskmind/models"
	"taskmind/prompt"

	"gorm.io/gorm"
)

// Example is one feedback row shaped for training.
type Example struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	Feedback string `json:"feedback"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatLine struct {
	Messages []chatMessage `json:"messages"`
}

// PrepareDataset loads every feedback row in insertion order. It also returns
// the highest row ID seen so later runs can count only newer feedback.
func PrepareDataset(ctx context.Context, db *gorm.DB) ([]Example, uint, error) {
	var rows []models.Feedback
	if err := db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("load feedback: %w", err)
	}

	examples := make([]Example, 0, len(rows))
	var lastID uint
	for _, row := range rows {
		examples = append(examples, Example{Prompt: row.Task, Response: row.Response, Feedback: row.Feedback})
		if row.ID > lastID {
			lastID = row.ID
		}
	}
	return examples, lastID, nil
}

// WriteJSONL writes one chat-format training line per example: the formatted
// prompt (without context) as the user turn and the feedback as the assistant turn.
func WriteJSONL(path string, examples []Example) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, ex := range examples {
		line := chatLine{Messages: []chatMessage{
			{Role: "user", Content: prompt.Format(ex.Prompt, "")},
			{Role: "assistant", Content: ex.Feedback},
		}}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("encode example: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

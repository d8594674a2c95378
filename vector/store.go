// Package vector stores scraped documents and looks up context for a task.
// Every backend is best-effort from the caller's point of view.
package vector

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"taskmind/config"
	"time"

	"gorm.io/gorm"
)

const (
	BackendNone     = "none"
	BackendWeaviate = "weaviate"
	BackendLocal    = "local"
)

// Document is one piece of knowledge: text content and where it came from.
type Document struct {
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Store writes documents and returns the content nearest to a query.
// Near returns "" when nothing matches.
type Store interface {
	Put(ctx context.Context, docs []Document) error
	Near(ctx context.Context, text string) (string, error)
	Name() string
}

// New builds the store selected by cfg.VectorBackend.
func New(cfg *config.Config, db *gorm.DB) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.VectorBackend)) {
	case BackendNone, "":
		return Noop{}, nil
	case BackendWeaviate:
		client := &http.Client{Timeout: time.Duration(cfg.VectorTimeoutMS) * time.Millisecond}
		return NewWeaviate(cfg.VectorURL, cfg.VectorClass, client)
	case BackendLocal:
		if db == nil {
			return nil, fmt.Errorf("local vector backend requires a database")
		}
		return NewLocal(db), nil
	default:
		return nil, fmt.Errorf("unknown vector backend: %s", cfg.VectorBackend)
	}
}

// Noop is used when no vector backend is configured.
type Noop struct{}

func (Noop) Put(ctx context.Context, docs []Document) error { return nil }

func (Noop) Near(ctx context.Context, text string) (string, error) { return "", nil }

func (Noop) Name() string { return BackendNone }

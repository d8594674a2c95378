package state

import (
	"sync"
	"time"
)

// AppState holds runtime state shared between request handlers and background jobs
type AppState struct {
	mu           sync.RWMutex
	provider     string
	activeModel  string
	lastFineTune time.Time
}

// Global is the shared application state instance
var Global = &AppState{}

// New creates a state with the configured provider and model
func New(provider, model string) *AppState {
	return &AppState{provider: provider, activeModel: model}
}

// Init resets provider and model, used at startup
func (s *AppState) Init(provider, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = provider
	s.activeModel = model
}

// ActiveModel returns the model new requests are served with
func (s *AppState) ActiveModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeModel
}

// Provider returns the configured LLM provider name
func (s *AppState) Provider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// SwapModel replaces the active model after a successful fine-tune and returns the previous one
func (s *AppState) SwapModel(model string, at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.activeModel
	s.activeModel = model
	s.lastFineTune = at
	return prev
}

// LastFineTune returns when the model was last swapped (zero if never)
func (s *AppState) LastFineTune() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFineTune
}

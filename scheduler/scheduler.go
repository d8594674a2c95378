// Package scheduler runs the periodic crawl and fine-tune jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context) error

// Scheduler wraps a cron instance whose jobs never overlap with themselves.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]cron.EntryID
	started bool
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := cron.PrintfLogger(log.New(log.Writer(), "cron: ", log.LstdFlags))

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers job under name. An empty spec leaves the job disabled and
// returns false.
func (s *Scheduler) Add(name, spec string, job Job) (bool, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		log.Printf("Scheduler: %s disabled (no schedule)", name)
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return false, fmt.Errorf("job %s already scheduled", name)
	}

	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		log.Printf("Scheduler: running %s", name)
		if err := job(s.ctx); err != nil {
			log.Printf("Scheduler: %s failed after %s: %v", name, time.Since(start).Round(time.Millisecond), err)
			return
		}
		log.Printf("Scheduler: %s finished in %s", name, time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		return false, fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}

	s.entries[name] = id
	log.Printf("Scheduler: %s scheduled (%s)", name, spec)
	return true, nil
}

// Jobs returns the names of registered jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// Next returns the next activation time of name, zero if unknown or not started.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Upcoming maps every registered job to its next activation, zero until Start.
func (s *Scheduler) Upcoming() map[string]time.Time {
	out := make(map[string]time.Time)
	for _, name := range s.Jobs() {
		out[name] = s.Next(name)
	}
	return out
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || len(s.entries) == 0 {
		return
	}
	s.started = true
	s.cron.Start()
}

// Stop cancels the job context and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	log.Println("Scheduler stopped")
}

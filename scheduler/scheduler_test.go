package scheduler

import (
	"bytes"
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestAddEmptySpecDisabled(t *testing.T) {
	s := New()
	defer s.Stop()

	added, err := s.Add("crawl", "  ", func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added {
		t.Fatalf("empty schedule should not register a job")
	}
	if len(s.Jobs()) != 0 {
		t.Fatalf("expected no jobs, got %v", s.Jobs())
	}
}

func TestAddInvalidSpec(t *testing.T) {
	s := New()
	defer s.Stop()

	if _, err := s.Add("finetune", "not a cron line", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatalf("expected invalid schedule error")
	}
}

func TestAddDuplicate(t *testing.T) {
	s := New()
	defer s.Stop()

	job := func(ctx context.Context) error { return nil }
	if _, err := s.Add("crawl", "@hourly", job); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Add("crawl", "@daily", job); err == nil {
		t.Fatalf("expected duplicate job error")
	}
}

func TestJobRunsAndStopCancels(t *testing.T) {
	s := New()

	var runs int32
	cancelled := make(chan struct{})
	_, err := s.Add("tick", "@every 1s", func(ctx context.Context) error {
		if atomic.AddInt32(&runs, 1) == 1 {
			<-ctx.Done()
			close(cancelled)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Start()
	if s.Next("tick").IsZero() {
		t.Fatalf("expected next activation once started")
	}

	deadline := time.After(5 * time.Second)
	for atomic.LoadInt32(&runs) == 0 {
		select {
		case <-deadline:
			t.Fatalf("job never ran")
		case <-time.After(50 * time.Millisecond):
		}
	}

	s.Stop()
	select {
	case <-cancelled:
	default:
		t.Fatalf("stop returned before the running job observed cancellation")
	}
}

func TestCronLogsFollowStandardLogger(t *testing.T) {
	var out lockedBuffer
	prev := log.Writer()
	log.SetOutput(&out)
	t.Cleanup(func() { log.SetOutput(prev) })

	s := New()
	defer s.Stop()
	if _, err := s.Add("boom", "@every 1s", func(ctx context.Context) error { panic("job exploded") }); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := s.Upcoming(); len(got) != 1 || !got["boom"].IsZero() {
		t.Fatalf("expected one job without activation before Start, got %v", got)
	}
	s.Start()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "cron: ") {
		if time.Now().After(deadline) {
			t.Fatalf("recovered panic was not logged through the standard logger: %q", out.String())
		}
		time.Sleep(50 * time.Millisecond)
	}
	if !strings.Contains(out.String(), "job exploded") {
		t.Fatalf("expected panic value in log, got %q", out.String())
	}
}

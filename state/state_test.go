package state

import (
	"sync"
	"testing"
	"time"
)

func TestSwapModel(t *testing.T) {
	s := New("mock", "google/gemma-2-9b")
	now := time.Now()

	prev := s.SwapModel("gemma-ft-1", now)
	if prev != "google/gemma-2-9b" {
		t.Fatalf("expected previous model, got %q", prev)
	}
	if s.ActiveModel() != "gemma-ft-1" {
		t.Fatalf("expected swapped model, got %q", s.ActiveModel())
	}
	if !s.LastFineTune().Equal(now) {
		t.Fatalf("expected last fine-tune time to be recorded")
	}
	if s.Provider() != "mock" {
		t.Fatalf("provider changed unexpectedly: %q", s.Provider())
	}
}

func TestConcurrentReadsDuringSwap(t *testing.T) {
	s := New("mock", "m0")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.ActiveModel()
			}
		}()
	}
	for j := 0; j < 100; j++ {
		s.SwapModel("m1", time.Now())
	}
	wg.Wait()
	if s.ActiveModel() != "m1" {
		t.Fatalf("expected m1, got %q", s.ActiveModel())
	}
}

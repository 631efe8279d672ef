package riskapi

import (
	"sync"
	"testing"
)

func TestSequencer(t *testing.T) {
	var s Sequencer

	if s.Current() != 0 {
		t.Errorf("expected zero generation, got %d", s.Current())
	}

	first := s.Next()
	second := s.Next()

	if second <= first {
		t.Errorf("expected increasing generations, got %d then %d", first, second)
	}
	if s.IsCurrent(first) {
		t.Error("older generation must not be current")
	}
	if !s.IsCurrent(second) {
		t.Error("newest generation must be current")
	}
}

func TestSequencerConcurrent(t *testing.T) {
	var s Sequencer
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Next()
		}()
	}
	wg.Wait()

	if s.Current() != 50 {
		t.Errorf("expected 50 generations, got %d", s.Current())
	}
}

package riskapi

import "sync/atomic"

// Sequencer hands out increasing request generations so that a response can be
// checked against the newest request before it is applied.
type Sequencer struct {
	latest atomic.Uint64
}

// Next starts a new generation and returns it
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Current returns the newest generation handed out
func (s *Sequencer) Current() uint64 {
	return s.latest.Load()
}

// IsCurrent reports whether gen is still the newest generation
func (s *Sequencer) IsCurrent(gen uint64) bool {
	return gen == s.latest.Load()
}

package concurrent

import "sync/atomic"

// Sequencer hands out monotonically increasing request numbers for one request kind.
// a response is only worth applying when its number is still the latest one issued.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new sequence number, superseding every earlier one.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Latest returns the most recently issued number (0 when none).
func (s *Sequencer) Latest() uint64 {
	return s.latest.Load()
}

func (s *Sequencer) IsLatest(seq uint64) bool {
	return seq != 0 && s.latest.Load() == seq
}

// Invalidate supersedes every outstanding request without issuing a new one for use.
func (s *Sequencer) Invalidate() {
	s.latest.Add(1)
}

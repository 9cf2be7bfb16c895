package navigation

import (
	"context"
	"strings"

	"github.com/lintang-b-s/Navisafe/pkg/concurrent"
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/util"
	"go.uber.org/zap"
)

// SearchCoordinator turns query text into candidate places and a selected destination.
// it shares the owning session's lock; only the latest lookup may touch the candidates.
type SearchCoordinator struct {
	s        *Session
	searcher PlaceSearcher

	query      string
	candidates []datastructure.Place
	visible    bool
	pending    bool
	err        error
	seq        concurrent.Sequencer
	cancel     context.CancelFunc
}

func newSearchCoordinator(s *Session, searcher PlaceSearcher) *SearchCoordinator {
	return &SearchCoordinator{
		s:        s,
		searcher: searcher,
	}
}

// SetQuery stores text and looks it up. blank text clears the candidates without a lookup.
// the future resolves with ErrSuperseded when a newer query wins the race.
func (c *SearchCoordinator) SetQuery(ctx context.Context, text string) (*concurrent.Future, error) {
	s := c.s
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}

	c.supersedeLocked()
	c.query = text
	c.err = nil
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || c.searcher == nil {
		c.candidates = nil
		c.visible = false
		s.emitLocked(EventQueryChanged, nil)
		s.mu.Unlock()
		return concurrent.Resolved(0, nil), nil
	}

	seq := c.seq.Next()
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.pending = true
	s.emitLocked(EventQueryChanged, nil)
	s.mu.Unlock()

	fut := concurrent.NewFuture(seq)
	err := s.sched.Schedule(func() {
		places, err := c.searcher.Search(reqCtx, trimmed)
		cancel()
		c.applyResults(fut, trimmed, places, err)
	})
	if err != nil {
		cancel()
		c.applyResults(fut, trimmed, nil, err)
	}
	return fut, nil
}

func (c *SearchCoordinator) applyResults(fut *concurrent.Future, query string,
	places []datastructure.Place, err error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !c.seq.IsLatest(fut.Seq()) {
		s.log.Debug("discarding stale search response",
			zap.Uint64("seq", fut.Seq()), zap.String("query", query))
		fut.Resolve(ErrSuperseded)
		return
	}
	c.pending = false
	c.cancel = nil

	if err != nil {
		err = util.WrapErrorf(err, ErrSearchFailed, "search for %q failed: %v", query, err)
		c.candidates = nil
		c.visible = false
		c.err = err
		s.log.Warn("place search failed", zap.String("query", query), zap.Error(err))
		s.emitLocked(EventSearchFailed, err)
		fut.Resolve(err)
		return
	}

	// an empty result still opens the list.
	c.candidates = append([]datastructure.Place(nil), places...)
	c.visible = true
	s.emitLocked(EventCandidatesUpdated, nil)
	fut.Resolve(nil)
}

// SelectCandidate makes place the destination, shows its name as the query and hides the list.
func (c *SearchCoordinator) SelectCandidate(place datastructure.Place) error {
	return c.s.SelectDestination(place)
}

// adoptLocked drops any pending lookup and shows place as the settled query.
func (c *SearchCoordinator) adoptLocked(place datastructure.Place) {
	c.supersedeLocked()
	c.query = place.Name
	c.candidates = nil
	c.visible = false
	c.err = nil
}

// Clear resets the query, the candidates and the destination together.
// an active navigation is stopped first.
func (c *SearchCoordinator) Clear() error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	c.supersedeLocked()
	c.query = ""
	c.candidates = nil
	c.visible = false
	c.err = nil

	if s.state == Navigating {
		s.stopLocked()
		s.emitLocked(EventNavigationStopped, nil)
	}
	if s.state == DestinationSelected {
		s.clearDestinationLocked()
	}
	s.emitLocked(EventSearchCleared, nil)
	return nil
}

func (c *SearchCoordinator) supersedeLocked() {
	c.seq.Invalidate()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.pending = false
}

func (c *SearchCoordinator) fillSnapshotLocked(snap *Snapshot) {
	snap.Query = c.query
	snap.Candidates = append([]datastructure.Place{}, c.candidates...)
	snap.CandidatesVisible = c.visible
	snap.SearchPending = c.pending
	if c.err != nil && snap.Err == nil {
		snap.Err = c.err
	}
}

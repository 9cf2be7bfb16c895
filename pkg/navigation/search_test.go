package navigation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchStaleResponseGuard(t *testing.T) {
	searcher := newGatedSearcher(testPlaces())
	s := newTestSession(t, &fakeRouter{route: testRoute()}, searcher)
	search := s.Search()
	ctx := context.Background()

	ta, err := search.SetQuery(ctx, "Ta")
	require.NoError(t, err)
	taj, err := search.SetQuery(ctx, "Taj")
	require.NoError(t, err)
	tajM, err := search.SetQuery(ctx, "Taj M")
	require.NoError(t, err)
	assert.True(t, s.Snapshot().SearchPending)

	searcher.release("Taj M")
	require.NoError(t, waitFuture(t, tajM))

	searcher.release("Ta")
	searcher.release("Taj")
	assert.ErrorIs(t, waitFuture(t, ta), ErrSuperseded)
	assert.ErrorIs(t, waitFuture(t, taj), ErrSuperseded)

	snap := s.Snapshot()
	assert.Equal(t, "Taj M", snap.Query)
	require.Len(t, snap.Candidates, 1)
	assert.Equal(t, "Taj Mahal", snap.Candidates[0].Name)
	assert.True(t, snap.CandidatesVisible)
	assert.False(t, snap.SearchPending)
}

func TestSearchTajMahal(t *testing.T) {
	s := newTestSession(t, &fakeRouter{route: testRoute()}, instantSearcher{places: testPlaces()})
	search := s.Search()

	fut, err := search.SetQuery(context.Background(), "Taj Mahal")
	require.NoError(t, err)
	require.NoError(t, waitFuture(t, fut))

	snap := s.Snapshot()
	require.Len(t, snap.Candidates, 1)
	place := snap.Candidates[0]
	assert.Equal(t, "Taj Mahal", place.Name)
	assert.Equal(t, "Agra, Uttar Pradesh", place.Address)

	require.NoError(t, search.SelectCandidate(place))
	snap = s.Snapshot()
	assert.Equal(t, DestinationSelected, snap.State)
	require.NotNil(t, snap.Destination)
	assert.Equal(t, "Taj Mahal", snap.Destination.Name)
	assert.Equal(t, "Taj Mahal", snap.Query)
	assert.Empty(t, snap.Candidates)
	assert.False(t, snap.CandidatesVisible)
}

func TestSearchMatchesAddress(t *testing.T) {
	s := newTestSession(t, &fakeRouter{}, instantSearcher{places: testPlaces()})

	fut, err := s.Search().SetQuery(context.Background(), "  mahal ")
	require.NoError(t, err)
	require.NoError(t, waitFuture(t, fut))
	assert.Len(t, s.Snapshot().Candidates, 2)

	fut, err = s.Search().SetQuery(context.Background(), "delhi")
	require.NoError(t, err)
	require.NoError(t, waitFuture(t, fut))
	snap := s.Snapshot()
	require.Len(t, snap.Candidates, 1)
	assert.Equal(t, "India Gate", snap.Candidates[0].Name)
}

func TestSearchNoMatchesKeepsListOpen(t *testing.T) {
	s := newTestSession(t, &fakeRouter{}, instantSearcher{places: testPlaces()})

	fut, err := s.Search().SetQuery(context.Background(), "Eiffel")
	require.NoError(t, err)
	require.NoError(t, waitFuture(t, fut))

	snap := s.Snapshot()
	assert.Equal(t, "Eiffel", snap.Query)
	assert.Empty(t, snap.Candidates)
	assert.True(t, snap.CandidatesVisible)
	assert.False(t, snap.SearchPending)
}

func TestSearchBlankQuery(t *testing.T) {
	searcher := newGatedSearcher(testPlaces())
	s := newTestSession(t, &fakeRouter{}, searcher)
	search := s.Search()

	pending, err := search.SetQuery(context.Background(), "India")
	require.NoError(t, err)

	blank, err := search.SetQuery(context.Background(), "   ")
	require.NoError(t, err)
	require.NoError(t, waitFuture(t, blank))

	searcher.release("India")
	assert.ErrorIs(t, waitFuture(t, pending), ErrSuperseded)

	snap := s.Snapshot()
	assert.Equal(t, "   ", snap.Query)
	assert.Empty(t, snap.Candidates)
	assert.False(t, snap.CandidatesVisible)
	assert.False(t, snap.SearchPending)
}

func TestSearchFailed(t *testing.T) {
	searcher := newGatedSearcher(testPlaces())
	searcher.failOn["Gate"] = errors.New("index offline")
	s := newTestSession(t, &fakeRouter{}, searcher)

	ok, err := s.Search().SetQuery(context.Background(), "India")
	require.NoError(t, err)
	searcher.release("India")
	require.NoError(t, waitFuture(t, ok))
	require.NotEmpty(t, s.Snapshot().Candidates)

	failing, err := s.Search().SetQuery(context.Background(), "Gate")
	require.NoError(t, err)
	searcher.release("Gate")
	assert.ErrorIs(t, waitFuture(t, failing), ErrSearchFailed)

	snap := s.Snapshot()
	assert.Equal(t, "Gate", snap.Query)
	assert.Empty(t, snap.Candidates)
	assert.False(t, snap.CandidatesVisible)
	assert.ErrorIs(t, snap.Err, ErrSearchFailed)
	assert.Equal(t, Idle, snap.State)
}

func TestSelectCandidateSupersedesLookup(t *testing.T) {
	searcher := newGatedSearcher(testPlaces())
	s := newTestSession(t, &fakeRouter{}, searcher)
	search := s.Search()

	fut, err := search.SetQuery(context.Background(), "Palace")
	require.NoError(t, err)
	require.NoError(t, search.SelectCandidate(testPlaces()[2]))

	searcher.release("Palace")
	assert.ErrorIs(t, waitFuture(t, fut), ErrSuperseded)

	snap := s.Snapshot()
	assert.Equal(t, "Gateway of India", snap.Query)
	assert.Empty(t, snap.Candidates)
	assert.Equal(t, "Gateway of India", snap.Destination.Name)
}

func TestSearchClear(t *testing.T) {
	s := newTestSession(t, &fakeRouter{route: testRoute()}, instantSearcher{places: testPlaces()})
	search := s.Search()
	require.NoError(t, s.UpdateOrigin(testOrigin()))

	fut, err := search.SetQuery(context.Background(), "Hawa")
	require.NoError(t, err)
	require.NoError(t, waitFuture(t, fut))
	require.NoError(t, search.SelectCandidate(s.Snapshot().Candidates[0]))
	startNavigating(t, s)

	require.NoError(t, search.Clear())
	snap := s.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Query)
	assert.Empty(t, snap.Candidates)
	assert.Nil(t, snap.Destination)
	assert.Nil(t, snap.CurrentStep)
	require.NotNil(t, snap.Origin)
}

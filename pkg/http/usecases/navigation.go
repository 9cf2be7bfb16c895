package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lintang-b-s/Navisafe/pkg/concurrent"
	"github.com/lintang-b-s/Navisafe/pkg/location"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"github.com/lintang-b-s/Navisafe/pkg/util"
	"go.uber.org/zap"
)

type NavigationConfig struct {
	Session       navigation.Config
	LocateTimeout time.Duration
}

type sessionEntry struct {
	session *navigation.Session
	cancel  context.CancelFunc
}

// NavigationService owns every live navigation session. a session lives from CreateSession
// (screen mount) until DeleteSession (unmount) or Close.
type NavigationService struct {
	log      *zap.Logger
	routes   navigation.RouteProvider
	searcher navigation.PlaceSearcher
	locator  navigation.LocationSource
	pool     *concurrent.WorkerPool
	cfg      NavigationConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

// NewNavigationService. locator may be nil, sessions then wait for PUT origin.
func NewNavigationService(log *zap.Logger, routes navigation.RouteProvider, searcher navigation.PlaceSearcher,
	locator navigation.LocationSource, pool *concurrent.WorkerPool, cfg NavigationConfig) *NavigationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &NavigationService{
		log:      log,
		routes:   routes,
		searcher: searcher,
		locator:  locator,
		pool:     pool,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]sessionEntry),
	}
}

func (ns *NavigationService) CreateSession() *navigation.Session {
	id := uuid.NewString()
	var sched navigation.Scheduler
	if ns.pool != nil {
		sched = ns.pool
	}
	session := navigation.NewSession(id, ns.routes, ns.searcher, sched, ns.log, ns.cfg.Session)

	ctx, cancel := context.WithCancel(ns.ctx)
	ns.mu.Lock()
	ns.sessions[id] = sessionEntry{session: session, cancel: cancel}
	ns.mu.Unlock()

	if ns.locator != nil {
		go func() {
			err := location.Follow(ctx, ns.locator, session, ns.cfg.LocateTimeout, ns.log)
			if err != nil {
				ns.log.Warn("location tracking stopped", zap.String("session_id", id), zap.Error(err))
			}
		}()
	}
	ns.log.Info("navigation session created", zap.String("session_id", id))
	return session
}

func (ns *NavigationService) GetSession(id string) (*navigation.Session, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	entry, ok := ns.sessions[id]
	if !ok {
		return nil, util.WrapErrorf(ErrSessionNotFound, util.ErrNotFound, "session %s not found", id)
	}
	return entry.session, nil
}

func (ns *NavigationService) DeleteSession(id string) error {
	ns.mu.Lock()
	entry, ok := ns.sessions[id]
	delete(ns.sessions, id)
	ns.mu.Unlock()
	if !ok {
		return util.WrapErrorf(ErrSessionNotFound, util.ErrNotFound, "session %s not found", id)
	}

	entry.cancel()
	entry.session.Close()
	ns.log.Info("navigation session deleted", zap.String("session_id", id))
	return nil
}

// StartNavigation requests a route; the provider call outlives the http request that issued it.
func (ns *NavigationService) StartNavigation(id string) (*concurrent.Future, error) {
	session, err := ns.GetSession(id)
	if err != nil {
		return nil, err
	}
	return session.StartNavigation(ns.ctx)
}

func (ns *NavigationService) SetQuery(id, text string) (*concurrent.Future, error) {
	session, err := ns.GetSession(id)
	if err != nil {
		return nil, err
	}
	return session.Search().SetQuery(ns.ctx, text)
}

func (ns *NavigationService) Len() int {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return len(ns.sessions)
}

// Close destroys every session and cancels in-flight provider calls.
func (ns *NavigationService) Close() {
	ns.mu.Lock()
	entries := ns.sessions
	ns.sessions = make(map[string]sessionEntry)
	ns.mu.Unlock()

	for _, e := range entries {
		e.cancel()
		e.session.Close()
	}
	ns.cancel()
}

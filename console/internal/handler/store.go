package handler

import (
	"context"
	"sync"
	"time"

	"github.com/Astemirdum/library-admin/console/internal/console"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store keeps the workspaces of all browser sessions in memory.
type Store struct {
	log  *zap.Logger
	deps console.Deps
	ttl  time.Duration
	now  func() time.Time

	mu         sync.Mutex
	workspaces map[string]*console.Workspace
}

func NewStore(deps console.Deps, ttl time.Duration, log *zap.Logger) *Store {
	return &Store{
		log:        log.Named("store"),
		deps:       deps,
		ttl:        ttl,
		now:        time.Now,
		workspaces: make(map[string]*console.Workspace),
	}
}

// Get returns a live workspace and marks it as used.
func (s *Store) Get(id string) (*console.Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(ws, now) {
		delete(s.workspaces, id)
		go ws.Dispose()
		return nil, false
	}
	ws.Touch(now)
	return ws, true
}

func (s *Store) New() *console.Workspace {
	ws := console.NewWorkspace(uuid.NewString(), s.deps)
	ws.Touch(s.now())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[ws.ID] = ws
	return ws
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	ws, ok := s.workspaces[id]
	delete(s.workspaces, id)
	s.mu.Unlock()
	if ok {
		ws.Dispose()
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}

// Sweep disposes the workspaces idle for longer than the TTL.
func (s *Store) Sweep() int {
	now := s.now()
	var expired []*console.Workspace
	s.mu.Lock()
	for id, ws := range s.workspaces {
		if s.expired(ws, now) {
			expired = append(expired, ws)
			delete(s.workspaces, id)
		}
	}
	s.mu.Unlock()

	for _, ws := range expired {
		ws.Dispose()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("sessions expired", zap.Int("count", n))
			}
		}
	}
}

// Close disposes every workspace.
func (s *Store) Close() {
	s.mu.Lock()
	all := s.workspaces
	s.workspaces = make(map[string]*console.Workspace)
	s.mu.Unlock()
	for _, ws := range all {
		ws.Dispose()
	}
}

func (s *Store) expired(ws *console.Workspace, now time.Time) bool {
	return s.ttl > 0 && now.Sub(ws.LastSeen()) > s.ttl
}

// Package session owns the per-identity state containers. A Session is
// rebuilt from scratch on every identity change: signed out it is backed by
// local storage, signed in it is loaded from the remote store.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
)

// Syncer loads the remote snapshot for id, handing each result to dispatch
// as soon as it arrives.
type Syncer interface {
	Sync(ctx context.Context, id models.Identity, dispatch func(state.Action)) error
}

// LocalStore is the signed-out backing storage.
type LocalStore interface {
	Hydrate(ctx context.Context, log *slog.Logger) ([]state.Action, error)
	Mirror(log *slog.Logger) state.Listener
}

type Session struct {
	mu        sync.Mutex
	identity  *models.Identity
	gen       uint64
	container *state.Container
	local     LocalStore
	syncer    Syncer
	unmirror  func()
	log       *slog.Logger
}

func New(local LocalStore, syncer Syncer, log *slog.Logger) *Session {
	return &Session{
		container: state.NewContainer(log),
		local:     local,
		syncer:    syncer,
		log:       log,
	}
}

// Identity returns the signed-in user, or nil for a guest session.
func (s *Session) Identity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *Session) Snapshot() state.State {
	return s.container.Snapshot()
}

func (s *Session) Dispatch(a state.Action) {
	s.container.Dispatch(a)
}

func (s *Session) Subscribe(l state.Listener) func() {
	return s.container.Subscribe(l)
}

// SetIdentity switches the session to id. A nil id resets the container,
// hydrates it from local storage and starts mirroring changes back. A
// non-nil id stops the mirror, resets the container and runs a full sync.
// Sync results that arrive after a newer SetIdentity or Reset are dropped.
func (s *Session) SetIdentity(ctx context.Context, id *models.Identity) error {
	if id == nil {
		return s.signOut(ctx)
	}

	s.mu.Lock()
	s.stopMirror()
	s.container.Dispatch(state.Reset{})
	s.gen++
	gen := s.gen
	cp := *id
	s.identity = &cp
	s.mu.Unlock()

	s.log.Info("syncing session", "generation", gen)
	return s.syncer.Sync(ctx, cp, s.sink(gen))
}

func (s *Session) signOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopMirror()
	s.container.Dispatch(state.Reset{})
	s.gen++
	s.identity = nil

	actions, err := s.local.Hydrate(ctx, s.log)
	if err != nil {
		return err
	}
	for _, a := range actions {
		s.container.Dispatch(a)
	}
	s.unmirror = s.container.Subscribe(s.local.Mirror(s.log))
	return nil
}

// Reset empties the container and invalidates any sync in flight.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.container.Dispatch(state.Reset{})
}

// sink dispatches only while gen is still the current generation.
func (s *Session) sink(gen uint64) func(state.Action) {
	return func(a state.Action) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			s.log.Debug("dropping stale sync result", "action", a.Name(), "generation", gen)
			return
		}
		s.container.Dispatch(a)
	}
}

func (s *Session) stopMirror() {
	if s.unmirror != nil {
		s.unmirror()
		s.unmirror = nil
	}
}

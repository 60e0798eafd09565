package session

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/GregMSThompson/expenseflow/internal/models"
)

// Manager hands out one Session per signed-in uid plus a shared guest
// Session backed by local storage.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	guest    *Session
	group    singleflight.Group
	local    LocalStore
	syncer   Syncer
	log      *slog.Logger
}

// NewManager builds the manager and hydrates the guest session.
func NewManager(ctx context.Context, local LocalStore, syncer Syncer, log *slog.Logger) (*Manager, error) {
	guest := New(local, syncer, log.With("session", "guest"))
	if err := guest.SetIdentity(ctx, nil); err != nil {
		return nil, err
	}
	return &Manager{
		sessions: map[string]*Session{},
		guest:    guest,
		local:    local,
		syncer:   syncer,
		log:      log,
	}, nil
}

func (m *Manager) Guest() *Session {
	return m.guest
}

// Resolve returns the session for id, creating and syncing it on first use.
// Concurrent first requests for the same uid share one sync. A sync that
// fails part way still yields the session with whatever data did load.
func (m *Manager) Resolve(ctx context.Context, id *models.Identity) (*Session, error) {
	if id == nil {
		return m.guest, nil
	}
	s, _ := m.resolve(ctx, id)
	return s, nil
}

// resolve returns the cached session for id, or creates it and reports the
// error of its first sync.
func (m *Manager) resolve(ctx context.Context, id *models.Identity) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id.UID]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	type result struct {
		session *Session
		err     error
	}
	v, _, _ := m.group.Do(id.UID, func() (any, error) {
		m.mu.RLock()
		s, ok := m.sessions[id.UID]
		m.mu.RUnlock()
		if ok {
			return result{session: s}, nil
		}

		s = New(m.local, m.syncer, m.log.With("uid", id.UID))
		// the sync outlives the request that happened to trigger it
		err := s.SetIdentity(context.WithoutCancel(ctx), id)
		if err != nil {
			m.log.Warn("initial sync incomplete", "uid", id.UID, "err", err)
		}
		m.mu.Lock()
		m.sessions[id.UID] = s
		m.mu.Unlock()
		return result{session: s, err: err}, nil
	})
	r := v.(result)
	return r.session, r.err
}

// Login re-runs the full sync for id, replacing whatever the session held,
// and returns the sync error if any read failed.
func (m *Manager) Login(ctx context.Context, id models.Identity) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id.UID]
	m.mu.RUnlock()
	if !ok {
		s, err := m.resolve(ctx, &id)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := s.SetIdentity(ctx, &id); err != nil {
		return nil, err
	}
	return s, nil
}

// Logout resets and forgets the session for uid. Later requests without
// credentials land on the guest session.
func (m *Manager) Logout(uid string) {
	m.mu.Lock()
	s, ok := m.sessions[uid]
	delete(m.sessions, uid)
	m.mu.Unlock()

	if ok {
		s.Reset()
		m.log.Info("session closed", "uid", uid)
	}
}

package session_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/session"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/helpers"
)

type fakeLocal struct {
	mu       sync.Mutex
	hydrate  []state.Action
	mirrored []string
}

func (f *fakeLocal) Hydrate(context.Context, *slog.Logger) ([]state.Action, error) {
	return f.hydrate, nil
}

func (f *fakeLocal) Mirror(*slog.Logger) state.Listener {
	return func(prev, next state.State) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.mirrored = append(f.mirrored, state.ChangedKeys(prev, next)...)
	}
}

func (f *fakeLocal) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.mirrored...)
}

type fakeSyncer struct {
	calls   atomic.Int32
	actions []state.Action
	err     error
	// wait, when set, blocks Sync until closed
	wait chan struct{}
}

func (f *fakeSyncer) Sync(_ context.Context, _ models.Identity, dispatch func(state.Action)) error {
	f.calls.Add(1)
	if f.wait != nil {
		<-f.wait
	}
	for _, a := range f.actions {
		dispatch(a)
	}
	return f.err
}

func budget(id string) models.Budget {
	return models.Budget{ID: id, Category: "Bills", Limit: 100}
}

func TestSignedOutHydratesAndMirrors(t *testing.T) {
	local := &fakeLocal{hydrate: []state.Action{state.SetBudgets{Budgets: []models.Budget{budget("b1")}}}}
	s := session.New(local, &fakeSyncer{}, helpers.TestLogger())

	require.NoError(t, s.SetIdentity(helpers.TestCtx(), nil))
	assert.Nil(t, s.Identity())
	assert.Len(t, s.Snapshot().Budgets, 1)

	s.Dispatch(state.AddGoal{Goal: models.Goal{ID: "g1"}})
	assert.Equal(t, []string{state.KeyGoals}, local.keys())
}

func TestSignInStopsMirrorAndSyncs(t *testing.T) {
	local := &fakeLocal{hydrate: []state.Action{state.SetBudgets{Budgets: []models.Budget{budget("local")}}}}
	syncer := &fakeSyncer{actions: []state.Action{state.SetBudgets{Budgets: []models.Budget{budget("remote")}}}}
	s := session.New(local, syncer, helpers.TestLogger())
	require.NoError(t, s.SetIdentity(helpers.TestCtx(), nil))

	require.NoError(t, s.SetIdentity(helpers.TestCtx(), &models.Identity{UID: "u1"}))

	require.Len(t, s.Snapshot().Budgets, 1)
	assert.Equal(t, "remote", s.Snapshot().Budgets[0].ID)
	assert.Equal(t, "u1", s.Identity().UID)
	assert.Empty(t, local.keys(), "local storage must not be written while signed in")
}

func TestSyncErrorIsReturned(t *testing.T) {
	syncer := &fakeSyncer{err: errors.New("offline")}
	s := session.New(&fakeLocal{}, syncer, helpers.TestLogger())

	err := s.SetIdentity(helpers.TestCtx(), &models.Identity{UID: "u1"})

	assert.EqualError(t, err, "offline")
}

func TestStaleSyncResultsAreDropped(t *testing.T) {
	syncer := &fakeSyncer{
		wait:    make(chan struct{}),
		actions: []state.Action{state.SetBudgets{Budgets: []models.Budget{budget("stale")}}},
	}
	s := session.New(&fakeLocal{}, syncer, helpers.TestLogger())

	done := make(chan error)
	go func() { done <- s.SetIdentity(context.Background(), &models.Identity{UID: "u1"}) }()

	require.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, timeout, tick)
	s.Reset()
	close(syncer.wait)
	require.NoError(t, <-done)

	assert.Empty(t, s.Snapshot().Budgets)
}

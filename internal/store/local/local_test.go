package local_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/internal/store/local"
	"github.com/GregMSThompson/expenseflow/pkg/helpers"
)

func openStore(t *testing.T) *local.Store {
	t.Helper()
	s, err := local.Open(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func hydrated(t *testing.T, s *local.Store) state.State {
	t.Helper()
	actions, err := s.Hydrate(context.Background(), helpers.TestLogger())
	require.NoError(t, err)

	c := state.NewContainer(helpers.TestLogger())
	for _, a := range actions {
		c.Dispatch(a)
	}
	return c.Snapshot()
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")

	first, err := local.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.SetRaw(context.Background(), "k", `"v"`))
	require.NoError(t, first.Close())

	second, err := local.Open(path)
	require.NoError(t, err)
	defer second.Close()

	raw, ok, err := second.GetRaw(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"v"`, raw)
}

func TestSetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.Set(ctx, state.KeyCategories, []string{"Pets"}))
	require.NoError(t, s.Set(ctx, state.KeyCategories, []string{"Pets", "Travel"}))

	var got []string
	found, err := s.Get(ctx, state.KeyCategories, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"Pets", "Travel"}, got)

	require.NoError(t, s.Remove(ctx, state.KeyCategories))
	found, err = s.Get(ctx, state.KeyCategories, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHydrateEmptyStoreKeepsDefaults(t *testing.T) {
	s := openStore(t)

	assert.Equal(t, state.Initial(), hydrated(t, s))
}

func TestHydrateMalformedValueFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.SetRaw(ctx, state.KeyTransactions, `[{"id":`))
	require.NoError(t, s.SetRaw(ctx, state.KeyCategories, `not json`))
	require.NoError(t, s.Set(ctx, state.KeyGoals, []models.Goal{{ID: "g1", Name: "Bike"}}))

	got := hydrated(t, s)

	assert.Empty(t, got.Transactions)
	assert.Equal(t, models.BuiltinCategories, got.Categories)
	require.Len(t, got.Goals, 1)
	assert.Equal(t, "Bike", got.Goals[0].Name)
}

func TestHydratePartialSettingsAreMergedOverDefaults(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.SetRaw(ctx, state.KeySettings, `{"currency":"EUR"}`))
	require.NoError(t, s.Set(ctx, state.KeyTheme, "light"))

	got := hydrated(t, s).Settings

	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "light", got.Theme)
	assert.Equal(t, models.DefaultWarningThreshold, got.WarningThreshold)
}

func TestMirrorRoundTripsThroughHydrate(t *testing.T) {
	s := openStore(t)
	log := helpers.TestLogger()

	c := state.NewContainer(log)
	unsubscribe := c.Subscribe(s.Mirror(log))

	c.Dispatch(state.AddTransaction{Transaction: models.Transaction{
		ID:     "t1",
		Text:   "Coffee",
		Amount: -3.5,
		Date:   time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
		Owner:  models.PersonalOwner(""),
	}})
	c.Dispatch(state.AddBudget{Budget: models.Budget{ID: "b1", Category: "Bills", Limit: 200}})
	c.Dispatch(state.UpdateSettings{Patch: models.SettingsPatch{Theme: helpers.Ptr("light")}})
	unsubscribe()

	// not mirrored after unsubscribe
	c.Dispatch(state.AddCategory{Category: "Pets"})

	got := hydrated(t, s)

	assert.Equal(t, c.Snapshot().Transactions, got.Transactions)
	assert.Equal(t, c.Snapshot().Budgets, got.Budgets)
	assert.Equal(t, "light", got.Settings.Theme)
	assert.NotContains(t, got.Categories, "Pets")
}

func TestClearKeepsTheme(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.Set(ctx, state.KeyBudgets, []models.Budget{{ID: "b1"}}))
	require.NoError(t, s.Set(ctx, state.KeyTheme, "light"))

	require.NoError(t, s.Clear(ctx))

	_, ok, err := s.GetRaw(ctx, state.KeyBudgets)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.GetRaw(ctx, state.KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
}

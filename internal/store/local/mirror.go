package local

import (
	"context"
	"log/slog"
	"slices"

	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
)

// Hydrate reads every locally persisted key and returns the actions that
// load them into a freshly reset container. Missing keys keep their
// defaults; keys holding malformed JSON are logged and skipped.
func (s *Store) Hydrate(ctx context.Context, log *slog.Logger) ([]state.Action, error) {
	var actions []state.Action

	var txs []models.Transaction
	if ok, err := s.load(ctx, log, state.KeyTransactions, &txs); err != nil {
		return nil, err
	} else if ok {
		actions = append(actions, state.SetTransactions{Transactions: txs})
	}

	var budgets []models.Budget
	if ok, err := s.load(ctx, log, state.KeyBudgets, &budgets); err != nil {
		return nil, err
	} else if ok {
		actions = append(actions, state.SetBudgets{Budgets: budgets})
	}

	var recurring []models.RecurringTransaction
	if ok, err := s.load(ctx, log, state.KeyRecurringTransactions, &recurring); err != nil {
		return nil, err
	} else if ok {
		actions = append(actions, state.SetRecurring{Recurring: recurring})
	}

	var goals []models.Goal
	if ok, err := s.load(ctx, log, state.KeyGoals, &goals); err != nil {
		return nil, err
	} else if ok {
		actions = append(actions, state.SetGoals{Goals: goals})
	}

	var categories []string
	if ok, err := s.load(ctx, log, state.KeyCategories, &categories); err != nil {
		return nil, err
	} else if ok && categories != nil {
		actions = append(actions, state.SetCategories{Categories: categories})
	}

	var settings models.SettingsPatch
	if ok, err := s.load(ctx, log, state.KeySettings, &settings); err != nil {
		return nil, err
	} else if ok {
		actions = append(actions, state.SetSettings{Patch: settings})
	}

	var theme string
	if ok, err := s.load(ctx, log, state.KeyTheme, &theme); err != nil {
		return nil, err
	} else if ok && theme != "" {
		actions = append(actions, state.UpdateSettings{Patch: models.SettingsPatch{Theme: &theme}})
	}

	return actions, nil
}

// load decodes key into dst. Decode failures are not errors: the key is
// reported as absent so the caller keeps the default.
func (s *Store) load(ctx context.Context, log *slog.Logger, key string, dst any) (bool, error) {
	raw, ok, err := s.GetRaw(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := unmarshal(raw, dst); err != nil {
		log.Warn("ignoring malformed local value", "key", key, "err", err)
		return false, nil
	}
	return true, nil
}

// Mirror returns a container listener that writes every changed local key.
// Write failures are logged; the in-memory state stays authoritative.
func (s *Store) Mirror(log *slog.Logger) state.Listener {
	return func(prev, next state.State) {
		ctx := context.Background()
		for _, key := range state.ChangedKeys(prev, next) {
			v, _ := next.Value(key)
			if err := s.Set(ctx, key, v); err != nil {
				log.Error("failed to mirror local key", "key", key, "err", err)
			}
		}
	}
}

// Clear removes every app-data key, leaving the theme preference.
func (s *Store) Clear(ctx context.Context) error {
	return s.Remove(ctx, slices.Clone(state.LocalKeys)...)
}

package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/logger"
)

type preferencesWriter interface {
	MergeSettings(ctx context.Context, uid string, patch models.SettingsPatch) error
	SetCategories(ctx context.Context, uid string, categories []string) error
}

type appDataDeleter interface {
	DeleteAppData(ctx context.Context, uid string) error
}

type localClearer interface {
	Clear(ctx context.Context) error
}

type preferencesService struct {
	prefs preferencesWriter
	users appDataDeleter
	local localClearer
}

func NewPreferencesService(prefs preferencesWriter, users appDataDeleter, local localClearer) *preferencesService {
	return &preferencesService{
		prefs: prefs,
		users: users,
		local: local,
	}
}

func validateSettings(p models.SettingsPatch) error {
	if p.WarningThreshold != nil && (*p.WarningThreshold < 1 || *p.WarningThreshold > 100) {
		return errs.NewValidationError("warning threshold must be between 1 and 100")
	}
	if p.Timezone != nil && *p.Timezone != "auto" {
		if _, err := time.LoadLocation(*p.Timezone); err != nil {
			return errs.NewValidationError("unknown timezone " + *p.Timezone)
		}
	}
	if p.Currency != nil && strings.TrimSpace(*p.Currency) == "" {
		return errs.NewValidationError("currency cannot be empty")
	}
	return nil
}

// UpdateSettings merges patch into the stored settings; fields left nil keep
// their current value.
func (s *preferencesService) UpdateSettings(ctx context.Context, sess state.Session, patch models.SettingsPatch) (models.Settings, error) {
	if err := validateSettings(patch); err != nil {
		return models.Settings{}, err
	}
	if id := sess.Identity(); id != nil {
		if err := s.prefs.MergeSettings(ctx, id.UID, patch); err != nil {
			logger.FromContext(ctx).Error("failed to save settings", "err", err)
			return models.Settings{}, err
		}
	}
	sess.Dispatch(state.UpdateSettings{Patch: patch})
	return sess.Snapshot().Settings, nil
}

func (s *preferencesService) AddCategory(ctx context.Context, sess state.Session, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.NewValidationError("category name cannot be empty")
	}
	current := sess.Snapshot().Categories
	if slices.Contains(current, name) {
		return nil, errs.NewAlreadyExistsError("category already exists")
	}

	next := append(slices.Clone(current), name)
	if err := s.saveCategories(ctx, sess, next); err != nil {
		return nil, err
	}
	sess.Dispatch(state.AddCategory{Category: name})
	return sess.Snapshot().Categories, nil
}

func (s *preferencesService) DeleteCategory(ctx context.Context, sess state.Session, name string) ([]string, error) {
	current := sess.Snapshot().Categories
	if !slices.Contains(current, name) {
		return nil, errs.NewNotFoundError("category not found")
	}

	next := slices.DeleteFunc(slices.Clone(current), func(c string) bool { return c == name })
	if err := s.saveCategories(ctx, sess, next); err != nil {
		return nil, err
	}
	sess.Dispatch(state.DeleteCategory{Category: name})
	return sess.Snapshot().Categories, nil
}

func (s *preferencesService) saveCategories(ctx context.Context, sess state.Session, list []string) error {
	id := sess.Identity()
	if id == nil {
		return nil
	}
	if err := s.prefs.SetCategories(ctx, id.UID, list); err != nil {
		logger.FromContext(ctx).Error("failed to save categories", "err", err)
		return err
	}
	return nil
}

// ClearAllData deletes the caller's app data from the storage backing the
// session, then resets the container. Signed in that is the remote store;
// signed out it is the local fallback keys, which only the guest session
// owns. Family data is not touched.
func (s *preferencesService) ClearAllData(ctx context.Context, sess state.Session) error {
	log := logger.FromContext(ctx)

	if id := sess.Identity(); id != nil {
		if err := s.users.DeleteAppData(ctx, id.UID); err != nil {
			log.Error("failed to clear remote data", "err", err)
			return err
		}
	} else if err := s.local.Clear(ctx); err != nil {
		log.Error("failed to clear local data", "err", err)
		return err
	}
	sess.Dispatch(state.Reset{})
	log.Info("all data cleared")
	return nil
}

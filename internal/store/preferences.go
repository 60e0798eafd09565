package store

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
)

// preferencesStore holds the two singleton documents of a user:
// settings/preferences and categories/list.
type preferencesStore struct {
	client *firestore.Client
}

func NewPreferencesStore(client *firestore.Client) *preferencesStore {
	return &preferencesStore{client: client}
}

func (s *preferencesStore) settingsDoc(uid string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("settings").Doc("preferences")
}

func (s *preferencesStore) categoriesDoc(uid string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("categories").Doc("list")
}

// GetSettings returns the stored fields as a patch; fields never written are
// left nil so they do not override defaults. A missing document is an empty patch.
func (s *preferencesStore) GetSettings(ctx context.Context, uid string) (models.SettingsPatch, error) {
	snap, err := s.settingsDoc(uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return models.SettingsPatch{}, nil
		}
		return models.SettingsPatch{}, errs.NewDatabaseError("read", "failed to get settings", err)
	}
	return patchFromData(snap.Data()), nil
}

func (s *preferencesStore) MergeSettings(ctx context.Context, uid string, patch models.SettingsPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	if _, err := s.settingsDoc(uid).Set(ctx, fields, firestore.MergeAll); err != nil {
		return errs.NewDatabaseError("update", "failed to save settings", err)
	}
	return nil
}

// GetCategories returns the stored list and whether one was stored.
func (s *preferencesStore) GetCategories(ctx context.Context, uid string) ([]string, bool, error) {
	snap, err := s.categoriesDoc(uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errs.NewDatabaseError("read", "failed to get categories", err)
	}
	var doc struct {
		List []string `firestore:"list"`
	}
	if err := snap.DataTo(&doc); err != nil {
		return nil, false, errs.NewDatabaseError("read", "failed to parse categories", err)
	}
	if doc.List == nil {
		return nil, false, nil
	}
	return doc.List, true, nil
}

func (s *preferencesStore) SetCategories(ctx context.Context, uid string, categories []string) error {
	_, err := s.categoriesDoc(uid).Set(ctx, map[string]any{"list": categories}, firestore.MergeAll)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to save categories", err)
	}
	return nil
}

func patchFromData(data map[string]any) models.SettingsPatch {
	var p models.SettingsPatch
	if v, ok := data["currency"].(string); ok {
		p.Currency = &v
	}
	if v, ok := data["theme"].(string); ok {
		p.Theme = &v
	}
	if v, ok := data["defaultCategory"].(string); ok {
		p.DefaultCategory = &v
	}
	if v, ok := data["notifications"].(bool); ok {
		p.Notifications = &v
	}
	switch v := data["warningThreshold"].(type) {
	case int64:
		n := int(v)
		p.WarningThreshold = &n
	case float64:
		n := int(v)
		p.WarningThreshold = &n
	}
	if v, ok := data["timezone"].(string); ok {
		p.Timezone = &v
	}
	return p
}

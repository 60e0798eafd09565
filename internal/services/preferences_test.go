package services

import (
	"errors"
	"testing"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/helpers"
)

func TestUpdateSettingsMergesPatch(t *testing.T) {
	prefs := &stubPreferencesStore{}
	svc := NewPreferencesService(prefs, newMemoryProfiles(), &stubLocal{})
	sess := newUserSession("u1", "")

	got, err := svc.UpdateSettings(helpers.TestCtx(), sess, models.SettingsPatch{Currency: helpers.Ptr("GBP")})
	if err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	if got.Currency != "GBP" || got.Theme != models.DefaultTheme {
		t.Fatalf("unexpected settings: %+v", got)
	}
	if len(prefs.merged) != 1 || prefs.merged[0].Theme != nil {
		t.Fatalf("only changed fields should be written: %+v", prefs.merged)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	prefs := &stubPreferencesStore{}
	svc := NewPreferencesService(prefs, newMemoryProfiles(), &stubLocal{})
	sess := newUserSession("u1", "")

	for _, p := range []models.SettingsPatch{
		{WarningThreshold: helpers.Ptr(0)},
		{WarningThreshold: helpers.Ptr(150)},
		{Timezone: helpers.Ptr("Mars/Olympus")},
	} {
		_, err := svc.UpdateSettings(helpers.TestCtx(), sess, p)
		var verr *errs.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for %+v, got %v", p, err)
		}
	}
	if len(prefs.merged) != 0 {
		t.Fatalf("invalid settings reached the store")
	}
}

func TestCategories(t *testing.T) {
	prefs := &stubPreferencesStore{}
	svc := NewPreferencesService(prefs, newMemoryProfiles(), &stubLocal{})
	sess := newUserSession("u1", "")
	ctx := helpers.TestCtx()

	list, err := svc.AddCategory(ctx, sess, "  Pets ")
	if err != nil {
		t.Fatalf("AddCategory returned error: %v", err)
	}
	if list[len(list)-1] != "Pets" || len(prefs.saved) != 1 {
		t.Fatalf("category not added: %v", list)
	}

	_, err = svc.AddCategory(ctx, sess, "Pets")
	var exists *errs.AlreadyExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("expected AlreadyExistsError, got %v", err)
	}

	list, err = svc.DeleteCategory(ctx, sess, "Bills")
	if err != nil {
		t.Fatalf("DeleteCategory returned error: %v", err)
	}
	for _, c := range list {
		if c == "Bills" {
			t.Fatalf("Bills still present: %v", list)
		}
	}
	if len(prefs.saved[1]) != len(list) {
		t.Fatalf("stored list does not match state")
	}

	_, err = svc.DeleteCategory(ctx, sess, "Nope")
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCategoryStoreFailureKeepsState(t *testing.T) {
	prefs := &stubPreferencesStore{err: errRemote}
	svc := NewPreferencesService(prefs, newMemoryProfiles(), &stubLocal{})
	sess := newUserSession("u1", "")

	if _, err := svc.AddCategory(helpers.TestCtx(), sess, "Pets"); !errors.Is(err, errRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if len(sess.Snapshot().Categories) != len(models.BuiltinCategories) {
		t.Fatalf("failed write must not dispatch")
	}
}

func TestClearAllData(t *testing.T) {
	profiles := newMemoryProfiles()
	local := &stubLocal{}
	svc := NewPreferencesService(&stubPreferencesStore{}, profiles, local)
	sess := newUserSession("u1", "")
	sess.Dispatch(state.AddTransaction{Transaction: models.Transaction{ID: "t1"}})

	if err := svc.ClearAllData(helpers.TestCtx(), sess); err != nil {
		t.Fatalf("ClearAllData returned error: %v", err)
	}
	if len(profiles.deleted) != 1 {
		t.Fatalf("expected remote clear, got %v", profiles.deleted)
	}
	if local.cleared != 0 {
		t.Fatalf("signed-in clear must leave the guest's local keys alone")
	}
	if len(sess.Snapshot().Transactions) != 0 {
		t.Fatalf("expected state reset")
	}

	profiles.err = errRemote
	sess.Dispatch(state.AddTransaction{Transaction: models.Transaction{ID: "t2"}})
	if err := svc.ClearAllData(helpers.TestCtx(), sess); !errors.Is(err, errRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if len(sess.Snapshot().Transactions) != 1 {
		t.Fatalf("failed clear must not reset state")
	}
}

func TestGuestClearAllDataClearsLocalKeysOnly(t *testing.T) {
	profiles := newMemoryProfiles()
	local := &stubLocal{}
	svc := NewPreferencesService(&stubPreferencesStore{}, profiles, local)
	sess := newGuestSession()
	sess.Dispatch(state.AddBudget{Budget: models.Budget{ID: "b1"}})

	if err := svc.ClearAllData(helpers.TestCtx(), sess); err != nil {
		t.Fatalf("ClearAllData returned error: %v", err)
	}
	if local.cleared != 1 || len(profiles.deleted) != 0 {
		t.Fatalf("expected only a local clear, got %d / %v", local.cleared, profiles.deleted)
	}
	if len(sess.Snapshot().Budgets) != 0 {
		t.Fatalf("expected state reset")
	}

	local.err = errRemote
	sess.Dispatch(state.AddBudget{Budget: models.Budget{ID: "b2"}})
	if err := svc.ClearAllData(helpers.TestCtx(), sess); !errors.Is(err, errRemote) {
		t.Fatalf("expected local error, got %v", err)
	}
	if len(sess.Snapshot().Budgets) != 1 {
		t.Fatalf("failed clear must not reset state")
	}
}

package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/logger"
)

type transactionLister interface {
	List(ctx context.Context, owner models.Owner) ([]models.Transaction, error)
}

type recordLister[T any] interface {
	List(ctx context.Context, uid string) ([]T, error)
}

type preferencesReader interface {
	GetSettings(ctx context.Context, uid string) (models.SettingsPatch, error)
	GetCategories(ctx context.Context, uid string) ([]string, bool, error)
}

type profileSyncStore interface {
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
	UpsertIdentity(ctx context.Context, id models.Identity) error
}

type familyReader interface {
	Get(ctx context.Context, familyID string) (*models.Family, error)
}

type invitationLister interface {
	ListPendingForEmail(ctx context.Context, email string) ([]models.Invitation, error)
	ListPendingForFamily(ctx context.Context, familyID string) ([]models.Invitation, error)
}

// SyncStores are the remote reads a full sync needs.
type SyncStores struct {
	Transactions transactionLister
	Budgets      recordLister[models.Budget]
	Recurring    recordLister[models.RecurringTransaction]
	Goals        recordLister[models.Goal]
	Preferences  preferencesReader
	Users        profileSyncStore
	Families     familyReader
	Invitations  invitationLister
}

type syncService struct {
	stores SyncStores
}

func NewSyncService(stores SyncStores) *syncService {
	return &syncService{stores: stores}
}

// Sync loads everything the signed-in user can see. Independent reads run
// concurrently and each dispatches its result as soon as it lands, so one
// failing collection does not hold back the others. The first error is
// returned after every read has finished.
func (s *syncService) Sync(ctx context.Context, id models.Identity, dispatch func(state.Action)) error {
	log := logger.FromContext(ctx)

	if err := s.stores.Users.UpsertIdentity(ctx, id); err != nil {
		log.Warn("failed to save profile", "err", err)
	}

	var g errgroup.Group
	personal := models.PersonalOwner(id.UID)

	g.Go(func() error {
		txs, err := s.stores.Transactions.List(ctx, personal)
		if err != nil {
			log.Error("failed to load transactions", "err", err)
			return err
		}
		dispatch(state.SetTransactions{Transactions: txs})
		return nil
	})
	g.Go(func() error {
		budgets, err := s.stores.Budgets.List(ctx, id.UID)
		if err != nil {
			log.Error("failed to load budgets", "err", err)
			return err
		}
		dispatch(state.SetBudgets{Budgets: budgets})
		return nil
	})
	g.Go(func() error {
		recurring, err := s.stores.Recurring.List(ctx, id.UID)
		if err != nil {
			log.Error("failed to load recurring transactions", "err", err)
			return err
		}
		dispatch(state.SetRecurring{Recurring: recurring})
		return nil
	})
	g.Go(func() error {
		goals, err := s.stores.Goals.List(ctx, id.UID)
		if err != nil {
			log.Error("failed to load goals", "err", err)
			return err
		}
		dispatch(state.SetGoals{Goals: goals})
		return nil
	})
	g.Go(func() error {
		patch, err := s.stores.Preferences.GetSettings(ctx, id.UID)
		if err != nil {
			log.Error("failed to load settings", "err", err)
			return err
		}
		dispatch(state.SetSettings{Patch: patch})
		return nil
	})
	g.Go(func() error {
		categories, found, err := s.stores.Preferences.GetCategories(ctx, id.UID)
		if err != nil {
			log.Error("failed to load categories", "err", err)
			return err
		}
		if found {
			dispatch(state.SetCategories{Categories: categories})
		}
		return nil
	})
	g.Go(func() error {
		return s.syncFamily(ctx, id.UID, dispatch)
	})
	if email := normalizeEmail(id.Email); email != "" {
		g.Go(func() error {
			invs, err := s.stores.Invitations.ListPendingForEmail(ctx, email)
			if err != nil {
				log.Error("failed to load invitations", "err", err)
				return err
			}
			dispatch(state.SetInvitations{Invitations: invs})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("session synced")
	return nil
}

// syncFamily follows the profile to the family document, then loads the
// family's transactions and, for admins, its outstanding invitations.
func (s *syncService) syncFamily(ctx context.Context, uid string, dispatch func(state.Action)) error {
	log := logger.FromContext(ctx)

	profile, err := s.stores.Users.GetProfile(ctx, uid)
	if err != nil {
		log.Error("failed to load profile", "err", err)
		return err
	}
	if profile.FamilyID == "" {
		return nil
	}

	family, err := s.stores.Families.Get(ctx, profile.FamilyID)
	if err != nil {
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			log.Warn("profile points at missing family", "family_id", profile.FamilyID)
			return nil
		}
		log.Error("failed to load family", "err", err)
		return err
	}
	dispatch(state.SetFamily{Family: family})
	dispatch(state.SetFamilyMembers{Members: family.MemberList()})

	txs, err := s.stores.Transactions.List(ctx, models.FamilyOwner(family.FamilyID))
	if err != nil {
		log.Error("failed to load family transactions", "err", err)
		return err
	}
	dispatch(state.SetFamilyTransactions{Transactions: txs})

	if !family.IsAdmin(uid) {
		return nil
	}
	sent, err := s.stores.Invitations.ListPendingForFamily(ctx, family.FamilyID)
	if err != nil {
		var forbidden *errs.ForbiddenError
		if !errors.As(err, &forbidden) {
			log.Error("failed to load sent invitations", "err", err)
			return err
		}
		log.Warn("sent invitations not readable", "family_id", family.FamilyID)
		sent = nil
	}
	dispatch(state.SetSentInvitations{Invitations: sent})
	return nil
}

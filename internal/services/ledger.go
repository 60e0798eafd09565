package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/logger"
)

// DeletePolicy decides how a delete reacts to a remote failure.
type DeletePolicy string

const (
	// DeleteOptimistic removes the record locally first; a failed remote
	// delete is logged and otherwise ignored, so local and remote state may
	// diverge until the next sync.
	DeleteOptimistic DeletePolicy = "optimistic"
	// DeletePessimistic removes the record locally only after the remote
	// delete succeeded, and returns the remote error otherwise.
	DeletePessimistic DeletePolicy = "pessimistic"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DeleteOptimistic, nil
	case DeleteOptimistic, DeletePessimistic:
		return p, nil
	default:
		return "", fmt.Errorf("unknown delete policy %q", s)
	}
}

var frequencies = []string{"daily", "weekly", "monthly", "yearly"}

type transactionWriter interface {
	Add(ctx context.Context, tx models.Transaction) (string, error)
	Update(ctx context.Context, tx models.Transaction) error
	Delete(ctx context.Context, ref models.TransactionRef) error
}

// membershipReader confirms which family a user currently belongs to.
type membershipReader interface {
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
}

type recordWriter[T any] interface {
	Add(ctx context.Context, uid string, rec T) (string, error)
	Update(ctx context.Context, uid, id string, rec T) error
	Delete(ctx context.Context, uid, id string) error
}

// recordKind binds a record type to its store and container actions.
type recordKind[T any] struct {
	name   string
	store  recordWriter[T]
	list   func(state.State) []T
	id     func(T) string
	setID  func(*T, string)
	add    func(T) state.Action
	update func(T) state.Action
	remove func(string) state.Action
}

type ledgerService struct {
	txs       transactionWriter
	budgets   recordKind[models.Budget]
	recurring recordKind[models.RecurringTransaction]
	goals     recordKind[models.Goal]
	profiles  membershipReader
	policy    DeletePolicy
	now       func() time.Time
}

func NewLedgerService(
	txs transactionWriter,
	budgets recordWriter[models.Budget],
	recurring recordWriter[models.RecurringTransaction],
	goals recordWriter[models.Goal],
	profiles membershipReader,
	policy DeletePolicy,
) *ledgerService {
	return &ledgerService{
		txs: txs,
		budgets: recordKind[models.Budget]{
			name:   "budget",
			store:  budgets,
			list:   func(s state.State) []models.Budget { return s.Budgets },
			id:     func(b models.Budget) string { return b.ID },
			setID:  (*models.Budget).SetID,
			add:    func(b models.Budget) state.Action { return state.AddBudget{Budget: b} },
			update: func(b models.Budget) state.Action { return state.UpdateBudget{Budget: b} },
			remove: func(id string) state.Action { return state.DeleteBudget{ID: id} },
		},
		recurring: recordKind[models.RecurringTransaction]{
			name:   "recurring transaction",
			store:  recurring,
			list:   func(s state.State) []models.RecurringTransaction { return s.RecurringTransactions },
			id:     func(r models.RecurringTransaction) string { return r.ID },
			setID:  (*models.RecurringTransaction).SetID,
			add:    func(r models.RecurringTransaction) state.Action { return state.AddRecurring{Recurring: r} },
			update: func(r models.RecurringTransaction) state.Action { return state.UpdateRecurring{Recurring: r} },
			remove: func(id string) state.Action { return state.DeleteRecurring{ID: id} },
		},
		goals: recordKind[models.Goal]{
			name:   "goal",
			store:  goals,
			list:   func(s state.State) []models.Goal { return s.Goals },
			id:     func(g models.Goal) string { return g.ID },
			setID:  (*models.Goal).SetID,
			add:    func(g models.Goal) state.Action { return state.AddGoal{Goal: g} },
			update: func(g models.Goal) state.Action { return state.UpdateGoal{Goal: g} },
			remove: func(id string) state.Action { return state.DeleteGoal{ID: id} },
		},
		profiles: profiles,
		policy:   policy,
		now:      time.Now,
	}
}

// resolveOwner fills in the personal owner for refs built from a bare id
// and checks that a family owner is the caller's own family. Family
// membership is confirmed against the stored profile; a session still
// holding a family the user was removed from has that family cleared.
func (s *ledgerService) resolveOwner(ctx context.Context, sess state.Session, owner models.Owner) (models.Owner, error) {
	id := sess.Identity()
	if !owner.IsFamily() {
		if id == nil {
			return models.PersonalOwner(""), nil
		}
		return models.PersonalOwner(id.UID), nil
	}
	if id == nil {
		return models.Owner{}, errs.NewUnauthenticatedError()
	}
	if fam := sess.Snapshot().Family; fam == nil || fam.FamilyID != owner.ID {
		return models.Owner{}, errs.NewForbiddenError("not a member of this family")
	}

	profile, err := s.profiles.GetProfile(ctx, id.UID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to confirm family membership", "family_id", owner.ID, "err", err)
		return models.Owner{}, err
	}
	if profile.FamilyID != owner.ID {
		logger.FromContext(ctx).Info("dropping stale family from session", "family_id", owner.ID)
		sess.Dispatch(state.SetFamily{})
		sess.Dispatch(state.SetFamilyMembers{})
		sess.Dispatch(state.SetFamilyTransactions{})
		sess.Dispatch(state.SetSentInvitations{})
		return models.Owner{}, errs.NewForbiddenError("not a member of this family")
	}
	return owner, nil
}

func validateTransaction(tx models.Transaction) error {
	if strings.TrimSpace(tx.Text) == "" {
		return errs.NewValidationError("text is required")
	}
	if tx.Amount == 0 {
		return errs.NewValidationError("amount is required")
	}
	return nil
}

// AddTransaction stores tx and adds it to the front of the matching list.
// Signed out, tx gets a local id and lives only in local storage.
func (s *ledgerService) AddTransaction(ctx context.Context, sess state.Session, tx models.Transaction) (models.Transaction, error) {
	log := logger.FromContext(ctx)

	if err := validateTransaction(tx); err != nil {
		return models.Transaction{}, err
	}
	owner, err := s.resolveOwner(ctx, sess, tx.Owner)
	if err != nil {
		return models.Transaction{}, err
	}
	tx.Owner = owner
	if tx.Date.IsZero() {
		tx.Date = s.now()
	}
	if tx.Category == "" {
		tx.Category = sess.Snapshot().Settings.DefaultCategory
	}

	id := sess.Identity()
	if id == nil {
		tx.ID = uuid.NewString()
		sess.Dispatch(state.AddTransaction{Transaction: tx})
		return tx, nil
	}

	if owner.IsFamily() {
		tx.AddedBy = id.UID
		tx.AddedByName = id.Name()
	}
	newID, err := s.txs.Add(ctx, tx)
	if err != nil {
		log.Error("failed to add transaction", "err", err)
		return models.Transaction{}, err
	}
	tx.ID = newID

	if owner.IsFamily() {
		sess.Dispatch(state.AddFamilyTransaction{Transaction: tx})
	} else {
		sess.Dispatch(state.AddTransaction{Transaction: tx})
	}
	log.Info("transaction added", "transaction_id", tx.ID, "scope", owner.Scope)
	return tx, nil
}

// UpdateTransaction merge-writes the editable fields of tx. The container is
// only updated once the remote write succeeded.
func (s *ledgerService) UpdateTransaction(ctx context.Context, sess state.Session, tx models.Transaction) (models.Transaction, error) {
	log := logger.FromContext(ctx)

	if err := validateTransaction(tx); err != nil {
		return models.Transaction{}, err
	}
	owner, err := s.resolveOwner(ctx, sess, tx.Owner)
	if err != nil {
		return models.Transaction{}, err
	}

	snap := sess.Snapshot()
	list := snap.Transactions
	if owner.IsFamily() {
		list = snap.FamilyTransactions
	}
	idx := slices.IndexFunc(list, func(t models.Transaction) bool { return t.ID == tx.ID })
	if idx < 0 {
		return models.Transaction{}, errs.NewNotFoundError("transaction not found")
	}

	merged := list[idx]
	merged.Text = tx.Text
	merged.Amount = tx.Amount
	merged.Category = tx.Category
	if !tx.Date.IsZero() {
		merged.Date = tx.Date
	}
	merged.Owner = owner

	if sess.Identity() != nil {
		if err := s.txs.Update(ctx, merged); err != nil {
			log.Error("failed to update transaction", "transaction_id", tx.ID, "err", err)
			return models.Transaction{}, err
		}
	}

	if owner.IsFamily() {
		sess.Dispatch(state.UpdateFamilyTransaction{Transaction: merged})
	} else {
		sess.Dispatch(state.UpdateTransaction{Transaction: merged})
	}
	return merged, nil
}

// DeleteTransaction removes the transaction addressed by ref following the
// configured DeletePolicy.
func (s *ledgerService) DeleteTransaction(ctx context.Context, sess state.Session, ref models.TransactionRef) error {
	owner, err := s.resolveOwner(ctx, sess, ref.Owner)
	if err != nil {
		return err
	}
	ref.Owner = owner

	var action state.Action = state.DeleteTransaction{ID: ref.ID}
	if owner.IsFamily() {
		action = state.DeleteFamilyTransaction{ID: ref.ID}
	}
	return s.delete(ctx, sess, "transaction", ref.ID, action, func() error {
		return s.txs.Delete(ctx, ref)
	})
}

func (s *ledgerService) delete(ctx context.Context, sess state.Session, what, id string, action state.Action, remote func() error) error {
	log := logger.FromContext(ctx)

	if sess.Identity() == nil {
		sess.Dispatch(action)
		return nil
	}

	if s.policy == DeletePessimistic {
		if err := remote(); err != nil {
			log.Error("failed to delete "+what, "id", id, "err", err)
			return err
		}
		sess.Dispatch(action)
		return nil
	}

	sess.Dispatch(action)
	if err := remote(); err != nil {
		log.Error("remote delete failed, local copy already removed", "what", what, "id", id, "err", err)
	}
	return nil
}

func addRecord[T any](ctx context.Context, sess state.Session, k recordKind[T], rec T) (T, error) {
	id := sess.Identity()
	if id == nil {
		k.setID(&rec, uuid.NewString())
		sess.Dispatch(k.add(rec))
		return rec, nil
	}

	newID, err := k.store.Add(ctx, id.UID, rec)
	if err != nil {
		logger.FromContext(ctx).Error("failed to add "+k.name, "err", err)
		var zero T
		return zero, err
	}
	k.setID(&rec, newID)
	sess.Dispatch(k.add(rec))
	return rec, nil
}

func updateRecord[T any](ctx context.Context, sess state.Session, k recordKind[T], rec T) (T, error) {
	var zero T
	recID := k.id(rec)
	if !slices.ContainsFunc(k.list(sess.Snapshot()), func(cur T) bool { return k.id(cur) == recID }) {
		return zero, errs.NewNotFoundError(k.name + " not found")
	}

	if id := sess.Identity(); id != nil {
		if err := k.store.Update(ctx, id.UID, recID, rec); err != nil {
			logger.FromContext(ctx).Error("failed to update "+k.name, "id", recID, "err", err)
			return zero, err
		}
	}
	sess.Dispatch(k.update(rec))
	return rec, nil
}

func deleteRecord[T any](ctx context.Context, s *ledgerService, sess state.Session, k recordKind[T], recID string) error {
	return s.delete(ctx, sess, k.name, recID, k.remove(recID), func() error {
		return k.store.Delete(ctx, sess.Identity().UID, recID)
	})
}

func validateBudget(b models.Budget) error {
	if strings.TrimSpace(b.Category) == "" {
		return errs.NewValidationError("category is required")
	}
	if b.Limit <= 0 {
		return errs.NewValidationError("limit must be positive")
	}
	if b.Month < 1 || b.Month > 12 {
		return errs.NewValidationError("month must be between 1 and 12")
	}
	return nil
}

// AddBudget defaults a missing month or year to the current one.
func (s *ledgerService) AddBudget(ctx context.Context, sess state.Session, b models.Budget) (models.Budget, error) {
	now := s.now()
	if b.Month == 0 {
		b.Month = int(now.Month())
	}
	if b.Year == 0 {
		b.Year = now.Year()
	}
	if err := validateBudget(b); err != nil {
		return models.Budget{}, err
	}
	return addRecord(ctx, sess, s.budgets, b)
}

func (s *ledgerService) UpdateBudget(ctx context.Context, sess state.Session, b models.Budget) (models.Budget, error) {
	if err := validateBudget(b); err != nil {
		return models.Budget{}, err
	}
	return updateRecord(ctx, sess, s.budgets, b)
}

func (s *ledgerService) DeleteBudget(ctx context.Context, sess state.Session, id string) error {
	return deleteRecord(ctx, s, sess, s.budgets, id)
}

func validateRecurring(r models.RecurringTransaction) error {
	if strings.TrimSpace(r.Text) == "" {
		return errs.NewValidationError("text is required")
	}
	if r.Amount == 0 {
		return errs.NewValidationError("amount is required")
	}
	if !slices.Contains(frequencies, r.Frequency) {
		return errs.NewValidationError("frequency must be one of " + strings.Join(frequencies, ", "))
	}
	return nil
}

func (s *ledgerService) AddRecurring(ctx context.Context, sess state.Session, r models.RecurringTransaction) (models.RecurringTransaction, error) {
	if err := validateRecurring(r); err != nil {
		return models.RecurringTransaction{}, err
	}
	if r.StartDate.IsZero() {
		r.StartDate = s.now()
	}
	return addRecord(ctx, sess, s.recurring, r)
}

func (s *ledgerService) UpdateRecurring(ctx context.Context, sess state.Session, r models.RecurringTransaction) (models.RecurringTransaction, error) {
	if err := validateRecurring(r); err != nil {
		return models.RecurringTransaction{}, err
	}
	return updateRecord(ctx, sess, s.recurring, r)
}

func (s *ledgerService) DeleteRecurring(ctx context.Context, sess state.Session, id string) error {
	return deleteRecord(ctx, s, sess, s.recurring, id)
}

func validateGoal(g models.Goal) error {
	if strings.TrimSpace(g.Name) == "" {
		return errs.NewValidationError("name is required")
	}
	if g.TargetAmount <= 0 {
		return errs.NewValidationError("target amount must be positive")
	}
	return nil
}

func (s *ledgerService) AddGoal(ctx context.Context, sess state.Session, g models.Goal) (models.Goal, error) {
	if err := validateGoal(g); err != nil {
		return models.Goal{}, err
	}
	return addRecord(ctx, sess, s.goals, g)
}

func (s *ledgerService) UpdateGoal(ctx context.Context, sess state.Session, g models.Goal) (models.Goal, error) {
	if err := validateGoal(g); err != nil {
		return models.Goal{}, err
	}
	return updateRecord(ctx, sess, s.goals, g)
}

func (s *ledgerService) DeleteGoal(ctx context.Context, sess state.Session, id string) error {
	return deleteRecord(ctx, s, sess, s.goals, id)
}

package state

import (
	"maps"
	"slices"

	"github.com/GregMSThompson/expenseflow/internal/models"
)

// State is an immutable snapshot. Reduce never mutates a slice or map that
// is reachable from a previous State, so a snapshot can be read from any
// goroutine without locking.
type State struct {
	Transactions          []models.Transaction          `json:"transactions"`
	Budgets               []models.Budget               `json:"budgets"`
	RecurringTransactions []models.RecurringTransaction `json:"recurringTransactions"`
	Goals                 []models.Goal                 `json:"goals"`
	Categories            []string                      `json:"categories"`
	Settings              models.Settings               `json:"settings"`
	Family                *models.Family                `json:"family"`
	FamilyMembers         []models.FamilyMember         `json:"familyMembers"`
	FamilyTransactions    []models.Transaction          `json:"familyTransactions"`
	Invitations           []models.Invitation           `json:"familyInvitations"`
	SentInvitations       []models.Invitation           `json:"sentInvitations"`
}

// Initial is the state after RESET: empty collections, built-in categories,
// default settings.
func Initial() State {
	return State{
		Transactions:          []models.Transaction{},
		Budgets:               []models.Budget{},
		RecurringTransactions: []models.RecurringTransaction{},
		Goals:                 []models.Goal{},
		Categories:            slices.Clone(models.BuiltinCategories),
		Settings:              models.DefaultSettings(),
		FamilyMembers:         []models.FamilyMember{},
		FamilyTransactions:    []models.Transaction{},
		Invitations:           []models.Invitation{},
		SentInvitations:       []models.Invitation{},
	}
}

// Reduce returns the state that results from applying a to s. The second
// result is false when the action kind is not handled, in which case s is
// returned unchanged.
func Reduce(s State, a Action) (State, bool) {
	switch a := a.(type) {
	case AddTransaction:
		s.Transactions = prepend(s.Transactions, a.Transaction)
	case UpdateTransaction:
		s.Transactions = replace(s.Transactions, a.Transaction, txID)
	case DeleteTransaction:
		s.Transactions = remove(s.Transactions, a.ID, txID)
	case SetTransactions:
		s.Transactions = orEmpty(a.Transactions)

	case AddBudget:
		s.Budgets = appendCopy(s.Budgets, a.Budget)
	case UpdateBudget:
		s.Budgets = replace(s.Budgets, a.Budget, func(b models.Budget) string { return b.ID })
	case DeleteBudget:
		s.Budgets = remove(s.Budgets, a.ID, func(b models.Budget) string { return b.ID })
	case SetBudgets:
		s.Budgets = orEmpty(a.Budgets)

	case AddRecurring:
		s.RecurringTransactions = appendCopy(s.RecurringTransactions, a.Recurring)
	case UpdateRecurring:
		s.RecurringTransactions = replace(s.RecurringTransactions, a.Recurring, recurringID)
	case DeleteRecurring:
		s.RecurringTransactions = remove(s.RecurringTransactions, a.ID, recurringID)
	case SetRecurring:
		s.RecurringTransactions = orEmpty(a.Recurring)

	case AddGoal:
		s.Goals = appendCopy(s.Goals, a.Goal)
	case UpdateGoal:
		s.Goals = replace(s.Goals, a.Goal, func(g models.Goal) string { return g.ID })
	case DeleteGoal:
		s.Goals = remove(s.Goals, a.ID, func(g models.Goal) string { return g.ID })
	case SetGoals:
		s.Goals = orEmpty(a.Goals)

	case AddCategory:
		s.Categories = appendCopy(s.Categories, a.Category)
	case DeleteCategory:
		s.Categories = remove(s.Categories, a.Category, func(c string) string { return c })
	case SetCategories:
		s.Categories = orEmpty(a.Categories)

	case SetSettings:
		s.Settings = a.Patch.Apply(s.Settings)
	case UpdateSettings:
		s.Settings = a.Patch.Apply(s.Settings)

	case SetFamily:
		s.Family = cloneFamily(a.Family)
	case SetFamilyMembers:
		s.FamilyMembers = orEmpty(a.Members)
	case AddFamilyMember:
		s.FamilyMembers = appendCopy(s.FamilyMembers, a.Member)
	case RemoveFamilyMember:
		s.FamilyMembers = remove(s.FamilyMembers, a.UID, func(m models.FamilyMember) string { return m.UID })
	case SetFamilyTransactions:
		s.FamilyTransactions = orEmpty(a.Transactions)
	case AddFamilyTransaction:
		s.FamilyTransactions = prepend(s.FamilyTransactions, a.Transaction)
	case UpdateFamilyTransaction:
		s.FamilyTransactions = replace(s.FamilyTransactions, a.Transaction, txID)
	case DeleteFamilyTransaction:
		s.FamilyTransactions = remove(s.FamilyTransactions, a.ID, txID)

	case SetInvitations:
		s.Invitations = orEmpty(a.Invitations)
	case RemoveInvitation:
		s.Invitations = remove(s.Invitations, a.ID, invitationID)
	case SetSentInvitations:
		s.SentInvitations = orEmpty(a.Invitations)
	case AddSentInvitation:
		s.SentInvitations = appendCopy(s.SentInvitations, a.Invitation)
	case DeleteSentInvitation:
		s.SentInvitations = remove(s.SentInvitations, a.ID, invitationID)

	case Reset:
		return Initial(), true

	default:
		return s, false
	}
	return s, true
}

func txID(t models.Transaction) string                 { return t.ID }
func recurringID(r models.RecurringTransaction) string { return r.ID }
func invitationID(i models.Invitation) string          { return i.ID }

func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

func appendCopy[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

func replace[T any](items []T, item T, id func(T) string) []T {
	out := make([]T, len(items))
	for i, cur := range items {
		if id(cur) == id(item) {
			out[i] = item
			continue
		}
		out[i] = cur
	}
	return out
}

func remove[T any](items []T, key string, id func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, cur := range items {
		if id(cur) != key {
			out = append(out, cur)
		}
	}
	return out
}

func cloneFamily(f *models.Family) *models.Family {
	if f == nil {
		return nil
	}
	out := *f
	out.Members = maps.Clone(f.Members)
	return &out
}

// orEmpty copies items so callers cannot alias state; nil becomes empty.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return slices.Clone(items)
}

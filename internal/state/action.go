package state

import "github.com/GregMSThompson/expenseflow/internal/models"

// Action is the closed set of state transitions. Only types declared in this
// package satisfy it.
type Action interface {
	Name() string
	action()
}

type kind struct{}

func (kind) action() {}

// Transactions

type AddTransaction struct {
	kind
	Transaction models.Transaction
}

type UpdateTransaction struct {
	kind
	Transaction models.Transaction
}

type DeleteTransaction struct {
	kind
	ID string
}

type SetTransactions struct {
	kind
	Transactions []models.Transaction
}

// Budgets

type AddBudget struct {
	kind
	Budget models.Budget
}

type UpdateBudget struct {
	kind
	Budget models.Budget
}

type DeleteBudget struct {
	kind
	ID string
}

type SetBudgets struct {
	kind
	Budgets []models.Budget
}

// Recurring transactions

type AddRecurring struct {
	kind
	Recurring models.RecurringTransaction
}

type UpdateRecurring struct {
	kind
	Recurring models.RecurringTransaction
}

type DeleteRecurring struct {
	kind
	ID string
}

type SetRecurring struct {
	kind
	Recurring []models.RecurringTransaction
}

// Goals

type AddGoal struct {
	kind
	Goal models.Goal
}

type UpdateGoal struct {
	kind
	Goal models.Goal
}

type DeleteGoal struct {
	kind
	ID string
}

type SetGoals struct {
	kind
	Goals []models.Goal
}

// Categories

type AddCategory struct {
	kind
	Category string
}

type DeleteCategory struct {
	kind
	Category string
}

type SetCategories struct {
	kind
	Categories []string
}

// Settings. Both kinds merge the patch; SET is what a sync dispatches.

type SetSettings struct {
	kind
	Patch models.SettingsPatch
}

type UpdateSettings struct {
	kind
	Patch models.SettingsPatch
}

// Family

type SetFamily struct {
	kind
	Family *models.Family
}

type SetFamilyMembers struct {
	kind
	Members []models.FamilyMember
}

type AddFamilyMember struct {
	kind
	Member models.FamilyMember
}

type RemoveFamilyMember struct {
	kind
	UID string
}

type SetFamilyTransactions struct {
	kind
	Transactions []models.Transaction
}

type AddFamilyTransaction struct {
	kind
	Transaction models.Transaction
}

type UpdateFamilyTransaction struct {
	kind
	Transaction models.Transaction
}

type DeleteFamilyTransaction struct {
	kind
	ID string
}

// Invitations addressed to the current user.

type SetInvitations struct {
	kind
	Invitations []models.Invitation
}

type RemoveInvitation struct {
	kind
	ID string
}

// Invitations sent by the current user's family.

type SetSentInvitations struct {
	kind
	Invitations []models.Invitation
}

type AddSentInvitation struct {
	kind
	Invitation models.Invitation
}

type DeleteSentInvitation struct {
	kind
	ID string
}

type Reset struct {
	kind
}

func (AddTransaction) Name() string          { return "ADD_TRANSACTION" }
func (UpdateTransaction) Name() string       { return "UPDATE_TRANSACTION" }
func (DeleteTransaction) Name() string       { return "DELETE_TRANSACTION" }
func (SetTransactions) Name() string         { return "SET_TRANSACTIONS" }
func (AddBudget) Name() string               { return "ADD_BUDGET" }
func (UpdateBudget) Name() string            { return "UPDATE_BUDGET" }
func (DeleteBudget) Name() string            { return "DELETE_BUDGET" }
func (SetBudgets) Name() string              { return "SET_BUDGETS" }
func (AddRecurring) Name() string            { return "ADD_RECURRING" }
func (UpdateRecurring) Name() string         { return "UPDATE_RECURRING" }
func (DeleteRecurring) Name() string         { return "DELETE_RECURRING" }
func (SetRecurring) Name() string            { return "SET_RECURRING" }
func (AddGoal) Name() string                 { return "ADD_GOAL" }
func (UpdateGoal) Name() string              { return "UPDATE_GOAL" }
func (DeleteGoal) Name() string              { return "DELETE_GOAL" }
func (SetGoals) Name() string                { return "SET_GOALS" }
func (AddCategory) Name() string             { return "ADD_CATEGORY" }
func (DeleteCategory) Name() string          { return "DELETE_CATEGORY" }
func (SetCategories) Name() string           { return "SET_CATEGORIES" }
func (SetSettings) Name() string             { return "SET_SETTINGS" }
func (UpdateSettings) Name() string          { return "UPDATE_SETTINGS" }
func (SetFamily) Name() string               { return "SET_FAMILY" }
func (SetFamilyMembers) Name() string        { return "SET_FAMILY_MEMBERS" }
func (AddFamilyMember) Name() string         { return "ADD_FAMILY_MEMBER" }
func (RemoveFamilyMember) Name() string      { return "REMOVE_FAMILY_MEMBER" }
func (SetFamilyTransactions) Name() string   { return "SET_FAMILY_TRANSACTIONS" }
func (AddFamilyTransaction) Name() string    { return "ADD_FAMILY_TRANSACTION" }
func (UpdateFamilyTransaction) Name() string { return "UPDATE_FAMILY_TRANSACTION" }
func (DeleteFamilyTransaction) Name() string { return "DELETE_FAMILY_TRANSACTION" }
func (SetInvitations) Name() string          { return "SET_INVITATIONS" }
func (RemoveInvitation) Name() string        { return "REMOVE_INVITATION" }
func (SetSentInvitations) Name() string      { return "SET_SENT_INVITATIONS" }
func (AddSentInvitation) Name() string       { return "ADD_SENT_INVITATION" }
func (DeleteSentInvitation) Name() string    { return "DELETE_SENT_INVITATION" }
func (Reset) Name() string                   { return "RESET_STATE" }

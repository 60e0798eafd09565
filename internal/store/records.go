package store

import (
	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/expenseflow/internal/models"
)

type (
	BudgetStore    = RecordStore[models.Budget, *models.Budget]
	RecurringStore = RecordStore[models.RecurringTransaction, *models.RecurringTransaction]
	GoalStore      = RecordStore[models.Goal, *models.Goal]
)

func NewBudgetStore(client *firestore.Client) *BudgetStore {
	return &BudgetStore{
		client: client,
		name:   "budgets",
		fields: []string{"category", "limit", "month", "year", "isFamily"},
	}
}

func NewRecurringStore(client *firestore.Client) *RecurringStore {
	return &RecurringStore{
		client: client,
		name:   "recurringTransactions",
		fields: []string{"text", "amount", "category", "frequency", "startDate", "active"},
	}
}

func NewGoalStore(client *firestore.Client) *GoalStore {
	return &GoalStore{
		client: client,
		name:   "goals",
		fields: []string{"name", "targetAmount", "currentAmount", "deadline"},
	}
}

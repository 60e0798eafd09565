package state

import "reflect"

// Local storage keys, one per persisted collection.
const (
	KeyTransactions          = "transactions"
	KeyBudgets               = "budgets"
	KeyRecurringTransactions = "recurringTransactions"
	KeyGoals                 = "goals"
	KeyCategories            = "categories"
	KeySettings              = "settings"
	KeyTheme                 = "theme"
)

// LocalKeys lists the app-data keys mirrored to local storage.
var LocalKeys = []string{
	KeyTransactions,
	KeyBudgets,
	KeyRecurringTransactions,
	KeyGoals,
	KeyCategories,
	KeySettings,
}

// ChangedKeys reports which locally persisted collections differ between
// prev and next. A settings change that touches the theme also reports
// KeyTheme.
func ChangedKeys(prev, next State) []string {
	var keys []string
	if !reflect.DeepEqual(prev.Transactions, next.Transactions) {
		keys = append(keys, KeyTransactions)
	}
	if !reflect.DeepEqual(prev.Budgets, next.Budgets) {
		keys = append(keys, KeyBudgets)
	}
	if !reflect.DeepEqual(prev.RecurringTransactions, next.RecurringTransactions) {
		keys = append(keys, KeyRecurringTransactions)
	}
	if !reflect.DeepEqual(prev.Goals, next.Goals) {
		keys = append(keys, KeyGoals)
	}
	if !reflect.DeepEqual(prev.Categories, next.Categories) {
		keys = append(keys, KeyCategories)
	}
	if prev.Settings != next.Settings {
		keys = append(keys, KeySettings)
	}
	if prev.Settings.Theme != next.Settings.Theme {
		keys = append(keys, KeyTheme)
	}
	return keys
}

// Value returns the state field persisted under key.
func (s State) Value(key string) (any, bool) {
	switch key {
	case KeyTransactions:
		return s.Transactions, true
	case KeyBudgets:
		return s.Budgets, true
	case KeyRecurringTransactions:
		return s.RecurringTransactions, true
	case KeyGoals:
		return s.Goals, true
	case KeyCategories:
		return s.Categories, true
	case KeySettings:
		return s.Settings, true
	case KeyTheme:
		return s.Settings.Theme, true
	default:
		return nil, false
	}
}

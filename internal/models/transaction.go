package models

import (
	"time"
)

type Transaction struct {
	ID          string    `firestore:"-" json:"id"`
	Text        string    `firestore:"text" json:"text"`
	Amount      float64   `firestore:"amount" json:"amount"` // negative = expense
	Date        time.Time `firestore:"date" json:"date"`
	Category    string    `firestore:"category" json:"category"`
	Owner       Owner     `firestore:"owner" json:"owner"`
	AddedBy     string    `firestore:"addedBy,omitempty" json:"addedBy,omitempty"`
	AddedByName string    `firestore:"addedByName,omitempty" json:"addedByName,omitempty"`
}

func (t *Transaction) SetID(id string) { t.ID = id }

func (t Transaction) IsExpense() bool { return t.Amount < 0 }

// Ref identifies the transaction for deletion.
func (t Transaction) Ref() TransactionRef {
	return TransactionRef{ID: t.ID, Owner: t.Owner}
}

// TransactionRef addresses a stored transaction. A ref built from a bare id
// has a zero Owner and is treated as personal.
type TransactionRef struct {
	ID    string
	Owner Owner
}

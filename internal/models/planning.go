package models

import "time"

// RecurringTransaction is stored data only; nothing schedules it.
type RecurringTransaction struct {
	ID        string    `firestore:"-" json:"id"`
	Text      string    `firestore:"text" json:"text"`
	Amount    float64   `firestore:"amount" json:"amount"`
	Category  string    `firestore:"category" json:"category"`
	Frequency string    `firestore:"frequency" json:"frequency"` // daily, weekly, monthly, yearly
	StartDate time.Time `firestore:"startDate" json:"startDate"`
	Active    bool      `firestore:"active" json:"active"`
}

func (r *RecurringTransaction) SetID(id string) { r.ID = id }

type Goal struct {
	ID            string     `firestore:"-" json:"id"`
	Name          string     `firestore:"name" json:"name"`
	TargetAmount  float64    `firestore:"targetAmount" json:"targetAmount"`
	CurrentAmount float64    `firestore:"currentAmount" json:"currentAmount"`
	Deadline      *time.Time `firestore:"deadline" json:"deadline,omitempty"`
}

func (g *Goal) SetID(id string) { g.ID = id }

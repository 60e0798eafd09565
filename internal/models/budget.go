package models

type Budget struct {
	ID       string  `firestore:"-" json:"id"`
	Category string  `firestore:"category" json:"category"`
	Limit    float64 `firestore:"limit" json:"limit"`
	Month    int     `firestore:"month" json:"month"` // 1-12
	Year     int     `firestore:"year" json:"year"`
	IsFamily bool    `firestore:"isFamily" json:"isFamily"`
}

func (b *Budget) SetID(id string) { b.ID = id }

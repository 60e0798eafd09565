package dto

import (
	"time"

	"github.com/GregMSThompson/expenseflow/internal/models"
)

// Date range presets
const (
	RangeThisMonth   = "thisMonth"
	RangeLastMonth   = "lastMonth"
	RangeLast3Months = "last3Months"
	RangeThisYear    = "thisYear"
	RangeAll         = "all"
)

// Trend bucket sizes
const (
	ViewDaily   = "daily"
	ViewWeekly  = "weekly"
	ViewMonthly = "monthly"
)

// Budget status values
const (
	BudgetGood    = "good"
	BudgetWarning = "warning"
	BudgetOver    = "over"
)

type ReportQuery struct {
	Range  string
	View   string
	Family bool
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type TrendPoint struct {
	Period   string  `json:"period"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type Summary struct {
	Range      string          `json:"range"`
	From       *time.Time      `json:"from,omitempty"`
	To         *time.Time      `json:"to,omitempty"`
	Balance    float64         `json:"balance"`
	Income     float64         `json:"income"`
	Expenses   float64         `json:"expenses"`
	Net        float64         `json:"net"`
	AvgDaily   float64         `json:"avgDaily"`
	Categories []CategoryTotal `json:"categories"`
	Trend      []TrendPoint    `json:"trend"`
	Currency   string          `json:"currency"`
}

type BudgetProgress struct {
	Budget     models.Budget `json:"budget"`
	Spent      float64       `json:"spent"`
	Remaining  float64       `json:"remaining"`
	Percentage float64       `json:"percentage"`
	Status     string        `json:"status"`
}

// Backup is the JSON export of a user's personal data.
type Backup struct {
	Transactions []models.Transaction `json:"transactions"`
	Budgets      []models.Budget      `json:"budgets"`
	Goals        []models.Goal        `json:"goals"`
	Settings     models.Settings      `json:"settings"`
	ExportDate   time.Time            `json:"exportDate"`
}

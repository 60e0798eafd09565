package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/expenseflow/internal/dto"
	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/logger"
)

const (
	csvDateLayout  = "2006-01-02"
	maxTrendPoints = 30
)

var csvHeader = []string{"Date", "Description", "Category", "Amount", "Type"}

type transactionAdder interface {
	AddTransaction(ctx context.Context, sess state.Session, tx models.Transaction) (models.Transaction, error)
}

type reportService struct {
	ledger transactionAdder
	now    func() time.Time
}

func NewReportService(ledger transactionAdder) *reportService {
	return &reportService{
		ledger: ledger,
		now:    time.Now,
	}
}

// location resolves the settings timezone; unknown names fall back to UTC.
func location(settings models.Settings) *time.Location {
	if settings.Timezone == "" || settings.Timezone == "auto" {
		return time.UTC
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// resolveRange returns the half-open interval [from, to) of a preset. Both
// are zero for RangeAll.
func resolveRange(preset string, now time.Time) (from, to time.Time, err error) {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	switch preset {
	case "", dto.RangeThisMonth:
		return firstOfMonth, firstOfMonth.AddDate(0, 1, 0), nil
	case dto.RangeLastMonth:
		return firstOfMonth.AddDate(0, -1, 0), firstOfMonth, nil
	case dto.RangeLast3Months:
		return firstOfMonth.AddDate(0, -3, 0), tomorrow, nil
	case dto.RangeThisYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), tomorrow, nil
	case dto.RangeAll:
		return time.Time{}, time.Time{}, nil
	}
	return time.Time{}, time.Time{}, errs.NewValidationError("unknown date range preset: " + preset)
}

func inRange(t, from, to time.Time) bool {
	if from.IsZero() && to.IsZero() {
		return true
	}
	return !t.Before(from) && t.Before(to)
}

func sourceTransactions(s state.State, family bool) []models.Transaction {
	if family {
		return s.FamilyTransactions
	}
	return s.Transactions
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Summary computes the overview, category breakdown and trend of one range.
func (s *reportService) Summary(ctx context.Context, sess state.Session, q dto.ReportQuery) (dto.Summary, error) {
	snap := sess.Snapshot()
	loc := location(snap.Settings)
	now := s.now().In(loc)

	from, to, err := resolveRange(q.Range, now)
	if err != nil {
		return dto.Summary{}, err
	}
	view := q.View
	if view == "" {
		view = dto.ViewDaily
	}
	if view != dto.ViewDaily && view != dto.ViewWeekly && view != dto.ViewMonthly {
		return dto.Summary{}, errs.NewValidationError("unknown view: " + view)
	}

	all := sourceTransactions(snap, q.Family)
	balance := decimal.Zero
	income := decimal.Zero
	expenses := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	var filtered []models.Transaction
	var earliest time.Time

	for _, tx := range all {
		amount := decimal.NewFromFloat(tx.Amount)
		balance = balance.Add(amount)
		if !inRange(tx.Date, from, to) {
			continue
		}
		filtered = append(filtered, tx)
		if earliest.IsZero() || tx.Date.Before(earliest) {
			earliest = tx.Date
		}
		switch {
		case tx.Amount > 0:
			income = income.Add(amount)
		case tx.Amount < 0:
			expenses = expenses.Add(amount.Abs())
			cat := tx.Category
			if cat == "" {
				cat = models.DefaultCategory
			}
			byCategory[cat] = byCategory[cat].Add(amount.Abs())
		}
	}

	spanFrom, spanTo := from, to
	if q.Range == dto.RangeAll {
		spanFrom, spanTo = earliest, now
	}
	days := int64(1)
	if !spanFrom.IsZero() && spanTo.After(spanFrom) {
		days = max(1, int64(math.Ceil(spanTo.Sub(spanFrom).Hours()/24)))
	}

	categories := make([]dto.CategoryTotal, 0, len(byCategory))
	for cat, total := range byCategory {
		categories = append(categories, dto.CategoryTotal{Category: cat, Total: money(total)})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Total != categories[j].Total {
			return categories[i].Total > categories[j].Total
		}
		return categories[i].Category < categories[j].Category
	})

	out := dto.Summary{
		Range:      q.Range,
		Balance:    money(balance),
		Income:     money(income),
		Expenses:   money(expenses),
		Net:        money(income.Sub(expenses)),
		AvgDaily:   money(expenses.Div(decimal.NewFromInt(days))),
		Categories: categories,
		Trend:      trend(filtered, view, loc),
		Currency:   snap.Settings.Currency,
	}
	if out.Range == "" {
		out.Range = dto.RangeThisMonth
	}
	if !from.IsZero() {
		out.From, out.To = &from, &to
	}

	logger.FromContext(ctx).Debug("summary computed", "range", out.Range, "transactions", len(filtered))
	return out, nil
}

func bucketKey(t time.Time, view string) string {
	switch view {
	case dto.ViewWeekly:
		// weeks start on Sunday
		start := time.Date(t.Year(), t.Month(), t.Day()-int(t.Weekday()), 0, 0, 0, 0, t.Location())
		return start.Format(csvDateLayout)
	case dto.ViewMonthly:
		return t.Format("2006-01")
	default:
		return t.Format(csvDateLayout)
	}
}

// trend buckets transactions chronologically and keeps the last 30 buckets.
func trend(txs []models.Transaction, view string, loc *time.Location) []dto.TrendPoint {
	type bucket struct{ income, expenses decimal.Decimal }
	buckets := map[string]*bucket{}
	for _, tx := range txs {
		key := bucketKey(tx.Date.In(loc), view)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		amount := decimal.NewFromFloat(tx.Amount)
		if tx.Amount > 0 {
			b.income = b.income.Add(amount)
		} else {
			b.expenses = b.expenses.Add(amount.Abs())
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxTrendPoints {
		keys = keys[len(keys)-maxTrendPoints:]
	}

	points := make([]dto.TrendPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, dto.TrendPoint{Period: k, Income: money(buckets[k].income), Expenses: money(buckets[k].expenses)})
	}
	return points
}

// BudgetProgress reports spending against every budget of month/year.
// Family budgets are measured against family transactions.
func (s *reportService) BudgetProgress(ctx context.Context, sess state.Session, month, year int) ([]dto.BudgetProgress, error) {
	snap := sess.Snapshot()
	loc := location(snap.Settings)
	if month == 0 || year == 0 {
		now := s.now().In(loc)
		month, year = int(now.Month()), now.Year()
	}
	if month < 1 || month > 12 {
		return nil, errs.NewValidationError("month must be between 1 and 12")
	}
	threshold := decimal.NewFromInt(int64(snap.Settings.WarningThreshold))
	hundred := decimal.NewFromInt(100)

	out := []dto.BudgetProgress{}
	for _, b := range snap.Budgets {
		if b.Month != month || b.Year != year {
			continue
		}
		spent := decimal.Zero
		for _, tx := range sourceTransactions(snap, b.IsFamily) {
			d := tx.Date.In(loc)
			if tx.Amount < 0 && tx.Category == b.Category && int(d.Month()) == month && d.Year() == year {
				spent = spent.Add(decimal.NewFromFloat(tx.Amount).Abs())
			}
		}

		limit := decimal.NewFromFloat(b.Limit)
		pct := decimal.Zero
		if limit.IsPositive() {
			pct = spent.Div(limit).Mul(hundred)
		}
		status := dto.BudgetGood
		switch {
		case pct.GreaterThanOrEqual(hundred):
			status = dto.BudgetOver
		case pct.GreaterThanOrEqual(threshold):
			status = dto.BudgetWarning
		}

		out = append(out, dto.BudgetProgress{
			Budget:     b,
			Spent:      money(spent),
			Remaining:  money(limit.Sub(spent)),
			Percentage: money(pct),
			Status:     status,
		})
	}

	logger.FromContext(ctx).Debug("budget progress computed", "month", month, "year", year, "budgets", len(out))
	return out, nil
}

// ExportCSV writes the transactions of the range as CSV.
func (s *reportService) ExportCSV(ctx context.Context, sess state.Session, q dto.ReportQuery, w io.Writer) error {
	snap := sess.Snapshot()
	loc := location(snap.Settings)
	from, to, err := resolveRange(q.Range, s.now().In(loc))
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range sourceTransactions(snap, q.Family) {
		if !inRange(tx.Date, from, to) {
			continue
		}
		category := tx.Category
		if category == "" {
			category = models.DefaultCategory
		}
		kind := "Expense"
		if tx.Amount > 0 {
			kind = "Income"
		}
		row := []string{
			tx.Date.In(loc).Format(csvDateLayout),
			tx.Text,
			category,
			decimal.NewFromFloat(tx.Amount).Abs().StringFixed(2),
			kind,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseCSV reads rows in the ExportCSV layout. The Type column gives the sign.
// Every row is validated before any is returned.
func ParseCSV(r io.Reader, loc *time.Location) ([]models.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errs.NewValidationError("csv is empty")
	}
	if err != nil {
		return nil, errs.NewValidationError("invalid csv: " + err.Error())
	}
	for i, col := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, errs.NewValidationError("unexpected csv header " + strings.Join(header, ","))
		}
	}

	var out []models.Transaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.NewValidationError("invalid csv: " + err.Error())
		}

		date, err := time.ParseInLocation(csvDateLayout, rec[0], loc)
		if err != nil {
			return nil, errs.NewValidationError(fmt.Sprintf("line %d: invalid date %q", line, rec[0]))
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[3]))
		if err != nil {
			return nil, errs.NewValidationError(fmt.Sprintf("line %d: invalid amount %q", line, rec[3]))
		}
		switch strings.ToLower(strings.TrimSpace(rec[4])) {
		case "income":
			amount = amount.Abs()
		case "expense":
			amount = amount.Abs().Neg()
		default:
			return nil, errs.NewValidationError(fmt.Sprintf("line %d: type must be Income or Expense", line))
		}

		tx := models.Transaction{
			Text:     rec[1],
			Category: rec[2],
			Amount:   amount.InexactFloat64(),
			Date:     date,
		}
		if err := validateTransaction(tx); err != nil {
			return nil, errs.NewValidationError(fmt.Sprintf("line %d: %s", line, err.Error()))
		}
		out = append(out, tx)
	}
	return out, nil
}

// ImportCSV adds every row as a personal transaction. Rows are added last
// to first so the container ends up in file order.
func (s *reportService) ImportCSV(ctx context.Context, sess state.Session, r io.Reader) (int, error) {
	txs, err := ParseCSV(r, location(sess.Snapshot().Settings))
	if err != nil {
		return 0, err
	}
	for i := len(txs) - 1; i >= 0; i-- {
		if _, err := s.ledger.AddTransaction(ctx, sess, txs[i]); err != nil {
			return len(txs) - 1 - i, err
		}
	}
	logger.FromContext(ctx).Info("transactions imported", "count", len(txs))
	return len(txs), nil
}

// Backup snapshots the caller's personal data.
func (s *reportService) Backup(_ context.Context, sess state.Session) dto.Backup {
	snap := sess.Snapshot()
	return dto.Backup{
		Transactions: snap.Transactions,
		Budgets:      snap.Budgets,
		Goals:        snap.Goals,
		Settings:     snap.Settings,
		ExportDate:   s.now().UTC(),
	}
}

package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/GregMSThompson/expenseflow/internal/dto"
	"github.com/GregMSThompson/expenseflow/internal/middleware"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/session"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/helpers"
)

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	handleErrorCalled bool
	handleError       error

	writeErrorCalled bool
	writeErrorStatus int
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data
	w.WriteHeader(status)
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeErrorCalled = true
	s.writeErrorStatus = status
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

// newRequest builds a request carrying a fresh guest session.
func newRequest(method, target, body string) (*http.Request, *session.Session) {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	sess := session.New(nil, nil, helpers.TestLogger())
	req := httptest.NewRequest(method, target, rdr)
	return req.WithContext(middleware.WithSession(helpers.TestCtx(), sess)), sess
}

type stubLedgerService struct {
	called string
	tx     models.Transaction
	ref    models.TransactionRef
	budget models.Budget
	goal   models.Goal
	id     string
	err    error
}

func (s *stubLedgerService) AddTransaction(_ context.Context, _ state.Session, tx models.Transaction) (models.Transaction, error) {
	s.called, s.tx = "AddTransaction", tx
	tx.ID = "t1"
	return tx, s.err
}

func (s *stubLedgerService) UpdateTransaction(_ context.Context, _ state.Session, tx models.Transaction) (models.Transaction, error) {
	s.called, s.tx = "UpdateTransaction", tx
	return tx, s.err
}

func (s *stubLedgerService) DeleteTransaction(_ context.Context, _ state.Session, ref models.TransactionRef) error {
	s.called, s.ref = "DeleteTransaction", ref
	return s.err
}

func (s *stubLedgerService) AddBudget(_ context.Context, _ state.Session, b models.Budget) (models.Budget, error) {
	s.called, s.budget = "AddBudget", b
	return b, s.err
}

func (s *stubLedgerService) UpdateBudget(_ context.Context, _ state.Session, b models.Budget) (models.Budget, error) {
	s.called, s.budget = "UpdateBudget", b
	return b, s.err
}

func (s *stubLedgerService) DeleteBudget(_ context.Context, _ state.Session, id string) error {
	s.called, s.id = "DeleteBudget", id
	return s.err
}

func (s *stubLedgerService) AddRecurring(_ context.Context, _ state.Session, r models.RecurringTransaction) (models.RecurringTransaction, error) {
	s.called = "AddRecurring"
	return r, s.err
}

func (s *stubLedgerService) UpdateRecurring(_ context.Context, _ state.Session, r models.RecurringTransaction) (models.RecurringTransaction, error) {
	s.called, s.id = "UpdateRecurring", r.ID
	return r, s.err
}

func (s *stubLedgerService) DeleteRecurring(_ context.Context, _ state.Session, id string) error {
	s.called, s.id = "DeleteRecurring", id
	return s.err
}

func (s *stubLedgerService) AddGoal(_ context.Context, _ state.Session, g models.Goal) (models.Goal, error) {
	s.called, s.goal = "AddGoal", g
	return g, s.err
}

func (s *stubLedgerService) UpdateGoal(_ context.Context, _ state.Session, g models.Goal) (models.Goal, error) {
	s.called, s.goal = "UpdateGoal", g
	return g, s.err
}

func (s *stubLedgerService) DeleteGoal(_ context.Context, _ state.Session, id string) error {
	s.called, s.id = "DeleteGoal", id
	return s.err
}

type stubPreferencesService struct {
	called string
	patch  models.SettingsPatch
	name   string
	err    error
}

func (s *stubPreferencesService) UpdateSettings(_ context.Context, sess state.Session, patch models.SettingsPatch) (models.Settings, error) {
	s.called, s.patch = "UpdateSettings", patch
	return patch.Apply(sess.Snapshot().Settings), s.err
}

func (s *stubPreferencesService) AddCategory(_ context.Context, _ state.Session, name string) ([]string, error) {
	s.called, s.name = "AddCategory", name
	return []string{name}, s.err
}

func (s *stubPreferencesService) DeleteCategory(_ context.Context, _ state.Session, name string) ([]string, error) {
	s.called, s.name = "DeleteCategory", name
	return nil, s.err
}

func (s *stubPreferencesService) ClearAllData(_ context.Context, _ state.Session) error {
	s.called = "ClearAllData"
	return s.err
}

type stubFamilyService struct {
	called string
	arg    string
	err    error
}

func (s *stubFamilyService) CreateFamily(_ context.Context, _ state.Session, name string) (*models.Family, error) {
	s.called, s.arg = "CreateFamily", name
	return &models.Family{FamilyID: "f1", FamilyName: name}, s.err
}

func (s *stubFamilyService) InviteMember(_ context.Context, _ state.Session, email string) (models.Invitation, error) {
	s.called, s.arg = "InviteMember", email
	return models.Invitation{ID: "i1"}, s.err
}

func (s *stubFamilyService) AcceptInvitation(_ context.Context, _ state.Session, invID string) (*models.Family, error) {
	s.called, s.arg = "AcceptInvitation", invID
	return &models.Family{FamilyID: "f1"}, s.err
}

func (s *stubFamilyService) DeclineInvitation(_ context.Context, _ state.Session, invID string) error {
	s.called, s.arg = "DeclineInvitation", invID
	return s.err
}

func (s *stubFamilyService) CancelInvitation(_ context.Context, _ state.Session, invID string) error {
	s.called, s.arg = "CancelInvitation", invID
	return s.err
}

func (s *stubFamilyService) LeaveFamily(_ context.Context, _ state.Session) error {
	s.called = "LeaveFamily"
	return s.err
}

func (s *stubFamilyService) RemoveMember(_ context.Context, _ state.Session, uid string) (*models.Family, error) {
	s.called, s.arg = "RemoveMember", uid
	return &models.Family{FamilyID: "f1"}, s.err
}

type stubReportService struct {
	called      string
	query       dto.ReportQuery
	month, year int
	csv         string
	imported    string
	err         error
}

func (s *stubReportService) Summary(_ context.Context, _ state.Session, q dto.ReportQuery) (dto.Summary, error) {
	s.called, s.query = "Summary", q
	return dto.Summary{Range: q.Range}, s.err
}

func (s *stubReportService) BudgetProgress(_ context.Context, _ state.Session, month, year int) ([]dto.BudgetProgress, error) {
	s.called, s.month, s.year = "BudgetProgress", month, year
	return []dto.BudgetProgress{}, s.err
}

func (s *stubReportService) ExportCSV(_ context.Context, _ state.Session, q dto.ReportQuery, w io.Writer) error {
	s.called, s.query = "ExportCSV", q
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, s.csv)
	return err
}

func (s *stubReportService) ImportCSV(_ context.Context, _ state.Session, r io.Reader) (int, error) {
	s.called = "ImportCSV"
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.imported = string(b)
	return strings.Count(s.imported, "\n") - 1, s.err
}

func (s *stubReportService) Backup(_ context.Context, sess state.Session) dto.Backup {
	s.called = "Backup"
	return dto.Backup{Settings: sess.Snapshot().Settings}
}

type stubSessionManager struct {
	login     *models.Identity
	loggedOut string
	sess      *session.Session
	err       error
}

func (s *stubSessionManager) Login(_ context.Context, id models.Identity) (*session.Session, error) {
	s.login = &id
	return s.sess, s.err
}

func (s *stubSessionManager) Logout(uid string) {
	s.loggedOut = uid
}

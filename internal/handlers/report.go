package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/expenseflow/internal/dto"
	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/response"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/logger"
)

type reportService interface {
	Summary(ctx context.Context, sess state.Session, q dto.ReportQuery) (dto.Summary, error)
	BudgetProgress(ctx context.Context, sess state.Session, month, year int) ([]dto.BudgetProgress, error)
	ExportCSV(ctx context.Context, sess state.Session, q dto.ReportQuery, w io.Writer) error
	ImportCSV(ctx context.Context, sess state.Session, r io.Reader) (int, error)
	Backup(ctx context.Context, sess state.Session) dto.Backup
}

type reportHandlers struct {
	ResponseHandler response.ResponseHandler
	ReportSvc       reportService
}

func NewReportHandlers(deps *Deps) *reportHandlers {
	return &reportHandlers{
		ResponseHandler: deps.ResponseHandler,
		ReportSvc:       deps.ReportSvc,
	}
}

func (h *reportHandlers) ReportRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/summary", h.Summary)
	r.Get("/budgets", h.BudgetProgress)
	r.Get("/export.csv", h.ExportCSV)
	r.Post("/import.csv", h.ImportCSV)
	r.Get("/backup", h.Backup)
	return r
}

func reportQuery(r *http.Request) dto.ReportQuery {
	q := r.URL.Query()
	family, _ := strconv.ParseBool(q.Get("family"))
	return dto.ReportQuery{
		Range:  q.Get("range"),
		View:   q.Get("view"),
		Family: family,
	}
}

// intParam parses an optional integer query parameter; missing means 0.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewValidationError("invalid " + name)
	}
	return n, nil
}

func (h *reportHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	summary, err := h.ReportSvc.Summary(r.Context(), sess, reportQuery(r))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, summary)
}

func (h *reportHandlers) BudgetProgress(w http.ResponseWriter, r *http.Request) {
	month, err := intParam(r, "month")
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	year, err := intParam(r, "year")
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	progress, err := h.ReportSvc.BudgetProgress(r.Context(), sess, month, year)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, progress)
}

// ExportCSV renders into a buffer first so a failure can still produce a
// JSON error response.
func (h *reportHandlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.ReportSvc.ExportCSV(r.Context(), sess, reportQuery(r), &buf); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Error("failed to write csv export", "error", err)
	}
}

func (h *reportHandlers) ImportCSV(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	n, err := h.ReportSvc.ImportCSV(r.Context(), sess, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, dto.ImportResult{Imported: n})
}

func (h *reportHandlers) Backup(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="backup.json"`)
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.ReportSvc.Backup(r.Context(), sess))
}

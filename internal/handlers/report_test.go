package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/expenseflow/internal/dto"
	"github.com/GregMSThompson/expenseflow/internal/errs"
)

func newReportHandlers() (*reportHandlers, *stubReportService, *stubResponseHandler) {
	svc := &stubReportService{}
	resp := &stubResponseHandler{}
	return NewReportHandlers(&Deps{ResponseHandler: resp, ReportSvc: svc}), svc, resp
}

func TestSummaryQuery(t *testing.T) {
	h, svc, resp := newReportHandlers()

	req, _ := newRequest(http.MethodGet, "/summary?range=lastMonth&view=weekly&family=true", "")
	h.ReportRoutes().ServeHTTP(httptest.NewRecorder(), req)

	want := dto.ReportQuery{Range: "lastMonth", View: "weekly", Family: true}
	if svc.query != want {
		t.Fatalf("query = %+v, want %+v", svc.query, want)
	}
	if got := resp.writeSuccessData.(dto.Summary); got.Range != "lastMonth" {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestBudgetProgressParams(t *testing.T) {
	h, svc, _ := newReportHandlers()

	req, _ := newRequest(http.MethodGet, "/budgets?month=3&year=2024", "")
	h.ReportRoutes().ServeHTTP(httptest.NewRecorder(), req)
	if svc.month != 3 || svc.year != 2024 {
		t.Fatalf("got %d/%d", svc.month, svc.year)
	}

	req, _ = newRequest(http.MethodGet, "/budgets", "")
	h.ReportRoutes().ServeHTTP(httptest.NewRecorder(), req)
	if svc.month != 0 || svc.year != 0 {
		t.Fatalf("missing params should be zero, got %d/%d", svc.month, svc.year)
	}
}

func TestBudgetProgressInvalidMonth(t *testing.T) {
	h, svc, resp := newReportHandlers()

	req, _ := newRequest(http.MethodGet, "/budgets?month=june", "")
	h.ReportRoutes().ServeHTTP(httptest.NewRecorder(), req)

	var verr *errs.ValidationError
	if svc.called != "" || !errors.As(resp.handleError, &verr) {
		t.Fatalf("expected validation error, got %v", resp.handleError)
	}
}

func TestExportCSV(t *testing.T) {
	h, svc, resp := newReportHandlers()
	svc.csv = "Date,Description,Category,Amount,Type\n"

	req, _ := newRequest(http.MethodGet, "/export.csv?range=all", "")
	rr := httptest.NewRecorder()
	h.ReportRoutes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.String() != svc.csv {
		t.Fatalf("unexpected response %d %q", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type %q", ct)
	}
	if svc.query.Range != "all" || resp.writeSuccessCalled {
		t.Fatalf("unexpected export call %+v", svc.query)
	}
}

func TestExportCSVError(t *testing.T) {
	h, svc, resp := newReportHandlers()
	svc.err = errs.NewValidationError("unknown range")

	req, _ := newRequest(http.MethodGet, "/export.csv?range=decade", "")
	rr := httptest.NewRecorder()
	h.ReportRoutes().ServeHTTP(rr, req)

	if !resp.handleErrorCalled || rr.Body.Len() != 0 {
		t.Fatalf("expected error response only, body %q", rr.Body.String())
	}
}

func TestImportCSV(t *testing.T) {
	h, svc, resp := newReportHandlers()
	body := "Date,Description,Category,Amount,Type\n2025-06-01,Salary,Income,1000.00,Income\n"

	req, _ := newRequest(http.MethodPost, "/import.csv", body)
	h.ReportRoutes().ServeHTTP(httptest.NewRecorder(), req)

	if svc.imported != body {
		t.Fatalf("service got %q", svc.imported)
	}
	if got := resp.writeSuccessData.(dto.ImportResult); got.Imported != 1 || resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestBackup(t *testing.T) {
	h, svc, resp := newReportHandlers()

	req, _ := newRequest(http.MethodGet, "/backup", "")
	rr := httptest.NewRecorder()
	h.ReportRoutes().ServeHTTP(rr, req)

	if svc.called != "Backup" || !resp.writeSuccessCalled {
		t.Fatalf("backup not written")
	}
	if rr.Header().Get("Content-Disposition") == "" {
		t.Fatalf("expected attachment header")
	}
}

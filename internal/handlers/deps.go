package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/expenseflow/internal/middleware"
	"github.com/GregMSThompson/expenseflow/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Middleware      *middleware.Middleware
	SessionMgr      sessionManager
	LedgerSvc       ledgerService
	PreferencesSvc  preferencesService
	FamilySvc       familyService
	ReportSvc       reportService
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/GregMSThompson/expenseflow/internal/handlers"
	"github.com/GregMSThompson/expenseflow/internal/middleware"
)

func NewRouter(deps *handlers.Deps, corsOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(deps.Middleware.OptionalAuth)

	sh := handlers.NewSessionHandlers(deps)
	lh := handlers.NewLedgerHandlers(deps)
	ph := handlers.NewPreferencesHandlers(deps)
	fh := handlers.NewFamilyHandlers(deps)
	rh := handlers.NewReportHandlers(deps)

	// login bypasses Session so the sync only runs once
	r.With(deps.Middleware.RequireAuth).Mount("/session", sh.SessionRoutes())

	r.Group(func(r chi.Router) {
		r.Use(deps.Middleware.Session)

		r.Get("/state", sh.GetState)
		r.Mount("/transactions", lh.TransactionRoutes())
		r.Mount("/budgets", lh.BudgetRoutes())
		r.Mount("/recurring", lh.RecurringRoutes())
		r.Mount("/goals", lh.GoalRoutes())
		r.Mount("/categories", ph.CategoryRoutes())
		r.Mount("/settings", ph.SettingsRoutes())
		r.Delete("/data", ph.ClearAllData)
		r.Mount("/family", fh.FamilyRoutes())
		r.Mount("/reports", rh.ReportRoutes())
	})

	return r
}

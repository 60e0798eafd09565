package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GregMSThompson/expenseflow/internal/bootstrap"
	"github.com/GregMSThompson/expenseflow/internal/config"
	"github.com/GregMSThompson/expenseflow/internal/handlers"
	"github.com/GregMSThompson/expenseflow/internal/middleware"
	"github.com/GregMSThompson/expenseflow/internal/response"
	"github.com/GregMSThompson/expenseflow/internal/router"
	"github.com/GregMSThompson/expenseflow/internal/services"
	"github.com/GregMSThompson/expenseflow/internal/session"
	"github.com/GregMSThompson/expenseflow/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	cfg, err := config.Load()
	exitOnError("config failed", err, slog.Default())

	// bootstrap
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	policy, err := services.ParseDeletePolicy(cfg.DeletePolicy)
	exitOnError("invalid delete policy", err, bs.Log)

	// stores
	tstore := store.NewTransactionStore(bs.Firestore)
	bgstore := store.NewBudgetStore(bs.Firestore)
	rcstore := store.NewRecurringStore(bs.Firestore)
	glstore := store.NewGoalStore(bs.Firestore)
	pstore := store.NewPreferencesStore(bs.Firestore)
	ustore := store.NewUserStore(bs.Firestore)
	fstore := store.NewFamilyStore(bs.Firestore)
	istore := store.NewInvitationStore(bs.Firestore)

	// services
	syncsvc := services.NewSyncService(services.SyncStores{
		Transactions: tstore,
		Budgets:      bgstore,
		Recurring:    rcstore,
		Goals:        glstore,
		Preferences:  pstore,
		Users:        ustore,
		Families:     fstore,
		Invitations:  istore,
	})
	ledger := services.NewLedgerService(tstore, bgstore, rcstore, glstore, ustore, policy)
	prefs := services.NewPreferencesService(pstore, ustore, bs.Local)
	family := services.NewFamilyService(fstore, ustore, istore, tstore, bs.Publisher)
	reports := services.NewReportService(ledger)

	// sessions
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	sessions, err := session.NewManager(startCtx, bs.Local, syncsvc, bs.Log)
	cancel()
	exitOnError("guest session failed", err, bs.Log)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Middleware = middleware.NewMiddleware(bs.Firebase, sessions, rh)
	deps.SessionMgr = sessions
	deps.LedgerSvc = ledger
	deps.PreferencesSvc = prefs
	deps.FamilySvc = family
	deps.ReportSvc = reports

	// router
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.NewRouter(deps, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		bs.Log.Info("server listening", "addr", srv.Addr, "delete_policy", policy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			bs.Log.Error("server start failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		bs.Log.Error("server shutdown failed", "error", err)
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/response"
	"github.com/GregMSThompson/expenseflow/internal/state"
)

type ledgerService interface {
	AddTransaction(ctx context.Context, sess state.Session, tx models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, sess state.Session, tx models.Transaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, sess state.Session, ref models.TransactionRef) error

	AddBudget(ctx context.Context, sess state.Session, b models.Budget) (models.Budget, error)
	UpdateBudget(ctx context.Context, sess state.Session, b models.Budget) (models.Budget, error)
	DeleteBudget(ctx context.Context, sess state.Session, id string) error

	AddRecurring(ctx context.Context, sess state.Session, r models.RecurringTransaction) (models.RecurringTransaction, error)
	UpdateRecurring(ctx context.Context, sess state.Session, r models.RecurringTransaction) (models.RecurringTransaction, error)
	DeleteRecurring(ctx context.Context, sess state.Session, id string) error

	AddGoal(ctx context.Context, sess state.Session, g models.Goal) (models.Goal, error)
	UpdateGoal(ctx context.Context, sess state.Session, g models.Goal) (models.Goal, error)
	DeleteGoal(ctx context.Context, sess state.Session, id string) error
}

type ledgerHandlers struct {
	ResponseHandler response.ResponseHandler
	LedgerSvc       ledgerService
}

func NewLedgerHandlers(deps *Deps) *ledgerHandlers {
	return &ledgerHandlers{
		ResponseHandler: deps.ResponseHandler,
		LedgerSvc:       deps.LedgerSvc,
	}
}

func (h *ledgerHandlers) TransactionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.AddTransaction)
	r.Put("/{id}", h.UpdateTransaction)
	r.Delete("/{id}", h.DeleteTransaction)
	return r
}

func (h *ledgerHandlers) BudgetRoutes() chi.Router {
	return recordRoutes(h.ResponseHandler, h.LedgerSvc.AddBudget, h.LedgerSvc.UpdateBudget, h.LedgerSvc.DeleteBudget,
		func(b *models.Budget, id string) { b.ID = id })
}

func (h *ledgerHandlers) RecurringRoutes() chi.Router {
	return recordRoutes(h.ResponseHandler, h.LedgerSvc.AddRecurring, h.LedgerSvc.UpdateRecurring, h.LedgerSvc.DeleteRecurring,
		func(rt *models.RecurringTransaction, id string) { rt.ID = id })
}

func (h *ledgerHandlers) GoalRoutes() chi.Router {
	return recordRoutes(h.ResponseHandler, h.LedgerSvc.AddGoal, h.LedgerSvc.UpdateGoal, h.LedgerSvc.DeleteGoal,
		func(g *models.Goal, id string) { g.ID = id })
}

func (h *ledgerHandlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := decodeJSON(w, r, &tx); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	created, err := h.LedgerSvc.AddTransaction(r.Context(), sess, tx)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, created)
}

func (h *ledgerHandlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := decodeJSON(w, r, &tx); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	tx.ID = chi.URLParam(r, "id")
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	updated, err := h.LedgerSvc.UpdateTransaction(r.Context(), sess, tx)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, updated)
}

// DeleteTransaction deletes a personal transaction, or a family one when
// familyId is given.
func (h *ledgerHandlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ref := models.TransactionRef{ID: chi.URLParam(r, "id")}
	if familyID := r.URL.Query().Get("familyId"); familyID != "" {
		ref.Owner = models.FamilyOwner(familyID)
	}
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.LedgerSvc.DeleteTransaction(r.Context(), sess, ref); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// recordRoutes builds the add/update/delete routes shared by budgets,
// recurring transactions and goals.
func recordRoutes[T any](
	rh response.ResponseHandler,
	add func(context.Context, state.Session, T) (T, error),
	update func(context.Context, state.Session, T) (T, error),
	del func(context.Context, state.Session, string) error,
	setID func(*T, string),
) chi.Router {
	r := chi.NewRouter()

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var rec T
		if err := decodeJSON(w, r, &rec); err != nil {
			rh.HandleError(w, r, err)
			return
		}
		sess, err := currentSession(r)
		if err != nil {
			rh.HandleError(w, r, err)
			return
		}
		created, err := add(r.Context(), sess, rec)
		if err != nil {
			rh.HandleError(w, r, err)
			return
		}
		rh.WriteSuccess(w, r, http.StatusCreated, created)
	})

	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		var rec T
		if err := decodeJSON(w, r, &rec); err != nil {
			rh.HandleError(w, r, err)
			return
		}
		setID(&rec, chi.URLParam(r, "id"))
		sess, err := currentSession(r)
		if err != nil {
			rh.HandleError(w, r, err)
			return
		}
		updated, err := update(r.Context(), sess, rec)
		if err != nil {
			rh.HandleError(w, r, err)
			return
		}
		rh.WriteSuccess(w, r, http.StatusOK, updated)
	})

	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		sess, err := currentSession(r)
		if err != nil {
			rh.HandleError(w, r, err)
			return
		}
		if err := del(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
			rh.HandleError(w, r, err)
			return
		}
		rh.WriteSuccess(w, r, http.StatusOK, nil)
	})

	return r
}

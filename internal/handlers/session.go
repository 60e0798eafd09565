package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/expenseflow/internal/dto"
	"github.com/GregMSThompson/expenseflow/internal/middleware"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/response"
	"github.com/GregMSThompson/expenseflow/internal/session"
)

type sessionManager interface {
	Login(ctx context.Context, id models.Identity) (*session.Session, error)
	Logout(uid string)
}

type sessionHandlers struct {
	ResponseHandler response.ResponseHandler
	SessionMgr      sessionManager
}

func NewSessionHandlers(deps *Deps) *sessionHandlers {
	return &sessionHandlers{
		ResponseHandler: deps.ResponseHandler,
		SessionMgr:      deps.SessionMgr,
	}
}

// SessionRoutes expects RequireAuth in front of it.
func (h *sessionHandlers) SessionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Login)
	r.Delete("/", h.Logout)
	return r
}

// Login runs a full sync for the caller and returns the fresh snapshot.
func (h *sessionHandlers) Login(w http.ResponseWriter, r *http.Request) {
	id := middleware.Identity(r.Context())
	if id == nil {
		h.ResponseHandler.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "sign in required")
		return
	}
	sess, err := h.SessionMgr.Login(r.Context(), *id)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.StateResponse{
		Identity: sess.Identity(),
		State:    sess.Snapshot(),
	})
}

func (h *sessionHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.SessionMgr.Logout(middleware.UID(r.Context()))
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// GetState returns the snapshot of the caller's session.
func (h *sessionHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.StateResponse{
		Identity: sess.Identity(),
		State:    sess.Snapshot(),
	})
}

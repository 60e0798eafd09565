package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/expenseflow/internal/dto"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/response"
	"github.com/GregMSThompson/expenseflow/internal/state"
)

type familyService interface {
	CreateFamily(ctx context.Context, sess state.Session, name string) (*models.Family, error)
	InviteMember(ctx context.Context, sess state.Session, email string) (models.Invitation, error)
	AcceptInvitation(ctx context.Context, sess state.Session, invID string) (*models.Family, error)
	DeclineInvitation(ctx context.Context, sess state.Session, invID string) error
	CancelInvitation(ctx context.Context, sess state.Session, invID string) error
	LeaveFamily(ctx context.Context, sess state.Session) error
	RemoveMember(ctx context.Context, sess state.Session, uid string) (*models.Family, error)
}

type familyHandlers struct {
	ResponseHandler response.ResponseHandler
	FamilySvc       familyService
}

func NewFamilyHandlers(deps *Deps) *familyHandlers {
	return &familyHandlers{
		ResponseHandler: deps.ResponseHandler,
		FamilySvc:       deps.FamilySvc,
	}
}

func (h *familyHandlers) FamilyRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateFamily)
	r.Delete("/membership", h.LeaveFamily)
	r.Delete("/members/{uid}", h.RemoveMember)
	r.Route("/invitations", func(r chi.Router) {
		r.Post("/", h.InviteMember)
		r.Delete("/{id}", h.CancelInvitation)
		r.Post("/{id}/accept", h.AcceptInvitation)
		r.Post("/{id}/decline", h.DeclineInvitation)
	})
	return r
}

func (h *familyHandlers) CreateFamily(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFamilyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	family, err := h.FamilySvc.CreateFamily(r.Context(), sess, req.Name)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, family)
}

func (h *familyHandlers) InviteMember(w http.ResponseWriter, r *http.Request) {
	var req dto.InviteMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	inv, err := h.FamilySvc.InviteMember(r.Context(), sess, req.Email)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, inv)
}

func (h *familyHandlers) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	family, err := h.FamilySvc.AcceptInvitation(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, family)
}

func (h *familyHandlers) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.FamilySvc.DeclineInvitation(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *familyHandlers) CancelInvitation(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.FamilySvc.CancelInvitation(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *familyHandlers) LeaveFamily(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.FamilySvc.LeaveFamily(r.Context(), sess); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *familyHandlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	family, err := h.FamilySvc.RemoveMember(r.Context(), sess, chi.URLParam(r, "uid"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, family)
}

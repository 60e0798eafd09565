package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/expenseflow/internal/dto"
	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/response"
	"github.com/GregMSThompson/expenseflow/internal/state"
)

type preferencesService interface {
	UpdateSettings(ctx context.Context, sess state.Session, patch models.SettingsPatch) (models.Settings, error)
	AddCategory(ctx context.Context, sess state.Session, name string) ([]string, error)
	DeleteCategory(ctx context.Context, sess state.Session, name string) ([]string, error)
	ClearAllData(ctx context.Context, sess state.Session) error
}

type preferencesHandlers struct {
	ResponseHandler response.ResponseHandler
	PreferencesSvc  preferencesService
}

func NewPreferencesHandlers(deps *Deps) *preferencesHandlers {
	return &preferencesHandlers{
		ResponseHandler: deps.ResponseHandler,
		PreferencesSvc:  deps.PreferencesSvc,
	}
}

func (h *preferencesHandlers) CategoryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.AddCategory)
	r.Delete("/{name}", h.DeleteCategory)
	return r
}

func (h *preferencesHandlers) SettingsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetSettings)
	r.Patch("/", h.UpdateSettings)
	return r
}

func (h *preferencesHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, sess.Snapshot().Settings)
}

func (h *preferencesHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	settings, err := h.PreferencesSvc.UpdateSettings(r.Context(), sess, patch)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, settings)
}

func (h *preferencesHandlers) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	categories, err := h.PreferencesSvc.AddCategory(r.Context(), sess, req.Name)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, categories)
}

func (h *preferencesHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid category name"))
		return
	}
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	categories, err := h.PreferencesSvc.DeleteCategory(r.Context(), sess, name)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, categories)
}

// ClearAllData wipes the caller's app data, remote and local.
func (h *preferencesHandlers) ClearAllData(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.PreferencesSvc.ClearAllData(r.Context(), sess); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

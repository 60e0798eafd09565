package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/pkg/logger"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	}); err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", code)
	}
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var (
		notFound        *errs.NotFoundError
		alreadyExists   *errs.AlreadyExistsError
		validation      *errs.ValidationError
		forbidden       *errs.ForbiddenError
		unauthenticated *errs.UnauthenticatedError
		expired         *errs.ExpiredError
		conflict        *errs.ConflictError
		database        *errs.DatabaseError
	)

	switch {
	case errors.As(err, &notFound):
		log.Warn("resource not found", "error", notFound.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", notFound.Message)

	case errors.As(err, &alreadyExists):
		log.Warn("resource already exists", "error", alreadyExists.Message)
		h.WriteError(w, r, http.StatusConflict, "already_exists", alreadyExists.Message)

	case errors.As(err, &validation):
		log.Warn("validation failed", "error", validation.Message)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_input", validation.Message)

	case errors.As(err, &forbidden):
		log.Warn("forbidden", "error", forbidden.Message)
		h.WriteError(w, r, http.StatusForbidden, "forbidden", forbidden.Message)

	case errors.As(err, &unauthenticated):
		log.Warn("unauthenticated", "error", unauthenticated.Message)
		h.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", unauthenticated.Message)

	case errors.As(err, &expired):
		log.Warn("resource expired", "error", expired.Message)
		h.WriteError(w, r, http.StatusGone, "expired", expired.Message)

	case errors.As(err, &conflict):
		log.Warn("conflicting state", "error", conflict.Message)
		h.WriteError(w, r, http.StatusConflict, "conflict", conflict.Message)

	case errors.As(err, &database):
		log.Error("database error",
			"operation", database.Operation,
			"error", database.Error())
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}

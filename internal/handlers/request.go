package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/middleware"
	"github.com/GregMSThompson/expenseflow/internal/state"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.NewValidationError("invalid request body")
	}
	return nil
}

// currentSession returns the session the Session middleware attached.
func currentSession(r *http.Request) (state.Session, error) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		return nil, errs.NewUnauthenticatedError()
	}
	return sess, nil
}

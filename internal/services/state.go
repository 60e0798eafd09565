package services

import (
	"strings"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
)

// signedIn returns the session identity or an UnauthenticatedError.
func signedIn(sess state.Session) (*models.Identity, error) {
	id := sess.Identity()
	if id == nil {
		return nil, errs.NewUnauthenticatedError()
	}
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

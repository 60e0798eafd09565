package dto

import (
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
)

type CreateFamilyRequest struct {
	Name string `json:"name"`
}

type InviteMemberRequest struct {
	Email string `json:"email"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

// StateResponse is the full snapshot a client renders from.
type StateResponse struct {
	Identity *models.Identity `json:"identity"`
	State    state.State      `json:"state"`
}

type ImportResult struct {
	Imported int `json:"imported"`
}

package state

import "github.com/GregMSThompson/expenseflow/internal/models"

// Session is a container bound to the identity that owns it. Write paths
// read the identity and snapshot and change state only through Dispatch.
type Session interface {
	Identity() *models.Identity
	Snapshot() State
	Dispatch(a Action)
}

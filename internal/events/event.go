// Package events publishes family membership changes for downstream
// consumers (notification mailers, audit).
package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	InvitationCreated  = "invitation.created"
	InvitationAccepted = "invitation.accepted"
	InvitationDeclined = "invitation.declined"
	InvitationCanceled = "invitation.canceled"
	MemberLeft         = "member.left"
	MemberRemoved      = "member.removed"
	FamilyDeleted      = "family.deleted"
)

type Event struct {
	Type         string    `json:"type"`
	FamilyID     string    `json:"familyId"`
	ActorUID     string    `json:"actorUid"`
	SubjectUID   string    `json:"subjectUid,omitempty"`
	InvitationID string    `json:"invitationId,omitempty"`
	Email        string    `json:"email,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

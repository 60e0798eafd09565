package models

import (
	"time"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// InvitationTTL is how long an invitation stays acceptable.
const InvitationTTL = 7 * 24 * time.Hour

type Invitation struct {
	ID            string           `firestore:"-" json:"id"`
	FamilyID      string           `firestore:"familyId" json:"familyId"`
	FamilyName    string           `firestore:"familyName" json:"familyName"`
	InvitedBy     string           `firestore:"invitedBy" json:"invitedBy"`
	InvitedByName string           `firestore:"invitedByName" json:"invitedByName"`
	InvitedEmail  string           `firestore:"invitedEmail" json:"invitedEmail"`
	Status        InvitationStatus `firestore:"status" json:"status"`
	CreatedAt     time.Time        `firestore:"createdAt" json:"createdAt"`
	ExpiresAt     time.Time        `firestore:"expiresAt" json:"expiresAt"`
}

func (i *Invitation) SetID(id string) { i.ID = id }

// Expired reports whether now is past the expiry. Expiry is only checked
// when an invitation is accepted; nothing sweeps stale invitations.
func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

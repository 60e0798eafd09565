package models

import (
	"time"
)

// Profile is the users/{uid} document. FamilyID and Role are empty when the
// user does not belong to a family.
type Profile struct {
	UID         string    `firestore:"-" json:"uid"`
	Email       string    `firestore:"email" json:"email"`
	DisplayName string    `firestore:"displayName" json:"displayName"`
	FamilyID    string    `firestore:"familyId,omitempty" json:"familyId,omitempty"`
	Role        Role      `firestore:"role,omitempty" json:"role,omitempty"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

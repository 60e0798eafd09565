package models

import (
	"sort"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Member is one entry of a family's embedded member map.
type Member struct {
	Role     Role      `firestore:"role" json:"role"`
	JoinedAt time.Time `firestore:"joinedAt" json:"joinedAt"`
	Name     string    `firestore:"name" json:"name"`
	Email    string    `firestore:"email" json:"email"`
}

// FamilyMember is a Member expanded with its uid, as listed to clients.
type FamilyMember struct {
	UID string `json:"uid"`
	Member
}

type FamilySettings struct {
	SharedBudgets bool `firestore:"sharedBudgets" json:"sharedBudgets"`
}

type Family struct {
	FamilyID   string            `firestore:"familyId" json:"familyId"`
	FamilyName string            `firestore:"familyName" json:"familyName"`
	CreatedBy  string            `firestore:"createdBy" json:"createdBy"`
	CreatedAt  time.Time         `firestore:"createdAt" json:"createdAt"`
	Members    map[string]Member `firestore:"members" json:"members"`
	Settings   FamilySettings    `firestore:"settings" json:"settings"`
}

// MemberUIDs returns the member uids in sorted order.
func (f *Family) MemberUIDs() []string {
	uids := make([]string, 0, len(f.Members))
	for uid := range f.Members {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

// MemberList expands the member map into a slice ordered by uid.
func (f *Family) MemberList() []FamilyMember {
	out := make([]FamilyMember, 0, len(f.Members))
	for _, uid := range f.MemberUIDs() {
		out = append(out, FamilyMember{UID: uid, Member: f.Members[uid]})
	}
	return out
}

func (f *Family) IsAdmin(uid string) bool {
	m, ok := f.Members[uid]
	return ok && m.Role == RoleAdmin
}

func (f *Family) HasAdmin() bool {
	for _, m := range f.Members {
		if m.Role == RoleAdmin {
			return true
		}
	}
	return false
}

package models

// Scope selects which collection owns a record.
type Scope string

const (
	ScopePersonal Scope = "personal"
	ScopeFamily   Scope = "family"
)

// Owner is the owning context of a transaction: a user (personal) or a
// family. The ID is the uid or the family id respectively.
type Owner struct {
	Scope Scope  `firestore:"scope" json:"scope"`
	ID    string `firestore:"id" json:"id"`
}

func PersonalOwner(uid string) Owner {
	return Owner{Scope: ScopePersonal, ID: uid}
}

func FamilyOwner(familyID string) Owner {
	return Owner{Scope: ScopeFamily, ID: familyID}
}

func (o Owner) IsFamily() bool {
	return o.Scope == ScopeFamily
}

package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
)

// appCollections are the per-user collections removed by DeleteAppData.
var appCollections = []string{"transactions", "budgets", "recurringTransactions", "goals", "settings", "categories"}

type userStore struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
}

func NewUserStore(client *firestore.Client) *userStore {
	return &userStore{
		client:     client,
		collection: client.Collection("users"),
	}
}

// GetProfile returns the users/{uid} document, or an empty profile when the
// user has never been written.
func (s *userStore) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	snap, err := s.collection.Doc(uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return &models.Profile{UID: uid}, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get profile", err)
	}
	var p models.Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse profile", err)
	}
	p.UID = uid
	return &p, nil
}

// UpsertIdentity merges email and display name without touching family fields.
func (s *userStore) UpsertIdentity(ctx context.Context, id models.Identity) error {
	_, err := s.collection.Doc(id.UID).Set(ctx, map[string]any{
		"email":       id.Email,
		"displayName": id.DisplayName,
		"updatedAt":   time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to save profile", err)
	}
	return nil
}

func (s *userStore) SetFamily(ctx context.Context, uid, familyID string, role models.Role) error {
	_, err := s.collection.Doc(uid).Set(ctx, map[string]any{
		"familyId":  familyID,
		"role":      string(role),
		"updatedAt": time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to set profile family", err)
	}
	return nil
}

func (s *userStore) ClearFamily(ctx context.Context, uid string) error {
	_, err := s.collection.Doc(uid).Set(ctx, map[string]any{
		"familyId":  firestore.Delete,
		"role":      firestore.Delete,
		"updatedAt": time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to clear profile family", err)
	}
	return nil
}

// DeleteAppData removes every document of the user's app collections.
func (s *userStore) DeleteAppData(ctx context.Context, uid string) error {
	bw := s.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob

	for _, name := range appCollections {
		refs, err := s.collection.Doc(uid).Collection(name).DocumentRefs(ctx).GetAll()
		if err != nil {
			bw.End()
			return errs.NewDatabaseError("read", "failed to list "+name, err)
		}
		for _, ref := range refs {
			job, err := bw.Delete(ref)
			if err != nil {
				bw.End()
				return errs.NewDatabaseError("delete", "failed to schedule delete", err)
			}
			jobs = append(jobs, job)
		}
	}

	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return errs.NewDatabaseError("delete", "failed to delete app data", err)
		}
	}
	return nil
}

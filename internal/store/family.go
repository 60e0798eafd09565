package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
)

type familyStore struct {
	client *firestore.Client
}

func NewFamilyStore(client *firestore.Client) *familyStore {
	return &familyStore{client: client}
}

func (s *familyStore) doc(familyID string) *firestore.DocumentRef {
	return s.client.Collection("families").Doc(familyID)
}

func (s *familyStore) Get(ctx context.Context, familyID string) (*models.Family, error) {
	snap, err := s.doc(familyID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.NewNotFoundError("family not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get family", err)
	}
	var f models.Family
	if err := snap.DataTo(&f); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse family", err)
	}
	return &f, nil
}

func (s *familyStore) Create(ctx context.Context, f *models.Family) error {
	_, err := s.doc(f.FamilyID).Create(ctx, f)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewAlreadyExistsError("family already exists")
		}
		return errs.NewDatabaseError("create", "failed to create family", err)
	}
	return nil
}

// Mutate reads the family, applies fn and writes the result back inside one
// Firestore transaction, so concurrent member-map edits cannot overwrite each
// other. fn may be re-run if the transaction retries. When fn leaves the
// member map empty the family document is deleted and deleted is true.
func (s *familyStore) Mutate(ctx context.Context, familyID string, fn func(f *models.Family) error) (family *models.Family, deleted bool, err error) {
	ref := s.doc(familyID)
	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return errs.NewNotFoundError("family not found")
			}
			return errs.NewDatabaseError("read", "failed to get family", err)
		}
		var f models.Family
		if err := snap.DataTo(&f); err != nil {
			return errs.NewDatabaseError("read", "failed to parse family", err)
		}
		if f.Members == nil {
			f.Members = map[string]models.Member{}
		}
		if err := fn(&f); err != nil {
			return err
		}

		family = &f
		deleted = len(f.Members) == 0
		if deleted {
			return tx.Delete(ref)
		}
		return tx.Set(ref, f)
	})
	if err != nil {
		return nil, false, err
	}
	return family, deleted, nil
}

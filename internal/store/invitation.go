package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
)

// invitationStore is the global familyInvitations collection.
type invitationStore struct {
	client *firestore.Client
}

func NewInvitationStore(client *firestore.Client) *invitationStore {
	return &invitationStore{client: client}
}

func (s *invitationStore) collection() *firestore.CollectionRef {
	return s.client.Collection("familyInvitations")
}

func (s *invitationStore) Get(ctx context.Context, id string) (*models.Invitation, error) {
	snap, err := s.collection().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.NewNotFoundError("invitation not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get invitation", err)
	}
	var inv models.Invitation
	if err := snap.DataTo(&inv); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse invitation", err)
	}
	inv.ID = snap.Ref.ID
	return &inv, nil
}

func (s *invitationStore) Create(ctx context.Context, inv models.Invitation) (string, error) {
	ref, _, err := s.collection().Add(ctx, inv)
	if err != nil {
		return "", errs.NewDatabaseError("create", "failed to create invitation", err)
	}
	return ref.ID, nil
}

func (s *invitationStore) ListPendingForEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	q := s.collection().
		Where("invitedEmail", "==", email).
		Where("status", "==", string(models.InvitationPending))
	return s.query(ctx, q)
}

func (s *invitationStore) ListPendingForFamily(ctx context.Context, familyID string) ([]models.Invitation, error) {
	q := s.collection().
		Where("familyId", "==", familyID).
		Where("status", "==", string(models.InvitationPending))
	return s.query(ctx, q)
}

// FindPending returns the pending invitation of email to familyID, or nil.
func (s *invitationStore) FindPending(ctx context.Context, familyID, email string) (*models.Invitation, error) {
	q := s.collection().
		Where("familyId", "==", familyID).
		Where("invitedEmail", "==", email).
		Where("status", "==", string(models.InvitationPending)).
		Limit(1)
	invs, err := s.query(ctx, q)
	if err != nil || len(invs) == 0 {
		return nil, err
	}
	return &invs[0], nil
}

func (s *invitationStore) SetStatus(ctx context.Context, id string, st models.InvitationStatus) error {
	_, err := s.collection().Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(st)},
	})
	if err != nil {
		if isNotFound(err) {
			return errs.NewNotFoundError("invitation not found")
		}
		return errs.NewDatabaseError("update", "failed to update invitation", err)
	}
	return nil
}

func (s *invitationStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection().Doc(id).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete invitation", err)
	}
	return nil
}

func (s *invitationStore) query(ctx context.Context, q firestore.Query) ([]models.Invitation, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []models.Invitation{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if isPermissionDenied(err) {
				return nil, errs.NewForbiddenError("not allowed to list invitations")
			}
			return nil, errs.NewDatabaseError("read", "failed to query invitations", err)
		}
		var inv models.Invitation
		if err := doc.DataTo(&inv); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse invitation", err)
		}
		inv.ID = doc.Ref.ID
		out = append(out, inv)
	}
	return out, nil
}

package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/expenseflow/internal/errs"
)

// document is satisfied by pointers to models whose id is the Firestore doc id.
type document[T any] interface {
	*T
	SetID(id string)
}

func readAll[T any, P document[T]](ctx context.Context, q firestore.Query, what string) ([]T, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list "+what, err)
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.DataTo(&v); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse "+what, err)
		}
		P(&v).SetID(d.Ref.ID)
		out = append(out, v)
	}
	return out, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// isPermissionDenied reports whether err came from a Firestore security rule
// rejecting the request.
func isPermissionDenied(err error) bool {
	return status.Code(err) == codes.PermissionDenied
}

// mergeFields returns a merge option limited to the named top-level fields,
// so fields not listed are preserved server-side.
func mergeFields(fields ...string) firestore.SetOption {
	paths := make([]firestore.FieldPath, 0, len(fields))
	for _, f := range fields {
		paths = append(paths, firestore.FieldPath{f})
	}
	return firestore.Merge(paths...)
}

// RecordStore is a per-user collection of plain records
// (users/{uid}/<name>), used for budgets, recurring transactions and goals.
type RecordStore[T any, P document[T]] struct {
	client *firestore.Client
	name   string
	fields []string
}

func (s *RecordStore[T, P]) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection(s.name)
}

func (s *RecordStore[T, P]) List(ctx context.Context, uid string) ([]T, error) {
	return readAll[T, P](ctx, s.collection(uid).Query, s.name)
}

// Add stores rec under a server-assigned id and returns that id.
func (s *RecordStore[T, P]) Add(ctx context.Context, uid string, rec T) (string, error) {
	ref, _, err := s.collection(uid).Add(ctx, rec)
	if err != nil {
		return "", errs.NewDatabaseError("create", "failed to create "+s.name, err)
	}
	return ref.ID, nil
}

// Update merge-writes the editable fields of rec.
func (s *RecordStore[T, P]) Update(ctx context.Context, uid, id string, rec T) error {
	_, err := s.collection(uid).Doc(id).Set(ctx, rec, mergeFields(s.fields...))
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update "+s.name, err)
	}
	return nil
}

func (s *RecordStore[T, P]) Delete(ctx context.Context, uid, id string) error {
	_, err := s.collection(uid).Doc(id).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete "+s.name, err)
	}
	return nil
}

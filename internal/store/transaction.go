package store

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
)

// transactionFields are the fields a client may edit after creation.
var transactionFields = []string{"text", "amount", "date", "category"}

type transactionStore struct {
	client *firestore.Client
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{client: client}
}

// collection routes by owner: users/{uid}/transactions or
// families/{familyId}/transactions.
func (s *transactionStore) collection(owner models.Owner) *firestore.CollectionRef {
	if owner.IsFamily() {
		return s.client.Collection("families").Doc(owner.ID).Collection("transactions")
	}
	return s.client.Collection("users").Doc(owner.ID).Collection("transactions")
}

func (s *transactionStore) List(ctx context.Context, owner models.Owner) ([]models.Transaction, error) {
	q := s.collection(owner).OrderBy("date", firestore.Desc)
	txs, err := readAll[models.Transaction](ctx, q, "transactions")
	if err != nil {
		return nil, err
	}
	for i := range txs {
		txs[i].Owner = owner
	}
	return txs, nil
}

func (s *transactionStore) Add(ctx context.Context, tx models.Transaction) (string, error) {
	ref, _, err := s.collection(tx.Owner).Add(ctx, tx)
	if err != nil {
		return "", errs.NewDatabaseError("create", "failed to create transaction", err)
	}
	return ref.ID, nil
}

func (s *transactionStore) Update(ctx context.Context, tx models.Transaction) error {
	_, err := s.collection(tx.Owner).Doc(tx.ID).Set(ctx, tx, mergeFields(transactionFields...))
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update transaction", err)
	}
	return nil
}

func (s *transactionStore) Delete(ctx context.Context, ref models.TransactionRef) error {
	_, err := s.collection(ref.Owner).Doc(ref.ID).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete transaction", err)
	}
	return nil
}

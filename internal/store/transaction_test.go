package store

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/expenseflow/internal/models"
)

func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestTransactionOwnerRoutingWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	store := NewTransactionStore(client)

	uid := "user-" + time.Now().Format("150405.000000")
	personal := models.PersonalOwner(uid)
	family := models.FamilyOwner("family-" + uid)

	day := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	older, err := store.Add(ctx, models.Transaction{Text: "Coffee", Amount: -3, Date: day.AddDate(0, 0, -1), Category: "Restaurants", Owner: personal})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	newer, err := store.Add(ctx, models.Transaction{Text: "Salary", Amount: 1000, Date: day, Category: "Income", Owner: personal})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if _, err := store.Add(ctx, models.Transaction{Text: "Groceries", Amount: -40, Date: day, Category: "Groceries", Owner: family, AddedBy: uid}); err != nil {
		t.Fatalf("add family error: %v", err)
	}

	txs, err := store.List(ctx, personal)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 personal transactions, got %d", len(txs))
	}
	if txs[0].ID != newer || txs[1].ID != older {
		t.Fatalf("expected newest first, got %s then %s", txs[0].ID, txs[1].ID)
	}

	// merge write keeps fields outside the editable set
	edit := txs[1]
	edit.Amount = -4
	edit.AddedBy = "someone-else"
	if err := store.Update(ctx, edit); err != nil {
		t.Fatalf("update error: %v", err)
	}
	snap, err := store.collection(personal).Doc(older).Get(ctx)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got := snap.Data()["amount"]; got != float64(-4) {
		t.Fatalf("expected amount -4, got %v", got)
	}
	if _, ok := snap.Data()["addedBy"]; ok {
		t.Fatalf("addedBy should not be written by update")
	}

	if err := store.Delete(ctx, models.TransactionRef{ID: older, Owner: personal}); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	famTxs, err := store.List(ctx, family)
	if err != nil {
		t.Fatalf("list family error: %v", err)
	}
	if len(famTxs) != 1 || famTxs[0].Owner != family {
		t.Fatalf("expected 1 family transaction owned by family, got %+v", famTxs)
	}
}

func TestFamilyMutateDeletesEmptyFamilyWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	store := NewFamilyStore(client)

	id := "family_" + time.Now().Format("150405000000")
	err := store.Create(ctx, &models.Family{
		FamilyID:   id,
		FamilyName: "Test",
		CreatedBy:  "u1",
		Members:    map[string]models.Member{"u1": {Role: models.RoleAdmin}},
	})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	_, deleted, err := store.Mutate(ctx, id, func(f *models.Family) error {
		delete(f.Members, "u1")
		return nil
	})
	if err != nil {
		t.Fatalf("mutate error: %v", err)
	}
	if !deleted {
		t.Fatalf("expected family to be deleted")
	}
	if _, err := store.Get(ctx, id); err == nil {
		t.Fatalf("expected not found after delete")
	}
}

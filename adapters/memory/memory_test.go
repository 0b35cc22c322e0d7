package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/artpar/launchpad/domain/apikey"
	"github.com/artpar/launchpad/domain/paging"
)

func seedKeys(t *testing.T, store *KeyStore, n int) []string {
	t.Helper()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("key_%02d", i)
		ids[i] = id
		err := store.Create(context.Background(), apikey.Key{
			ID:        id,
			UserID:    "u1",
			Name:      fmt.Sprintf("key %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	return ids
}

func TestListByUserPagesForward(t *testing.T) {
	store := NewKeyStore()
	seedKeys(t, store, 5)
	ctx := context.Background()

	first, err := store.ListByUser(ctx, "u1", paging.Cursor{Limit: 2})
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(first.Items) != 2 {
		t.Fatalf("first page = %d items, want 2", len(first.Items))
	}
	// Newest first.
	if first.Items[0].ID != "key_04" || first.Items[1].ID != "key_03" {
		t.Errorf("first page = %s,%s, want key_04,key_03", first.Items[0].ID, first.Items[1].ID)
	}
	if first.Next == nil {
		t.Fatal("first page has no next instruction")
	}
	if first.Prev != nil {
		t.Error("first page has a prev instruction")
	}

	second, err := store.ListByUser(ctx, "u1", first.Next)
	if err != nil {
		t.Fatalf("ListByUser(next) error = %v", err)
	}
	if len(second.Items) != 2 || second.Items[0].ID != "key_02" {
		t.Errorf("second page starts with %v, want key_02", second.Items)
	}
	if second.Prev == nil {
		t.Error("second page has no prev instruction")
	}

	third, err := store.ListByUser(ctx, "u1", second.Next)
	if err != nil {
		t.Fatalf("ListByUser(next) error = %v", err)
	}
	if len(third.Items) != 1 || third.Items[0].ID != "key_00" {
		t.Errorf("third page = %v, want key_00 only", third.Items)
	}
	if third.Next != nil {
		t.Error("last page has a next instruction")
	}
}

func TestListByUserPagesBackward(t *testing.T) {
	store := NewKeyStore()
	seedKeys(t, store, 5)
	ctx := context.Background()

	first, _ := store.ListByUser(ctx, "u1", paging.Cursor{Limit: 2})
	second, _ := store.ListByUser(ctx, "u1", first.Next)

	back, err := store.ListByUser(ctx, "u1", second.Prev)
	if err != nil {
		t.Fatalf("ListByUser(prev) error = %v", err)
	}
	if len(back.Items) != 2 || back.Items[0].ID != "key_04" || back.Items[1].ID != "key_03" {
		t.Errorf("prev page = %v, want key_04,key_03", back.Items)
	}
	if back.Prev != nil {
		t.Error("page at the start still reports a prev instruction")
	}
	if back.Next == nil {
		t.Error("page with following items reports no next instruction")
	}
}

func TestListByUserRejectsForeignInstruction(t *testing.T) {
	store := NewKeyStore()
	if _, err := store.ListByUser(context.Background(), "u1", paging.Key{Limit: 2}); err == nil {
		t.Error("ListByUser() accepted a key-style instruction")
	}
}

func TestDeleteByUserIgnoresForeignKeys(t *testing.T) {
	store := NewKeyStore()
	ctx := context.Background()
	store.Create(ctx, apikey.Key{ID: "mine", UserID: "u1", CreatedAt: time.Now()})
	store.Create(ctx, apikey.Key{ID: "theirs", UserID: "u2", CreatedAt: time.Now()})

	if err := store.DeleteByUser(ctx, "u1", []string{"mine", "theirs", "ghost"}); err != nil {
		t.Fatalf("DeleteByUser() error = %v", err)
	}
	if _, err := store.GetByID(ctx, "mine"); err == nil {
		t.Error("owned key survived bulk delete")
	}
	if _, err := store.GetByID(ctx, "theirs"); err != nil {
		t.Error("another user's key was deleted")
	}
}

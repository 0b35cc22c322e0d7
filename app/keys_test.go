package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/artpar/launchpad/adapters/clock"
	"github.com/artpar/launchpad/adapters/memory"
	"github.com/rs/zerolog"
)

func TestKeyServiceCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := NewKeyService(memory.NewKeyStore(), clock.NewFake(now), "lk_", zerolog.Nop())

	k, raw, err := svc.Create(ctx, "u1", "ci key", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if raw == "" || raw[:3] != "lk_" {
		t.Errorf("raw key = %q, want lk_ prefix", raw)
	}
	if k.UserID != "u1" || k.Name != "ci key" {
		t.Errorf("stored key = %+v", k)
	}

	got, err := svc.Authenticate(ctx, raw)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != k.ID {
		t.Errorf("Authenticate() ID = %s, want %s", got.ID, k.ID)
	}

	page, err := svc.List(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Items) != 1 {
		t.Errorf("List() = %d keys, want 1", len(page.Items))
	}
}

func TestKeyServiceAuthenticateRejects(t *testing.T) {
	ctx := context.Background()
	fake := clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	svc := NewKeyService(memory.NewKeyStore(), fake, "lk_", zerolog.Nop())

	expiry := fake.Now().Add(time.Hour)
	_, raw, err := svc.Create(ctx, "u1", "short lived", &expiry)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Authenticate(ctx, "short"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("malformed key error = %v, want ErrInvalidKey", err)
	}
	if _, err := svc.Authenticate(ctx, "lk_000000000000000000"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("unknown key error = %v, want ErrInvalidKey", err)
	}

	fake.Advance(2 * time.Hour)
	if _, err := svc.Authenticate(ctx, raw); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expired key error = %v, want ErrInvalidKey", err)
	}
}

func TestKeyServiceAuthenticateTouchesLastUsed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewKeyStore()
	svc := NewKeyService(store, clock.NewFake(now), "lk_", zerolog.Nop())

	k, raw, err := svc.Create(ctx, "u1", "used key", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, raw); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	stored, err := store.GetByID(ctx, k.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.LastUsed == nil || !stored.LastUsed.Equal(now) {
		t.Errorf("LastUsed = %v, want %v", stored.LastUsed, now)
	}
}

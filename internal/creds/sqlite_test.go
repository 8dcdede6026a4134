package creds

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "credentials.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 42, "token-1"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	token, ok, err := store.Load(ctx, 42)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !ok {
		t.Fatal("Load() ok = false, want true")
	}
	if token != "token-1" {
		t.Errorf("token = %q, want %q", token, "token-1")
	}
}

func TestLoad_Absent(t *testing.T) {
	store := newTestStore(t)

	token, ok, err := store.Load(context.Background(), 99)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ok {
		t.Errorf("Load() ok = true for an absent key, token = %q", token)
	}
}

func TestSave_OverwritesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 42, "old-token"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, 42, "new-token"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	token, ok, err := store.Load(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("Load() = %q, %v, %v", token, ok, err)
	}
	if token != "new-token" {
		t.Errorf("token = %q, want %q", token, "new-token")
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 42, "token-1"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(ctx, 42); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if _, ok, _ := store.Load(ctx, 42); ok {
		t.Error("Load() ok = true after Clear")
	}

	// Clearing an absent key is not an error.
	if err := store.Clear(ctx, 42); err != nil {
		t.Errorf("Clear() of absent key error = %v", err)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, "token-a"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, 2, "token-b"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	token, ok, err := store.Load(ctx, 2)
	if err != nil || !ok {
		t.Fatalf("Load(2) = %q, %v, %v", token, ok, err)
	}
	if token != "token-b" {
		t.Errorf("token = %q, want %q", token, "token-b")
	}
}

package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreNamespaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Set(ctx, "a", "k", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "b", "k", "2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "a", "k", "3"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	v, ok, err := store.Get(ctx, "a", "k")
	if err != nil || !ok || v != "3" {
		t.Fatalf("unexpected get: %q %v %v", v, ok, err)
	}

	all, err := store.List(ctx, "b")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 || all["k"] != "2" {
		t.Fatalf("unexpected list: %+v", all)
	}

	if err := store.Delete(ctx, "a", "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "a", "k"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestMemorySurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := NewMemory(store).Remember(ctx, "x", "y"); err != nil {
		t.Fatalf("Remember failed: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	v, ok, err := NewMemory(reopened).Recall(ctx, "x")
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if !ok || v != "y" {
		t.Fatalf("expected y, got %q (found=%v)", v, ok)
	}
}

func TestDiagnostics(t *testing.T) {
	ctx := context.Background()
	diag := NewDiagnostics(newTestStore(t))

	connectedAt := time.UnixMilli(1700000000000)
	failedAt := connectedAt.Add(time.Minute)
	if err := diag.RecordConnected(ctx, connectedAt); err != nil {
		t.Fatalf("RecordConnected failed: %v", err)
	}
	if err := diag.RecordConnectError(ctx, failedAt, errors.New("connection refused")); err != nil {
		t.Fatalf("RecordConnectError failed: %v", err)
	}

	snap, err := diag.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !snap.LastConnected.Equal(connectedAt) || !snap.LastErrorAt.Equal(failedAt) {
		t.Fatalf("unexpected times: %+v", snap)
	}
	if snap.LastError != "connection refused" {
		t.Fatalf("unexpected error: %q", snap.LastError)
	}
}

package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreReserveLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	fp := Fingerprint("alice", "1x3")

	res, err := store.Reserve(ctx, "chk-1", fp, now, time.Hour)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.State != ReservationStateNew {
		t.Fatalf("expected new reservation, got %v", res.State)
	}

	res, err = store.Reserve(ctx, "chk-1", fp, now.Add(time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if res.State != ReservationStatePending {
		t.Fatalf("expected pending reservation, got %v", res.State)
	}

	if err := store.Complete(ctx, "chk-1", fp, "receipt", now.Add(2*time.Minute), time.Hour); err != nil {
		t.Fatalf("complete: %v", err)
	}

	res, err = store.Reserve(ctx, "chk-1", fp, now.Add(3*time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("third reserve: %v", err)
	}
	if res.State != ReservationStateCompleted {
		t.Fatalf("expected completed reservation, got %v", res.State)
	}
	if res.Record.Result != "receipt" {
		t.Fatalf("expected stored result, got %v", res.Record.Result)
	}
}

func TestMemoryStoreFingerprintMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	if _, err := store.Reserve(ctx, "chk-2", Fingerprint("a"), now, time.Hour); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := store.Reserve(ctx, "chk-2", Fingerprint("b"), now, time.Hour); !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("expected fingerprint mismatch, got %v", err)
	}
	if err := store.Release(ctx, "chk-2", Fingerprint("b")); !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("expected release mismatch, got %v", err)
	}
}

func TestMemoryStoreReleaseAllowsRetry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	fp := Fingerprint("a")

	if _, err := store.Reserve(ctx, "chk-3", fp, now, time.Hour); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := store.Release(ctx, "chk-3", fp); err != nil {
		t.Fatalf("release: %v", err)
	}
	res, err := store.Reserve(ctx, "chk-3", fp, now, time.Hour)
	if err != nil {
		t.Fatalf("reserve after release: %v", err)
	}
	if res.State != ReservationStateNew {
		t.Fatalf("expected new reservation after release, got %v", res.State)
	}
}

func TestMemoryStoreExpiryAndCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	if _, err := store.Reserve(ctx, "old", Fingerprint("x"), now, time.Minute); err != nil {
		t.Fatalf("reserve old: %v", err)
	}
	if _, err := store.Reserve(ctx, "fresh", Fingerprint("y"), now, time.Hour); err != nil {
		t.Fatalf("reserve fresh: %v", err)
	}

	res, err := store.Reserve(ctx, "old", Fingerprint("z"), now.Add(2*time.Minute), time.Minute)
	if err != nil {
		t.Fatalf("expired key should be reusable: %v", err)
	}
	if res.State != ReservationStateNew {
		t.Fatalf("expected new reservation for expired key, got %v", res.State)
	}

	removed, err := store.CleanupExpired(ctx, now.Add(2*time.Hour), 0)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed records, got %d", removed)
	}
}

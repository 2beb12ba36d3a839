package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

func testSnapshot() *domain.RateSnapshot {
	return &domain.RateSnapshot{
		FeeMultiplier: 0.9,
		Quotes: []domain.RateQuote{
			{Provider: "lido", APR: 3.6, OK: true, FetchedAt: time.Unix(1700000000, 0).UTC()},
			{Provider: "frax", OK: false, Error: "frax: status: unexpected status 502", ErrorKind: "status"},
		},
		Partial: true,
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rates.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := store.Save(testSnapshot()); err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	if len(loaded.Quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(loaded.Quotes))
	}
	if q, ok := loaded.Quote("lido"); !ok || q.APR != 3.6 {
		t.Errorf("lido quote mismatch: %+v", q)
	}
	if loaded.GeneratedAt.IsZero() {
		t.Error("expected generated_at to be set on save")
	}
}

func TestFileStore_LoadNonexistent(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	snapshot, err := store.Load()
	if err != nil {
		t.Errorf("expected nil error for nonexistent file, got %v", err)
	}
	if snapshot != nil {
		t.Error("expected nil snapshot for nonexistent file")
	}
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	store, _ := NewFileStore(path)
	if _, err := store.Load(); err == nil {
		t.Error("expected error for corrupt snapshot")
	}
}

func TestFileStore_AtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	store, _ := NewFileStore(path)

	if err := store.Save(testSnapshot()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not exist after successful write")
	}
}

func TestNoOpCache(t *testing.T) {
	var c NoOpCache
	ctx := context.Background()

	if err := c.Set(ctx, domain.RateQuote{Provider: "lido", APR: 1}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	q, err := c.Get(ctx, "lido")
	if err != nil || q != nil {
		t.Errorf("expected miss, got %+v, %v", q, err)
	}
	if err := c.Flush(ctx); err != nil {
		t.Errorf("flush: %v", err)
	}
}

func TestNewRedisCache_RequiresAddress(t *testing.T) {
	if _, err := NewRedisCache(&RedisConfig{}); err == nil {
		t.Error("expected error for empty address")
	}
	if _, err := NewRedisCache(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

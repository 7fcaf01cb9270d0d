package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/visit-desk/internal/persistence"
	"github.com/example/visit-desk/internal/persistence/memory"
	"github.com/example/visit-desk/internal/persistence/sqlite"
)

// StoreHarness is an initialized document store with a deterministic clock
// and request ids "req-1", "req-2", ...
type StoreHarness struct {
	KV    persistence.KeyValueStore
	Store *persistence.Store
	Clock *Clock
	IDs   *IDGenerator
}

// NewStoreHarness builds a harness over an in-memory key-value store.
func NewStoreHarness(tb testing.TB) *StoreHarness {
	tb.Helper()
	return newHarness(tb, memory.New())
}

// NewSQLiteStoreHarness builds a harness over a migrated SQLite database in a
// temporary directory.
func NewSQLiteStoreHarness(tb testing.TB) *StoreHarness {
	tb.Helper()

	ctx := context.Background()
	kv, err := sqlite.Open(ctx, sqlite.DefaultConfig(filepath.Join(tb.TempDir(), "visitdesk.db")), DiscardLogger())
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() { _ = kv.Close() })
	if err := kv.Migrate(ctx); err != nil {
		tb.Fatalf("failed to migrate sqlite store: %v", err)
	}
	return newHarness(tb, kv)
}

func newHarness(tb testing.TB, kv persistence.KeyValueStore) *StoreHarness {
	tb.Helper()
	harness := &StoreHarness{
		KV:    kv,
		Clock: NewClock(ReferenceTime()),
		IDs:   NewIDGenerator("req"),
	}
	harness.Store = persistence.NewStoreWithLogger(kv, harness.IDs.NextFunc(), harness.Clock.NowFunc(), DiscardLogger())
	if err := harness.Store.Initialize(context.Background()); err != nil {
		tb.Fatalf("failed to initialize store: %v", err)
	}
	return harness
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

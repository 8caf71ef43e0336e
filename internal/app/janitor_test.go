package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/msealand/fastuiupdates/internal/metrics"
	"github.com/msealand/fastuiupdates/internal/sink"
	"github.com/msealand/fastuiupdates/internal/storage"
)

func openJanitorStore(t *testing.T) *storage.BoltStore {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "samples.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// startJanitor starts runJanitor in a goroutine and returns a channel that
// receives when the goroutine has exited. Callers must cancel ctx and then
// drain the returned channel to avoid goroutine leaks across tests.
func startJanitor(ctx context.Context, store storage.Store, keep int, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		runJanitor(ctx, store, keep, interval)
		close(done)
	}()
	return done
}

func TestJanitor_PrunesToKeep(t *testing.T) {
	store := openJanitorStore(t)

	const n = 500
	for i := 1; i <= n; i++ {
		if err := store.Append(sink.Sample{PollCount: uint64(i), Value: uint64(i)}); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := startJanitor(ctx, store, 50, 20*time.Millisecond)

	// Give the janitor at least one tick.
	time.Sleep(60 * time.Millisecond)
	cancel()
	<-done

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 50 {
		t.Errorf("expected 50 samples after pruning, got %d", count)
	}
	last, ok, err := store.Last()
	if err != nil || !ok || last.PollCount != n {
		t.Errorf("expected newest sample %d to survive, got %+v (ok=%v err=%v)", n, last, ok, err)
	}
}

// TestJanitor_StopsOnContextCancel verifies that a janitor with a 1-hour
// interval exits within 1 second when its context is cancelled.
func TestJanitor_StopsOnContextCancel(t *testing.T) {
	store := openJanitorStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := startJanitor(ctx, store, 10, time.Hour)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("janitor did not stop within 1s of context cancellation")
	}
}

// TestJanitor_DBSizeMetric verifies that the RecordDBSizeBytes gauge is set
// to a positive value after the janitor fires once on a real BoltStore.
func TestJanitor_DBSizeMetric(t *testing.T) {
	store := openJanitorStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := startJanitor(ctx, store, 10, 20*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	cancel()
	<-done

	got := testutil.ToFloat64(metrics.RecordDBSizeBytes)
	if got <= 0 {
		t.Errorf("expected RecordDBSizeBytes > 0 after janitor tick, got %v", got)
	}
}

type pruneErrorStore struct{ storage.MemStore }

func (s *pruneErrorStore) Prune(int) error { return errors.New("prune failed") }

func TestJanitor_PruneErrorBranch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := startJanitor(ctx, &pruneErrorStore{}, 10, 10*time.Millisecond)

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

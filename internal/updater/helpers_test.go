package updater

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/msealand/fastuiupdates/internal/sink"
)

// recordingSink keeps every sample it receives.
type recordingSink struct {
	mu      sync.Mutex
	samples []sink.Sample
}

func (r *recordingSink) Name() string { return "recording" }
func (r *recordingSink) Report(_ context.Context, s sink.Sample) error {
	r.mu.Lock()
	r.samples = append(r.samples, s)
	r.mu.Unlock()
	return nil
}
func (r *recordingSink) Close() error { return nil }

func (r *recordingSink) snapshot() []sink.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sink.Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// failingSink rejects every sample.
type failingSink struct{}

func (failingSink) Name() string                              { return "failing" }
func (failingSink) Report(context.Context, sink.Sample) error { return errors.New("sink unavailable") }
func (failingSink) Close() error                              { return nil }

func newTestUpdater(t *testing.T, opts Options) *Updater {
	t.Helper()
	u, err := New(nil, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(u.Shutdown)
	return u
}

// assertSequence checks the sampler invariants over a run of samples: poll
// counts go up by exactly one and counter values never go down.
func assertSequence(t *testing.T, samples []sink.Sample, firstPoll uint64) {
	t.Helper()
	for i, s := range samples {
		if want := firstPoll + uint64(i); s.PollCount != want {
			t.Fatalf("sample %d: poll count %d, want %d", i, s.PollCount, want)
		}
		if i > 0 && s.Value < samples[i-1].Value {
			t.Fatalf("sample %d: counter went backwards from %d to %d", i, samples[i-1].Value, s.Value)
		}
	}
}

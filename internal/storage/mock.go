package storage

import (
	"sync"

	"github.com/msealand/fastuiupdates/internal/sink"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory implementation of Store, used in tests and when
// no record path is configured for a dry run.
type MemStore struct {
	mu      sync.Mutex
	samples []sink.Sample
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Append(s sink.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, s)
	return nil
}

func (m *MemStore) Count() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples), nil
}

func (m *MemStore) Last() (sink.Sample, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.samples) == 0 {
		return sink.Sample{}, false, nil
	}
	return m.samples[len(m.samples)-1], true, nil
}

func (m *MemStore) Recent(n int) ([]sink.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 {
		return nil, nil
	}
	if n > len(m.samples) {
		n = len(m.samples)
	}
	out := make([]sink.Sample, n)
	copy(out, m.samples[len(m.samples)-n:])
	return out, nil
}

func (m *MemStore) Prune(keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if keep < 0 {
		keep = 0
	}
	if excess := len(m.samples) - keep; excess > 0 {
		m.samples = append([]sink.Sample(nil), m.samples[excess:]...)
	}
	return nil
}

func (m *MemStore) DBPath() string { return "" }

func (m *MemStore) Close() error { return nil }

package sink

import (
	"context"
	"fmt"
)

// Appender is the write side of a sample store.
type Appender interface {
	Append(s Sample) error
}

// Recorder appends each sample to a store, keeping a tick history for later
// inspection. The history is never read back into the counter.
type Recorder struct {
	store Appender
}

func NewRecorder(store Appender) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) Name() string { return "recorder" }

func (r *Recorder) Report(_ context.Context, s Sample) error {
	if err := r.store.Append(s); err != nil {
		return fmt.Errorf("recorder: append poll %d: %w", s.PollCount, err)
	}
	return nil
}

// Close is a no-op; the store is owned and closed by whoever opened it.
func (r *Recorder) Close() error { return nil }

package sink

import (
	"context"
	"time"
)

// Sample is one sampler tick: how many times the sampler has fired and the
// counter value it read on that tick.
type Sample struct {
	PollCount uint64    `json:"poll_count"`
	Value     uint64    `json:"value"`
	At        time.Time `json:"at"`
}

// Sink receives samples from the sampler loop. Report is always called from
// the sampler goroutine, so implementations that are only driven by the
// sampler need no locking of their own.
type Sink interface {
	// Name returns the sink identifier for logging and metrics labels.
	Name() string

	// Report renders or records a single sample.
	Report(ctx context.Context, s Sample) error

	// Close performs graceful shutdown.
	Close() error
}

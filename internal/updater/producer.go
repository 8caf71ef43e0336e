package updater

import (
	"context"

	"github.com/msealand/fastuiupdates/internal/metrics"
)

// runProducer increments the counter without pause until ctx is cancelled.
// The stop check is one non-blocking receive per increment, and the guard is
// held only for the increment itself.
func (u *Updater) runProducer(ctx context.Context) {
	defer u.wg.Done()

	metrics.ProducersRunning.Inc()
	defer metrics.ProducersRunning.Dec()

	var n uint64
	defer func() { u.produced.Add(n) }()

	done := ctx.Done()
	for {
		select {
		case <-done:
			return
		default:
		}
		u.guard.Increment()
		n++
	}
}

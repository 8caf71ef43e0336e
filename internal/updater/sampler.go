package updater

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/msealand/fastuiupdates/internal/metrics"
	"github.com/msealand/fastuiupdates/internal/sink"
)

// runSampler fires a tick every update interval until ctx is cancelled.
// Interval changes reset the ticker, so the new period applies from the next
// tick onward.
func (u *Updater) runSampler(ctx context.Context) {
	defer u.wg.Done()

	interval := u.UpdateInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-u.intervalCh:
			if d := u.UpdateInterval(); d != interval {
				interval = d
				ticker.Reset(d)
				log.Debug().Str("update_interval", d.String()).Msg("sampler: interval changed")
			}
		case <-ticker.C:
			// select picks randomly when both are ready; never tick after cancel.
			if ctx.Err() != nil {
				return
			}
			u.tick(ctx)
		}
	}
}

// tick bumps the poll count, reads the counter and hands the sample to every
// sink. A failing sink is logged and skipped.
func (u *Updater) tick(ctx context.Context) {
	u.pollCount++
	s := sink.Sample{
		PollCount: u.pollCount,
		Value:     u.guard.Read(),
		At:        time.Now(),
	}
	u.last.Store(&s)

	metrics.TicksTotal.Inc()
	metrics.CounterValue.Set(float64(s.Value))
	metrics.PollCount.Set(float64(s.PollCount))

	for _, sk := range u.sinks {
		if err := sk.Report(ctx, s); err != nil {
			metrics.SinkErrors.WithLabelValues(sk.Name()).Inc()
			log.Warn().Err(err).Str("sink", sk.Name()).Uint64("poll_count", s.PollCount).Msg("sink report failed")
		}
	}
}

// Package telemetry pushes the sampler's latest reading to a Prometheus
// remote-write endpoint on its own, slower cadence.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eryajf/promwrite"

	"github.com/msealand/fastuiupdates/internal/metrics"
	"github.com/msealand/fastuiupdates/internal/sink"
)

const (
	pushTimeout     = 10 * time.Second
	defaultInterval = 15 * time.Second
)

// Pusher sends time series to an upstream endpoint.
type Pusher interface {
	Push(ctx context.Context, series []promwrite.TimeSeries) error
}

// PushFunc adapts a function to the Pusher interface.
type PushFunc func(ctx context.Context, series []promwrite.TimeSeries) error

// Push implements Pusher.
func (f PushFunc) Push(ctx context.Context, series []promwrite.TimeSeries) error {
	return f(ctx, series)
}

// Sender is a sink that remembers the latest sample and periodically pushes
// it. Samples arriving between flushes overwrite each other; only the newest
// is sent.
type Sender struct {
	job      string
	instance string
	interval time.Duration
	pusher   Pusher

	mu         sync.Mutex
	latest     *sink.Sample
	pushedPoll uint64
}

var _ sink.Sink = (*Sender)(nil)

// NewSender builds a sender for the given interval and pusher.
func NewSender(job, instance string, interval time.Duration, pusher Pusher) *Sender {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sender{
		job:      job,
		instance: instance,
		interval: interval,
		pusher:   pusher,
	}
}

func (s *Sender) Name() string { return "remote-write" }

// Report stores the sample for the next flush.
func (s *Sender) Report(_ context.Context, sample sink.Sample) error {
	s.mu.Lock()
	s.latest = &sample
	s.mu.Unlock()
	return nil
}

func (s *Sender) Close() error { return nil }

// Run flushes on every interval tick until ctx is canceled, then makes one
// last attempt so the final reading is not lost.
func (s *Sender) Run(ctx context.Context) {
	if s.pusher == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.Flush(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			_ = s.Flush(ctx)
		}
	}
}

// Flush pushes the latest sample if it has not been pushed yet. A failed push
// leaves the sample pending for the next flush.
func (s *Sender) Flush(ctx context.Context) error {
	if s.pusher == nil {
		return nil
	}

	s.mu.Lock()
	if s.latest == nil || s.latest.PollCount == s.pushedPoll {
		s.mu.Unlock()
		return nil
	}
	sample := *s.latest
	s.mu.Unlock()

	pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()
	if err := s.pusher.Push(pushCtx, BuildTimeSeries(sample, s.job, s.instance)); err != nil {
		metrics.RemoteWritePushes.WithLabelValues("error").Inc()
		metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
		return fmt.Errorf("telemetry: push poll %d: %w", sample.PollCount, err)
	}
	metrics.RemoteWritePushes.WithLabelValues("ok").Inc()

	s.mu.Lock()
	s.pushedPoll = sample.PollCount
	s.mu.Unlock()
	return nil
}

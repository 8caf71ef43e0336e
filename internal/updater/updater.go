// Package updater runs the producer/consumer pair around the shared counter:
// producer goroutines increment it as fast as they can while a sampler reads
// it on a fixed period and reports each reading to a set of sinks.
package updater

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/msealand/fastuiupdates/internal/counter"
	"github.com/msealand/fastuiupdates/internal/metrics"
	"github.com/msealand/fastuiupdates/internal/sink"
)

// DefaultUpdateInterval is the sampler period used when none is configured.
const DefaultUpdateInterval = 100 * time.Millisecond

var (
	// ErrInvalidInterval is returned for a non-positive update interval.
	ErrInvalidInterval = errors.New("updater: update interval must be positive")
	// ErrInvalidProducers is returned for a negative producer count.
	ErrInvalidProducers = errors.New("updater: producers must be at least 1")
)

// State is the lifecycle state of an Updater.
type State int32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	default:
		return "stopped"
	}
}

// Options configures an Updater. Zero values select the defaults.
type Options struct {
	// UpdateInterval is the sampler period. 0 means DefaultUpdateInterval.
	UpdateInterval time.Duration
	// Producers is the number of producer goroutines sharing the counter.
	// 0 means 1.
	Producers int
	// Sinks receive every sample, in order, on the sampler goroutine.
	Sinks []sink.Sink
}

// Updater owns the producer goroutines, the sampler goroutine and the guard
// they share. Startup and Shutdown are safe to call from any goroutine and
// are both idempotent.
type Updater struct {
	guard     *counter.Guard
	sinks     []sink.Sink
	producers int

	interval   atomic.Int64
	intervalCh chan struct{}

	mu     sync.Mutex // serializes Startup/Shutdown
	state  atomic.Int32
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// pollCount is only touched by the sampler goroutine. Restarts are
	// ordered after the previous sampler exits by wg.Wait.
	pollCount uint64

	produced atomic.Uint64
	last     atomic.Pointer[sink.Sample]
}

// New builds a stopped Updater around guard. A nil guard gets a fresh one.
func New(guard *counter.Guard, opts Options) (*Updater, error) {
	if opts.UpdateInterval < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, opts.UpdateInterval)
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = DefaultUpdateInterval
	}
	if opts.Producers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidProducers, opts.Producers)
	}
	if opts.Producers == 0 {
		opts.Producers = 1
	}
	if guard == nil {
		guard = counter.NewGuard()
	}

	u := &Updater{
		guard:      guard,
		sinks:      opts.Sinks,
		producers:  opts.Producers,
		intervalCh: make(chan struct{}, 1),
	}
	u.interval.Store(int64(opts.UpdateInterval))
	metrics.UpdateIntervalSeconds.Set(opts.UpdateInterval.Seconds())
	return u, nil
}

// Startup launches the producers and the sampler and returns immediately.
// Calling it while already running does nothing.
func (u *Updater) Startup() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if State(u.state.Load()) == Running {
		log.Debug().Msg("updater: startup ignored, already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel

	for i := 0; i < u.producers; i++ {
		u.wg.Add(1)
		go u.runProducer(ctx)
	}
	u.wg.Add(1)
	go u.runSampler(ctx)

	u.state.Store(int32(Running))
	log.Info().
		Int("producers", u.producers).
		Str("update_interval", u.UpdateInterval().String()).
		Int("sinks", len(u.sinks)).
		Msg("updater started")
}

// Shutdown stops the sampler's ticker and the producers, then waits for all
// of them to exit. A tick already in flight completes first; no tick runs
// after Shutdown returns. Calling it while stopped does nothing.
func (u *Updater) Shutdown() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if State(u.state.Load()) == Stopped {
		log.Debug().Msg("updater: shutdown ignored, already stopped")
		return
	}

	u.cancel()
	u.wg.Wait()
	u.cancel = nil
	u.state.Store(int32(Stopped))

	log.Info().
		Uint64("produced", u.produced.Load()).
		Uint64("counter", u.guard.Read()).
		Msg("updater stopped")
}

// Run starts the updater, blocks until ctx is done, then shuts it down.
func (u *Updater) Run(ctx context.Context) error {
	u.Startup()
	<-ctx.Done()
	u.Shutdown()
	return nil
}

// SetUpdateInterval changes the sampler period. A running sampler picks the
// new period up from its next scheduled tick.
func (u *Updater) SetUpdateInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, d)
	}
	u.interval.Store(int64(d))
	metrics.UpdateIntervalSeconds.Set(d.Seconds())

	select {
	case u.intervalCh <- struct{}{}:
	default:
	}
	return nil
}

// UpdateInterval returns the sampler period currently configured.
func (u *Updater) UpdateInterval() time.Duration {
	return time.Duration(u.interval.Load())
}

// State reports whether the updater is running.
func (u *Updater) State() State {
	return State(u.state.Load())
}

// Guard returns the counter guard shared by the producers and the sampler.
func (u *Updater) Guard() *counter.Guard {
	return u.guard
}

// Produced returns the number of increments performed by producers that have
// exited. After Shutdown it accounts for every increment of every run.
func (u *Updater) Produced() uint64 {
	return u.produced.Load()
}

// Last returns the most recent sample, if the sampler has fired at all.
func (u *Updater) Last() (sink.Sample, bool) {
	s := u.last.Load()
	if s == nil {
		return sink.Sample{}, false
	}
	return *s, true
}

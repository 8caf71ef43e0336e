// Package app assembles the updater, its sinks and the metrics server from
// configuration and runs them until the process is asked to stop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/msealand/fastuiupdates/internal/config"
	"github.com/msealand/fastuiupdates/internal/counter"
	"github.com/msealand/fastuiupdates/internal/sink"
	"github.com/msealand/fastuiupdates/internal/storage"
	"github.com/msealand/fastuiupdates/internal/telemetry"
	"github.com/msealand/fastuiupdates/internal/updater"
)

const jobName = "fastui"

// ErrNotRunning is returned by Healthy while the updater is stopped.
var ErrNotRunning = errors.New("app: updater not running")

// App owns the updater together with everything that consumes its samples.
type App struct {
	cfg     *config.Config
	updater *updater.Updater
	sinks   []sink.Sink
	store   storage.Store     // nil when RecordPath == ""
	sender  *telemetry.Sender // nil when RemoteWriteURL == ""
	httpSrv *http.Server      // nil when MetricsAddr == ""

	closeOnce sync.Once
}

// New creates an App and initialises all dependencies. Console output, when
// enabled, goes to out.
func New(cfg *config.Config, out io.Writer) (*App, error) {
	a := &App{cfg: cfg}

	if cfg.Console {
		a.sinks = append(a.sinks, sink.NewConsole(out))
	}
	a.sinks = append(a.sinks, sink.NewLog(log.Logger))

	if cfg.RecordPath != "" {
		store, err := storage.Open(cfg.RecordPath)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.sinks = append(a.sinks, sink.NewRecorder(store))
	}

	if cfg.RemoteWriteURL != "" {
		a.sender = telemetry.NewSender(jobName, cfg.Instance, cfg.RemoteWriteInterval,
			telemetry.NewRemoteWritePusher(cfg.RemoteWriteURL))
		a.sinks = append(a.sinks, a.sender)
	}

	u, err := updater.New(counter.NewGuard(), updater.Options{
		UpdateInterval: cfg.UpdateInterval,
		Producers:      cfg.Producers,
		Sinks:          a.sinks,
	})
	if err != nil {
		a.closeStore()
		return nil, fmt.Errorf("app: %w", err)
	}
	a.updater = u

	if cfg.MetricsAddr != "" {
		a.httpSrv = &http.Server{
			Addr:         cfg.MetricsAddr,
			Handler:      a.handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		}
	}

	return a, nil
}

func (a *App) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Healthy(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Updater exposes the updater, mainly so callers can reconfigure the interval.
func (a *App) Updater() *updater.Updater { return a.updater }

// Healthy returns nil while the updater is running.
func (a *App) Healthy() error {
	if a.updater.State() != updater.Running {
		return ErrNotRunning
	}
	return nil
}

// Run starts the updater and its helpers and blocks until ctx is cancelled or
// the configured run duration elapses.
func (a *App) Run(ctx context.Context) error {
	if a.httpSrv != nil {
		go func() {
			log.Info().Str("addr", a.cfg.MetricsAddr).Msg("metrics server listening")
			if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	if a.cfg.RunFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.RunFor)
		defer cancel()
	}

	helpersCtx, stopHelpers := context.WithCancel(context.Background())
	var helpers sync.WaitGroup
	if a.sender != nil {
		helpers.Add(1)
		go func() {
			defer helpers.Done()
			a.sender.Run(helpersCtx)
		}()
	}
	if a.store != nil {
		helpers.Add(1)
		go func() {
			defer helpers.Done()
			runJanitor(helpersCtx, a.store, a.cfg.RecordKeep, a.cfg.RecordPruneInterval)
		}()
	}

	log.Info().
		Str("update_interval", a.cfg.UpdateInterval.String()).
		Int("producers", a.cfg.Producers).
		Str("run_for", a.cfg.RunFor.String()).
		Bool("console", a.cfg.Console).
		Bool("record", a.store != nil).
		Bool("remote_write", a.sender != nil).
		Msg("fastui started")

	err := a.updater.Run(ctx)

	// The sampler has exited, so the sender's final flush sees the last sample.
	stopHelpers()
	helpers.Wait()

	last, _ := a.updater.Last()
	log.Info().
		Uint64("produced", a.updater.Produced()).
		Uint64("counter", a.updater.Guard().Read()).
		Uint64("poll_count", last.PollCount).
		Msg("fastui stopped")
	return err
}

// Close performs graceful shutdown. It is safe to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.updater.Shutdown()

		if a.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.httpSrv.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("metrics server shutdown error")
			}
		}
		for _, s := range a.sinks {
			if err := s.Close(); err != nil {
				log.Warn().Err(err).Str("sink", s.Name()).Msg("sink close failed")
			}
		}
		if a.store != nil {
			if err := a.store.Prune(a.cfg.RecordKeep); err != nil {
				log.Warn().Err(err).Msg("final record prune failed")
			}
		}
		a.closeStore()
	})
}

func (a *App) closeStore() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("store close failed")
	}
}

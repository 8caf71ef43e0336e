// Package metrics defines package-level Prometheus metric variables for
// fastui. Call Register() once at startup to expose them on the default
// registry, or RegisterWith() to use an isolated registry in tests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// TicksTotal counts every sampler tick.
	TicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fastui_ticks_total",
		Help: "Total sampler ticks since process start.",
	})

	// CounterValue is the counter value read on the most recent tick.
	CounterValue = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fastui_counter_value",
		Help: "Shared counter value observed on the last sampler tick.",
	})

	// PollCount is the sampler's poll count as of the most recent tick.
	PollCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fastui_poll_count",
		Help: "Sampler poll count as of the last tick.",
	})

	// SinkErrors counts failed sink reports, labelled by sink name.
	SinkErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fastui_sink_errors_total",
		Help: "Sink report failures, by sink name.",
	}, []string{"sink"})

	// UpdateIntervalSeconds is the sampler period currently in effect.
	UpdateIntervalSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fastui_update_interval_seconds",
		Help: "Configured sampler update interval in seconds.",
	})

	// ProducersRunning is the number of producer goroutines currently running.
	ProducersRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fastui_producers_running",
		Help: "Producer goroutines currently incrementing the counter.",
	})

	// RemoteWritePushes counts remote-write flushes, labelled by result.
	// Valid results: ok, error.
	RemoteWritePushes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fastui_remote_write_pushes_total",
		Help: "Remote-write pushes, by result (ok|error).",
	}, []string{"result"})

	// RecordDBSizeBytes is the on-disk size of the sample recorder database.
	RecordDBSizeBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fastui_record_db_size_bytes",
		Help: "Size of the sample recorder bbolt database file in bytes.",
	})
)

// Register registers all metrics with prometheus.DefaultRegisterer.
// Call once at process startup.
func Register() {
	RegisterWith(prometheus.DefaultRegisterer)
}

// RegisterWith registers all metrics with the given registerer.
// Use an isolated prometheus.NewRegistry() in tests to avoid conflicts.
func RegisterWith(reg prometheus.Registerer) {
	reg.MustRegister(
		TicksTotal,
		CounterValue,
		PollCount,
		SinkErrors,
		UpdateIntervalSeconds,
		ProducersRunning,
		RemoteWritePushes,
		RecordDBSizeBytes,
	)
}

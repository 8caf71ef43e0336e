package telemetry

import (
	"github.com/eryajf/promwrite"

	"github.com/msealand/fastuiupdates/internal/sink"
)

const (
	seriesCounterValue = "fastui_counter_value"
	seriesPollCount    = "fastui_poll_count"
)

// BuildTimeSeries converts one sample into remote-write series, one for the
// counter value and one for the poll count, both stamped with the sample time.
func BuildTimeSeries(s sink.Sample, job, instance string) []promwrite.TimeSeries {
	labels := func(name string) []promwrite.Label {
		return []promwrite.Label{
			{Name: "__name__", Value: name},
			{Name: "job", Value: job},
			{Name: "instance", Value: instance},
		}
	}

	return []promwrite.TimeSeries{
		{
			Labels: labels(seriesCounterValue),
			Sample: promwrite.Sample{Time: s.At, Value: float64(s.Value)},
		},
		{
			Labels: labels(seriesPollCount),
			Sample: promwrite.Sample{Time: s.At, Value: float64(s.PollCount)},
		},
	}
}

package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/stream"
)

var (
	passDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "streamgrid",
			Subsystem: "scheduler",
			Name:      "pass_duration_seconds",
			Help:      "Bucketed histogram of stream allocation pass durations.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"pass", "status"})
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "streamgrid",
			Subsystem: "scheduler",
			Name:      "stage_duration_seconds",
			Help:      "Bucketed histogram of scheduling stage durations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"kind", "stage"})
	graphDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "streamgrid",
			Subsystem: "scheduler",
			Name:      "graph_duration_seconds",
			Help:      "Bucketed histogram of whole-graph scheduling durations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"kind"})
	graphsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streamgrid",
			Subsystem: "scheduler",
			Name:      "graphs_total",
			Help:      "Counter of scheduled graphs by outcome.",
		}, []string{"kind", "result"})
	streamsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streamgrid",
			Subsystem: "scheduler",
			Name:      "streams_total",
			Help:      "Counter of streams allocated by successfully scheduled graphs.",
		}, []string{"kind"})
	eventsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streamgrid",
			Subsystem: "scheduler",
			Name:      "events_total",
			Help:      "Counter of event ids allocated.",
		}, []string{"kind"})
	notifiesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streamgrid",
			Subsystem: "scheduler",
			Name:      "notifies_total",
			Help:      "Counter of notify ids allocated.",
		}, []string{"kind"})
	splitsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streamgrid",
			Subsystem: "scheduler",
			Name:      "splits_total",
			Help:      "Counter of stream splits caused by the per-stream task limit.",
		}, []string{"kind"})
)

// InitMetrics registers all metrics used by the scheduler.
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(passDuration)
	registry.MustRegister(stageDuration)
	registry.MustRegister(graphDuration)
	registry.MustRegister(graphsCounter)
	registry.MustRegister(streamsCounter)
	registry.MustRegister(eventsCounter)
	registry.MustRegister(notifiesCounter)
	registry.MustRegister(splitsCounter)
}

func observePass(p stream.Pass, st stream.Status, elapsed time.Duration) {
	passDuration.WithLabelValues(p.String(), st.String()).Observe(elapsed.Seconds())
}

func observeStage(kind, stage string, elapsed time.Duration) {
	stageDuration.WithLabelValues(kind, stage).Observe(elapsed.Seconds())
}

func observeGraph(kind string, res *Result, err error, elapsed time.Duration) {
	graphDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if err != nil {
		graphsCounter.WithLabelValues(kind, cerror.Class(err)).Inc()
		return
	}
	graphsCounter.WithLabelValues(kind, "ok").Inc()
	streamsCounter.WithLabelValues(kind).Add(float64(res.TotalStreamCount))
	eventsCounter.WithLabelValues(kind).Add(float64(res.EventCount))
	notifiesCounter.WithLabelValues(kind).Add(float64(res.NotifyCount))
	splitsCounter.WithLabelValues(kind).Add(float64(res.Splits))
}

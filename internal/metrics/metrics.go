// Package metrics exposes Prometheus collectors for conversations and the
// scene corpus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielpatrickdp/scenechat/internal/corpus"
	"github.com/danielpatrickdp/scenechat/internal/session"
)

const namespace = "scenechat"

// #region metrics
// Metrics owns a private registry. It implements session.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	SessionsTotal *prometheus.CounterVec
	OutcomesTotal *prometheus.CounterVec
	DroppedTotal  prometheus.Counter
	MatchDuration prometheus.Histogram
	ActivePages   prometheus.Gauge
	CorpusScenes  prometheus.Gauge
}

var _ session.Recorder = (*Metrics)(nil)

// New registers every collector, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Response sessions started, by kind (fresh or retry).",
		}, []string{"kind"}),
		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_outcomes_total",
			Help:      "Finished session attempts by outcome.",
		}, []string{"outcome"}),
		DroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_dropped_total",
			Help:      "Submissions ignored because a session was already active.",
		}),
		MatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Time spent resolving a prompt, excluding the loading floor.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		ActivePages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_pages",
			Help:      "Open conversations.",
		}),
		CorpusScenes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_scenes",
			Help:      "Scenes in the currently loaded corpus.",
		}),
	}
	m.registry.MustRegister(
		m.SessionsTotal, m.OutcomesTotal, m.DroppedTotal,
		m.MatchDuration, m.ActivePages, m.CorpusScenes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveCorpus records the size of a freshly loaded corpus. It fits
// corpus.WithReloadHook.
func (m *Metrics) ObserveCorpus(c *corpus.Corpus) {
	m.CorpusScenes.Set(float64(c.Len()))
}

// #endregion metrics

// #region recorder
func (m *Metrics) Started(r session.Report) {
	kind := "fresh"
	if r.Retry() {
		kind = "retry"
	}
	m.SessionsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) Finished(r session.Report) {
	m.OutcomesTotal.WithLabelValues(r.Result()).Inc()
	m.MatchDuration.Observe(r.MatchDuration.Seconds())
}

func (m *Metrics) Dropped(string, string) {
	m.DroppedTotal.Inc()
}

// #endregion recorder

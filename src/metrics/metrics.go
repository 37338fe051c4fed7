// Package metrics counts refreshes and failures and optionally serves them.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iafilius/DoggiesWorld/src/analysis"
	"github.com/iafilius/DoggiesWorld/src/dogapi"
)

// Metrics holds the viewer's Prometheus collectors on a private registry.
type Metrics struct {
	Registry      *prometheus.Registry
	RefreshTotal  *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
	BreedsStored  prometheus.Gauge
	ActionsTotal  *prometheus.CounterVec
	FetchDuration prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doggies_refresh_total",
			Help: "Completed table refreshes by outcome (filled, replaced)",
		}, []string{"mode"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doggies_errors_total",
			Help: "Failed actions by error kind",
		}, []string{"kind"}),
		BreedsStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "doggies_breeds_stored",
			Help: "Rows currently in the breed table",
		}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doggies_actions_total",
			Help: "User actions by name",
		}, []string{"action"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "doggies_breed_fetch_seconds",
			Help:    "Duration of successful breed list ingestions",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.RefreshTotal, m.ErrorsTotal, m.BreedsStored, m.ActionsTotal, m.FetchDuration)
	return m
}

// ErrorKind maps an error onto a low-cardinality label.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, dogapi.ErrConnection):
		return "connection"
	case errors.Is(err, dogapi.ErrRetrieval):
		return "retrieval"
	case errors.Is(err, dogapi.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, analysis.ErrNoData):
		return "no_data"
	default:
		return "other"
	}
}

// Nil-safe helpers so callers need not check whether metrics are enabled.

func (m *Metrics) IncAction(action string) {
	if m != nil {
		m.ActionsTotal.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) IncError(kind string) {
	if m != nil && kind != "" {
		m.ErrorsTotal.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncRefresh(mode string) {
	if m != nil {
		m.RefreshTotal.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) SetBreeds(n int) {
	if m != nil {
		m.BreedsStored.Set(float64(n))
	}
}

func (m *Metrics) ObserveFetch(seconds float64) {
	if m != nil {
		m.FetchDuration.Observe(seconds)
	}
}

// Package metrics holds the Prometheus collectors updated by the client
// services. Nothing is exported over HTTP; the CLI prints a snapshot.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "jobkeeper"

// Outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
	OutcomeCached    = "cached"
	OutcomeRejected  = "rejected"
)

type Metrics struct {
	registry *prometheus.Registry

	FeedFetches  *prometheus.CounterVec
	FeedJobs     prometheus.Gauge
	StoreWrites  *prometheus.CounterVec
	AuthAttempts *prometheus.CounterVec
	Reconciled   prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "Remote job feed fetches by outcome.",
		}, []string{"outcome"}),
		FeedJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_jobs",
			Help:      "Number of jobs in the latest feed snapshot.",
		}),
		StoreWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Whole-collection writes to the local store by key and outcome.",
		}, []string{"key", "outcome"}),
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login and registration attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		Reconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_jobs_reconciled_total",
			Help:      "Saved job snapshots refreshed from the feed.",
		}),
	}

	m.registry.MustRegister(m.FeedFetches, m.FeedJobs, m.StoreWrites, m.AuthAttempts, m.Reconciled)
	return m
}

// Registry exposes the underlying registry, e.g. for testutil helpers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Snapshot renders every non-zero sample as "name{labels} value" lines,
// sorted by name.
func (m *Metrics) Snapshot() ([]string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			value := sampleValue(mf.GetType(), metric)
			if value == 0 {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s%s %g", mf.GetName(), labels(metric), value))
		}
	}
	sort.Strings(lines)
	return lines, nil
}

func sampleValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	default:
		return 0
	}
}

func labels(m *dto.Metric) string {
	pairs := m.GetLabel()
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, lp := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

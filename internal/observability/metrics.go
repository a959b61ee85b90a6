// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

// Package observability records Prometheus metrics for game discovery,
// launches, and score persistence.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"

	"github.com/arcadehub/arcadehub/internal/game"
)

// Compile-time interface check.
var _ game.Metrics = (*Metrics)(nil)

// Metrics contains the ArcadeHub Prometheus metrics and the registry they are
// registered in.
type Metrics struct {
	registry *prometheus.Registry

	CandidatesRejected *prometheus.CounterVec
	PluginsLoaded      *prometheus.CounterVec
	PluginFailures     *prometheus.CounterVec
	CatalogGames       prometheus.Gauge
	LaunchesTotal      *prometheus.CounterVec
	ScoresRecorded     *prometheus.CounterVec
	PersistFailures    prometheus.Counter
}

// NewMetrics creates the metrics in a private registry.
func NewMetrics() *Metrics {
	// A private registry keeps the textfile free of unrelated collectors.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		CandidatesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arcadehub_candidates_rejected_total",
				Help: "Plugin directories skipped during discovery by reason",
			},
			[]string{"reason"},
		),
		PluginsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arcadehub_plugins_loaded_total",
				Help: "Plugins loaded into the catalog by runtime",
			},
			[]string{"runtime"},
		),
		PluginFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arcadehub_plugin_failures_total",
				Help: "Plugin failures by lifecycle stage",
			},
			[]string{"stage"},
		),
		CatalogGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arcadehub_catalog_games",
			Help: "Games in the catalog after the last discovery",
		}),
		LaunchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arcadehub_launches_total",
				Help: "Game launches by game and final state",
			},
			[]string{"game", "state"},
		),
		ScoresRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arcadehub_scores_recorded_total",
				Help: "Scores recorded by game",
			},
			[]string{"game"},
		),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arcadehub_score_persist_failures_total",
			Help: "Score saves that failed after retries",
		}),
	}

	registry.MustRegister(
		m.CandidatesRejected,
		m.PluginsLoaded,
		m.PluginFailures,
		m.CatalogGames,
		m.LaunchesTotal,
		m.ScoresRecorded,
		m.PersistFailures,
	)
	return m
}

// Registry returns the registry the metrics are registered in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CandidateRejected implements game.Metrics.
func (m *Metrics) CandidateRejected(reason string) {
	m.CandidatesRejected.WithLabelValues(reason).Inc()
}

// PluginLoaded implements game.Metrics.
func (m *Metrics) PluginLoaded(runtime string) {
	m.PluginsLoaded.WithLabelValues(runtime).Inc()
}

// PluginFailed implements game.Metrics.
func (m *Metrics) PluginFailed(stage string) {
	m.PluginFailures.WithLabelValues(stage).Inc()
}

// CatalogSize implements game.Metrics.
func (m *Metrics) CatalogSize(n int) {
	m.CatalogGames.Set(float64(n))
}

// Launched implements game.Metrics.
func (m *Metrics) Launched(gameID, state string) {
	m.LaunchesTotal.WithLabelValues(gameID, state).Inc()
}

// ScoreRecorded implements game.Metrics.
func (m *Metrics) ScoreRecorded(gameID string) {
	m.ScoresRecorded.WithLabelValues(gameID).Inc()
}

// PersistFailed implements game.Metrics.
func (m *Metrics) PersistFailed() {
	m.PersistFailures.Inc()
}

// WriteTextfile writes all metrics to path in the text exposition format,
// for collection by the node exporter textfile collector. The write is
// atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return oops.In("observability").With("path", path).Hint("failed to write metrics textfile").Wrap(err)
	}
	return nil
}

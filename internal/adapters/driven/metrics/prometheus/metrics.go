// Package prometheus exposes executor metrics for scraping.
package prometheus

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

const namespace = "stryda"

// shutdownTimeout bounds the metrics server shutdown.
const shutdownTimeout = 5 * time.Second

// Ensure Metrics implements the interface.
var _ driven.RunMetrics = (*Metrics)(nil)

// Metrics records enrichment activity in its own registry.
type Metrics struct {
	registry *prometheus.Registry

	enriched  prometheus.Counter
	skipped   prometheus.Counter
	restarts  prometheus.Counter
	state     *prometheus.GaugeVec
	processed prometheus.Gauge
	total     prometheus.Gauge
	heartbeat prometheus.Gauge
}

// New creates and registers the enrichment metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		enriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "records_enriched_total",
			Help:      "Records committed with at least one metadata field.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "records_skipped_total",
			Help:      "Records marked processed without metadata.",
		}),
		restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "restarts_total",
			Help:      "Automatic restarts after a stall.",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "state",
			Help:      "1 for the current run state, 0 otherwise.",
		}, []string{"note"}),
		processed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "processed_records",
			Help:      "Records processed at the last heartbeat.",
		}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "total_records",
			Help:      "Records in the store at the last heartbeat.",
		}),
		heartbeat: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "last_heartbeat_timestamp_seconds",
			Help:      "Unix time of the last heartbeat.",
		}),
	}
	m.registry.MustRegister(m.enriched, m.skipped, m.restarts, m.state, m.processed, m.total, m.heartbeat)
	return m
}

// BatchProcessed counts enriched records.
func (m *Metrics) BatchProcessed(n int) {
	m.enriched.Add(float64(n))
}

// RecordsSkipped counts records with no metadata.
func (m *Metrics) RecordsSkipped(n int) {
	m.skipped.Add(float64(n))
}

// Restarted counts a restart.
func (m *Metrics) Restarted() {
	m.restarts.Inc()
}

// StateChanged sets the state gauge for note and clears the others.
func (m *Metrics) StateChanged(note domain.RunNote) {
	for _, n := range domain.AllRunNotes() {
		v := 0.0
		if n == note {
			v = 1
		}
		m.state.WithLabelValues(string(n)).Set(v)
	}
}

// Heartbeat records progress.
func (m *Metrics) Heartbeat(processed, total int) {
	m.processed.Set(float64(processed))
	m.total.Set(float64(total))
	m.heartbeat.SetToCurrentTime()
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "housing_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the refresh pipeline.
type Metrics struct {
	Refreshes       *prometheus.CounterVec // labels: outcome={success,source_error,publish_error}
	RefreshDuration prometheus.Histogram
	PipelineRunning prometheus.Gauge
	LastSuccess     prometheus.Gauge

	// Data quality metrics, per source={price,salary}.
	RowsDropped    *prometheus.CounterVec // labels: source, reason={unrecognized_region}
	CellsRejected  *prometheus.CounterVec // labels: source
	ColumnsInvalid *prometheus.CounterVec // labels: source

	// Output metrics.
	RecordsDerived   prometheus.Gauge
	RegionsServed    prometheus.Gauge
	RecordsPublished prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Refresh attempts by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-derive-publish refresh.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Source rows dropped while building a series table.",
		}, []string{"source", "reason"}),
		CellsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_rejected_total",
			Help:      "Value cells that were empty, unparseable or non-positive.",
		}, []string{"source"}),
		ColumnsInvalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "columns_invalid_total",
			Help:      "Year columns skipped because the header is not an integer.",
		}, []string{"source"}),
		RecordsDerived: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_derived",
			Help:      "Derived records in the currently served dataset.",
		}),
		RegionsServed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regions_served",
			Help:      "Distinct regions in the currently served dataset.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Derived records written to the sink topic.",
		}),
	}

	prometheus.MustRegister(
		m.Refreshes,
		m.RefreshDuration,
		m.PipelineRunning,
		m.LastSuccess,
		m.RowsDropped,
		m.CellsRejected,
		m.ColumnsInvalid,
		m.RecordsDerived,
		m.RegionsServed,
		m.RecordsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Refreshes:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "refreshes_total"}, []string{"outcome"}),
		RefreshDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "refresh_duration_seconds"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		LastSuccess:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "last_success_timestamp_seconds"}),
		RowsDropped:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "rows_dropped_total"}, []string{"source", "reason"}),
		CellsRejected:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "cells_rejected_total"}, []string{"source"}),
		ColumnsInvalid:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "columns_invalid_total"}, []string{"source"}),
		RecordsDerived:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "records_derived"}),
		RegionsServed:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "regions_served"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "records_published_total"}),
	}
}

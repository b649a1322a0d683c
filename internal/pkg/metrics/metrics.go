// Package metrics exposes Prometheus metrics for KPI report runs.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry is the custom prometheus registry of the application
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// RunDurationSeconds tracks the wall time of a full run (extract, compute, export).
var RunDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "kpi",
	Name:      "run_duration_seconds",
	Help:      "Time taken by a KPI run from extraction to publication",
	Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
})

// StageDurationSeconds tracks each run stage separately.
var StageDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "kpi",
	Name:      "stage_duration_seconds",
	Help:      "Time taken by each stage of a KPI run",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
}, []string{"stage"})

// RunsTotal counts runs by outcome.
var RunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kpi",
	Name:      "runs_total",
	Help:      "KPI runs by outcome",
}, []string{"outcome"})

// RowsByDesignation tracks the row count of each table of the last run.
var RowsByDesignation = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "rows",
	Help:      "Rows in each KPI table of the last successful run",
}, []string{"table"})

// SourceRecords tracks how many records each source table contributed to the last run.
var SourceRecords = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "source_records",
	Help:      "Records extracted per source table in the last run",
}, []string{"source"})

// ClampedCountsTotal counts coverage counts that exceeded their assigned totals.
var ClampedCountsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "kpi",
	Name:      "clamped_counts_total",
	Help:      "Coverage counts clamped to the assigned total",
})

// LastSuccessTimestamp is the unix time of the last successful run.
var LastSuccessTimestamp = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "last_success_timestamp_seconds",
	Help:      "Unix time of the last successful KPI run",
})

// ExportUploadsTotal counts workbook uploads per storage target and outcome.
var ExportUploadsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kpi",
	Name:      "export_uploads_total",
	Help:      "Workbook uploads by storage target and outcome",
}, []string{"target", "outcome"})

// Push sends the registry to a Pushgateway, for one-shot runs
func Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}

package kpi

import (
	"context"
	"io"
)

// KPIService defines the interface for KPI report generation
type KPIService interface {
	// Run extracts, computes, exports and publishes a KPI report
	Run(ctx context.Context, req RunRequest) (RunSummary, error)

	// Latest returns the most recently published report
	Latest(ctx context.Context) (Report, error)

	// GetTable returns one designation table of the latest report
	GetTable(ctx context.Context, req TableRequest) (Table, error)

	// DownloadLatest opens the exported workbook of the latest report
	DownloadLatest(ctx context.Context) (io.ReadCloser, string, error)
}

package dashboard

import (
	"bytes"
	"context"
)

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetDashboard returns the division aggregates of the filtered dataset
	GetDashboard(ctx context.Context, filter Filter) (*DashboardResponse, error)

	// GetFilterOptions lists the values each filter can take, narrowed by earlier selections
	GetFilterOptions(ctx context.Context, filter Filter) (*FilterOptionsResponse, error)

	// UploadWorkbook replaces the uploaded dataset with an exported KPI workbook
	UploadWorkbook(ctx context.Context, req UploadRequest) (*UploadResponse, error)

	// ExportFiltered renders the filtered rows as a workbook
	ExportFiltered(ctx context.Context, filter Filter) (*bytes.Buffer, string, error)
}

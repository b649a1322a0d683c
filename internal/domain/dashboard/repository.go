package dashboard

import (
	"context"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
)

// ReportSource provides the most recently published KPI report.
type ReportSource interface {
	Latest(ctx context.Context) (kpi.Report, error)
}

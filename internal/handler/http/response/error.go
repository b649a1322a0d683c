package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/salesops/kpi-backend-go/internal/domain/auth"
	"github.com/salesops/kpi-backend-go/internal/domain/dashboard"
	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/salesops/kpi-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrAccessDenied):
		Forbidden(w, "Insufficient permissions")

	// KPI domain errors
	case errors.Is(err, kpi.ErrInvalidDesignation):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, kpi.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, kpi.ErrNoReportAvailable):
		NotFound(w, "No KPI report has been generated yet")
	case errors.Is(err, kpi.ErrRunInProgress):
		Conflict(w, "A KPI run for another period is in progress")
	case errors.Is(err, kpi.ErrExtractionFailed):
		BadGateway(w, "Source data could not be extracted")
	case errors.Is(err, kpi.ErrExportFailed):
		BadGateway(w, "KPI workbook could not be exported")

	// Dashboard domain errors
	case errors.Is(err, dashboard.ErrNoDataset):
		NotFound(w, "No dashboard data available; run a report or upload a workbook")
	case errors.Is(err, dashboard.ErrUnknownDivision):
		NotFound(w, "Division not found")
	case errors.Is(err, dashboard.ErrWorkbookInvalid):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

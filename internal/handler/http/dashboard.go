package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/salesops/kpi-backend-go/internal/domain/dashboard"
	"github.com/salesops/kpi-backend-go/internal/handler/http/response"
	"github.com/salesops/kpi-backend-go/internal/pkg/spreadsheet"
)

type DashboardHandler interface {
	// GetDashboard returns division and zone aggregates of the filtered rows
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// GetFilterOptions lists values for each filter
	GetFilterOptions(w http.ResponseWriter, r *http.Request)
	// UploadWorkbook loads an exported workbook as the dashboard dataset
	UploadWorkbook(w http.ResponseWriter, r *http.Request)
	// Export downloads the filtered rows
	Export(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// parseFilter reads ?source=&division=&zone=West&zone=East or zone=West,East
func parseFilter(r *http.Request) dashboard.Filter {
	q := r.URL.Query()
	filter := dashboard.Filter{
		Source:     q.Get("source"),
		Division:   q.Get("division"),
		Selections: make(map[string][]string),
	}
	for _, f := range dashboard.FilterFields {
		var values []string
		for _, raw := range q[f.Param] {
			for _, v := range strings.Split(raw, ",") {
				if v = strings.TrimSpace(v); v != "" {
					values = append(values, v)
				}
			}
		}
		if len(values) > 0 {
			filter.Selections[f.Column] = values
		}
	}
	return filter
}

// GetDashboard handles GET /dashboard
func (h *dashboardHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetDashboard(r.Context(), parseFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetFilterOptions handles GET /dashboard/filters
func (h *dashboardHandlerImpl) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetFilterOptions(r.Context(), parseFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UploadWorkbook handles POST /dashboard/upload
func (h *dashboardHandlerImpl) UploadWorkbook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, dashboard.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(dashboard.MaxUploadSize); err != nil {
		slog.Error("failed to parse multipart form", "error", err)
		response.BadRequest(w, "Invalid form data or file too large", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required", nil)
		return
	}
	defer file.Close()

	result, err := h.dashboardService.UploadWorkbook(r.Context(), dashboard.UploadRequest{
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
		File:     file,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Workbook uploaded", result)
}

// Export handles GET /dashboard/export
func (h *dashboardHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	buf, name, err := h.dashboardService.ExportFiltered(r.Context(), parseFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, name, spreadsheet.ContentType, buf)
}

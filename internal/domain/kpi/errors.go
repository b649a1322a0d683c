package kpi

import "errors"

var (
	ErrInvalidPeriod        = errors.New("period end must not be before period start")
	ErrInvalidDesignation   = errors.New("designation must be one of TBM, ABM, ZBM")
	ErrNoReportAvailable    = errors.New("no KPI report has been generated yet")
	ErrRunInProgress        = errors.New("a KPI run is already in progress")
	ErrExtractionFailed     = errors.New("failed to extract source data")
	ErrExportFailed         = errors.New("failed to export KPI workbook")
	ErrHierarchyFileInvalid = errors.New("hierarchy file is missing required columns")
)

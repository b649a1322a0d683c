package kpi

import "context"

// SourceFilter scopes one extraction from the CRM replica
type SourceFilter struct {
	Divisions   []string
	CompanyCode string
	Period      Period
}

// SourceRepository defines read-only access to the CRM replica
type SourceRepository interface {
	// Extract reads every source table of a run from one consistent snapshot
	Extract(ctx context.Context, filter SourceFilter) (Extract, error)
}

// HierarchySource loads the organisation hierarchy (code -> parent code)
type HierarchySource interface {
	LoadHierarchy(ctx context.Context) ([]HierarchyLink, error)
}

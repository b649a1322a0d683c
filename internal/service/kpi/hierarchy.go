package kpi

import (
	"strings"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/shopspring/decimal"
)

// CombinedTableName is the sheet name of the enriched, all-designation table
const CombinedTableName = "final_KPI"

// Territory code prefixes of each management level
const (
	territoryPrefixTBM = "IT"
	territoryPrefixABM = "IA"
	territoryPrefixZBM = "ZN"
)

// Hierarchy resolves a territory code to its parent code
type Hierarchy map[string]string

func NewHierarchy(links []kpi.HierarchyLink) Hierarchy {
	h := make(Hierarchy, len(links))
	for _, l := range links {
		code := strings.TrimSpace(l.Code)
		if code == "" {
			continue
		}
		if _, dup := h[code]; dup {
			continue
		}
		h[code] = strings.TrimSpace(l.ParentCode)
	}
	return h
}

// Managers returns the ABM, ZBM and NSM codes above a territory.
// The territory prefix decides which level its direct parent belongs to.
func (h Hierarchy) Managers(territory string) (abm, zbm, nsm string) {
	parent := h[territory]
	switch {
	case strings.HasPrefix(territory, territoryPrefixTBM):
		abm = parent
	case strings.HasPrefix(territory, territoryPrefixABM):
		zbm = parent
	case strings.HasPrefix(territory, territoryPrefixZBM):
		nsm = parent
	}

	if abm != "" {
		if p, ok := h[abm]; ok {
			zbm = p
		}
	}
	if zbm != "" {
		if p, ok := h[zbm]; ok {
			nsm = p
		}
	}
	return abm, zbm, nsm
}

// CombineOptions controls the combined table
type CombineOptions struct {
	Period          kpi.Period
	CallDayActivity string
	ActivityColumns []string
	Territories     []kpi.TerritoryState
	Hierarchy       Hierarchy
}

// Combine concatenates the designation tables and enriches every row with
// Non Field Work, territory and management hierarchy and the DCR month.
// Rows whose last submitted DCR is not in the report year are dropped.
func Combine(tables []kpi.Table, opts CombineOptions) kpi.Table {
	callDayActivity := opts.CallDayActivity
	if callDayActivity == "" {
		callDayActivity = DefaultCallDayActivity
	}

	byTerritory := make(map[string]kpi.TerritoryState)
	for _, t := range opts.Territories {
		if _, seen := byTerritory[t.Territory]; !seen {
			byTerritory[t.Territory] = t
		}
	}

	combined := kpi.Table{
		Name:    CombinedTableName,
		Columns: combinedColumns(tables),
	}

	reportYear := opts.Period.Year()
	for _, t := range tables {
		for _, row := range t.Rows {
			if row.LastSubmittedDCRDate == nil || row.LastSubmittedDCRDate.Year() != reportYear {
				continue
			}

			nonField := decimal.Zero
			for _, col := range opts.ActivityColumns {
				if col == callDayActivity {
					continue
				}
				nonField = nonField.Add(row.ActivityDays[col])
			}
			row.NonFieldWork = nonField

			if ts, ok := byTerritory[row.Territory]; ok {
				row.ParentTerritory = ts.ParentTerritory
				row.Zone = ts.Zone
			}
			row.ABM, row.ZBM, row.NSM = opts.Hierarchy.Managers(row.Territory)
			row.DCRMonth = row.LastSubmittedDCRDate.Format("Jan")

			combined.Rows = append(combined.Rows, row)
		}
	}

	return combined
}

// combinedColumns is the union of the table columns, in first-seen order, plus the enrichment columns
func combinedColumns(tables []kpi.Table) []string {
	var cols []string
	seen := make(map[string]struct{})
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	for _, t := range tables {
		for _, c := range t.Columns {
			add(c)
		}
	}
	for _, c := range kpi.EnrichmentColumns {
		add(c)
	}
	return cols
}

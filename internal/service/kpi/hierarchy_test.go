package kpi

import (
	"testing"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchy_Managers(t *testing.T) {
	h := NewHierarchy([]kpi.HierarchyLink{
		{Code: "IT001", ParentCode: "IA001"},
		{Code: "IA001", ParentCode: "ZN001"},
		{Code: "ZN001", ParentCode: "NSM01"},
		{Code: "IT001", ParentCode: "IGNORED"},
		{Code: " ", ParentCode: "X"},
	})

	tests := []struct {
		territory     string
		abm, zbm, nsm string
	}{
		{"IT001", "IA001", "ZN001", "NSM01"},
		{"IA001", "", "ZN001", "NSM01"},
		{"ZN001", "", "", "NSM01"},
		{"XX001", "", "", ""},
		{"IT999", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.territory, func(t *testing.T) {
			abm, zbm, nsm := h.Managers(tt.territory)
			assert.Equal(t, tt.abm, abm)
			assert.Equal(t, tt.zbm, zbm)
			assert.Equal(t, tt.nsm, nsm)
		})
	}
}

func TestCombine(t *testing.T) {
	tbm := composeSample(t, RollupSpec{Designation: kpi.DesignationTBM, IncludeCoverage: true})
	abm := composeSample(t, RollupSpec{Designation: kpi.DesignationABM})

	// last DCR in the previous year drops out of the combined table
	tbm.Rows[1].LastSubmittedDCRDate = datePtr(2024, time.December, 30)

	ex := sampleExtract()
	combined := Combine([]kpi.Table{tbm, abm}, CombineOptions{
		Period:          june2025,
		ActivityColumns: []string{"Field Work", "Meeting", "Training"},
		Territories:     ex.TerritoryStates,
		Hierarchy:       NewHierarchy(ex.Hierarchy),
	})

	assert.Equal(t, CombinedTableName, combined.Name)
	assert.Equal(t, tbm.Columns, combined.Columns[:len(tbm.Columns)])
	assert.Equal(t, kpi.EnrichmentColumns, combined.Columns[len(tbm.Columns):])

	require.Len(t, combined.Rows, 2)
	rep := combined.Rows[0]
	assert.Equal(t, "1001", rep.EmployeeCode)
	assert.Equal(t, 1.5, rep.Value(kpi.ColNonFieldWork))
	assert.Equal(t, "IA001", rep.Value(kpi.ColParentTerritory))
	assert.Equal(t, "West", rep.Value(kpi.ColZone))
	assert.Equal(t, "IA001", rep.Value(kpi.ColABM))
	assert.Equal(t, "ZN001", rep.Value(kpi.ColZBM))
	assert.Equal(t, "NSM01", rep.Value(kpi.ColNSM))
	assert.Equal(t, "Jun", rep.Value(kpi.ColDCRMonth))

	manager := combined.Rows[1]
	assert.Equal(t, "2001", manager.EmployeeCode)
	assert.Nil(t, manager.Value(kpi.ColTotalDRTotal))
	assert.Nil(t, manager.Value(kpi.ColABM))
	assert.Equal(t, "ZN001", manager.Value(kpi.ColZBM))

	// source tables are untouched
	assert.Empty(t, tbm.Rows[0].DCRMonth)
}

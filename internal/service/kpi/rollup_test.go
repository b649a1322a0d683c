package kpi

import (
	"testing"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeSample(t *testing.T, spec RollupSpec) kpi.Table {
	t.Helper()
	ex := sampleExtract()
	holidays := BuildHolidayIndex(ex.Holidays)
	alloc := AllocateActivityTime(ex.DailyWork, june2025)

	return Compose(spec, Inputs{
		Period:          june2025,
		Employees:       ex.Employees,
		Calls:           SummarizeCalls(ex.DailyWork, june2025),
		Activity:        alloc,
		ActivityColumns: ActivityColumns(ex.Activities, june2025, alloc.Observed),
		Coverage:        AggregateCoverage(ex.Assignments, ex.Visits, june2025).ByEmployee,
		Leaves: SummarizeLeaves(FilterLeaveRequests(ex.LeaveRequests, ex.TerritoryStates),
			holidays, june2025, BoundaryYearMonth),
	})
}

func TestCompose_TBMTable(t *testing.T) {
	table := composeSample(t, RollupSpec{Designation: kpi.DesignationTBM, IncludeCoverage: true})

	assert.Equal(t, "final_KPI_TBM", table.Name)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1001", table.Rows[0].EmployeeCode)
	assert.Equal(t, "1002", table.Rows[1].EmployeeCode)

	row := table.Rows[0]
	assert.Equal(t, "Active", row.Value(kpi.ColStatus))
	assert.Equal(t, 1.5, row.Value(kpi.ColCallDays))
	assert.Equal(t, 16, row.Value(kpi.ColPlanDRCalls))
	assert.Equal(t, 13, row.Value(kpi.ColActualDRCalls))
	assert.Equal(t, 8.67, row.Value(kpi.ColDoctorCallAvg))

	// ACC1 once (1PC met), ACC2 twice (2PC met), ACC3 once (4PC missed)
	assert.Equal(t, 1, row.Value(kpi.TierMetColumn(1)))
	assert.Equal(t, 1, row.Value(kpi.TierMetColumn(2)))
	assert.Equal(t, 1, row.Value(kpi.Col2PCCov))
	assert.Equal(t, 0, row.Value(kpi.TierMetColumn(4)))
	assert.Nil(t, row.Value(kpi.TierCovPctColumn(3)))
	assert.Equal(t, 3, row.Value(kpi.ColTotalDRTotal))
	assert.Equal(t, 3, row.Value(kpi.ColTotalDRVisited))
	assert.Equal(t, 100.0, row.Value(kpi.ColTotalDRCovPct))

	// June 9 to 11 with the 10th a StateA holiday
	assert.Equal(t, 2, row.Value(kpi.ColLeaves))
	assert.Equal(t, 2, row.Value("Casual Leave"))
	assert.Equal(t, 0, row.Value("Sick Leave"))
	// 3 activity days plus 2 leave days
	assert.Equal(t, 5.0, row.Value(kpi.ColTotalDays))

	other := table.Rows[1]
	assert.Equal(t, 0, other.Value(kpi.ColLeaves))
	assert.Nil(t, other.Value(kpi.ColTotalDays), "no leave line leaves Total Days undefined")
	assert.Equal(t, 0, other.Value(kpi.TierMetColumn(2)))
	assert.Equal(t, 0.0, other.Value(kpi.TierCovPctColumn(2)))
}

func TestCompose_ManagerTablesOmitCoverage(t *testing.T) {
	for _, d := range []kpi.Designation{kpi.DesignationABM, kpi.DesignationZBM} {
		table := composeSample(t, RollupSpec{Designation: d})

		require.Len(t, table.Rows, 1, d)
		assert.NotContains(t, table.Columns, kpi.ColTotalDRTotal)
		assert.NotContains(t, table.Columns, kpi.Col2PCCov)
		assert.Contains(t, table.Columns, kpi.ColLeaves)
		assert.Nil(t, table.Rows[0].Coverage)
	}
}

func TestCompose_ColumnContract(t *testing.T) {
	table := composeSample(t, RollupSpec{Designation: kpi.DesignationTBM, IncludeCoverage: true})

	want := []string{
		"Employee Code", "Division Name", "Full Name", "Territory Headquarter", "Designation",
		"DOJ", "Territory", "Last Submitted DCR Date", "Status",
		"Call Days", "Plan DR Calls", "Actual DR Calls", "Doctor Call Avg",
		"1PC DR Total", "1PC Freq Met", "1PC Freq Cov %",
		"2PC DR Total", "2PC Freq Met", "2PC Freq Cov %", "2PC Cov", "2PC Cov %",
		"3PC DR Total", "3PC Freq Met", "3PC Freq Cov %",
		"4PC DR Total", "4PC Freq Met", "4PC Freq Cov %",
		"Total DR Total", "Total DR Visited", "Total DR Missed", "Total DR Cov %",
		"Leaves", "Field Work", "Meeting", "Training", "Casual Leave", "Sick Leave", "Total Days",
	}
	assert.Equal(t, want, table.Columns)
}

func TestCompose_ZeroCallDaysGivesZeroAverage(t *testing.T) {
	table := Compose(RollupSpec{Designation: kpi.DesignationTBM, IncludeCoverage: true}, Inputs{
		Period:    june2025,
		Employees: []kpi.Employee{employee("1001", kpi.DesignationTBM, "IT001")},
	})

	require.Len(t, table.Rows, 1)
	assert.Equal(t, 0.0, table.Rows[0].Value(kpi.ColDoctorCallAvg))
	assert.Equal(t, 0.0, table.Rows[0].Value(kpi.ColCallDays))
	assert.Nil(t, table.Rows[0].Value(kpi.ColTotalDRCovPct))
}

func TestCompose_Roster(t *testing.T) {
	inactive := employee("1003", kpi.DesignationTBM, "IT003")
	inactive.Active = false
	late := employee("1004", kpi.DesignationTBM, "IT004")
	late.StartDate = date(2025, time.July, 1)
	duplicate := employee("1001", kpi.DesignationTBM, "IT009")

	table := Compose(RollupSpec{Designation: kpi.DesignationTBM}, Inputs{
		Period: june2025,
		Employees: []kpi.Employee{
			employee("1001", kpi.DesignationTBM, "IT001"),
			employee("2001", kpi.DesignationABM, "IA001"),
			inactive, late, duplicate,
		},
	})

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "IT001", table.Rows[0].Territory)
}

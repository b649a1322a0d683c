package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/salesops/kpi-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJune2025(t *testing.T, setup *TestDatabaseSetup) {
	setup.Exec(t,
		`INSERT INTO target VALUES
			('1001', 'Asha Rao', 'TBM', 'Territory Business Manager', 'D1', 'Pharma A', 'IT001', 'Mumbai', '2024-01-01', TRUE, '2025-06-28'),
			('1002', 'Ravi Kumar', 'TBM', NULL, 'D1', 'Pharma A', 'IT002', 'Pune', '2025-07-15', TRUE, NULL),
			('2001', 'Other Division', 'TBM', NULL, 'D9', 'Other', 'IT900', 'Delhi', '2024-01-01', TRUE, NULL),
			('1003', 'Retired', 'NSM', NULL, 'D1', 'Pharma A', 'NS01', 'Mumbai', '2020-01-01', TRUE, NULL)`,
		`INSERT INTO dcr VALUES
			('1001', 'D1', 'IT001', '2025-06-02', 'Field Work', NULL, 1, 10, 8, 'Submitted'),
			('1001', 'D1', 'IT001', '2025-07-01', 'Field Work', NULL, 1, 10, 8, 'Submitted'),
			('2001', 'D9', 'IT900', '2025-06-02', 'Field Work', NULL, 1, 10, 8, 'Submitted')`,
		`INSERT INTO holiday_master VALUES
			('Ramzan Id', 'D1', 'Maharashtra', '2025-06-07', 2025, '1758'),
			('Old', 'D1', 'Maharashtra', '2024-06-07', 2024, '1758'),
			('Other Company', 'D1', 'Maharashtra', '2025-06-09', 2025, '9999')`,
		`INSERT INTO dcr_junction VALUES
			('1001', 'D1', 'IT001', 'ACC1', '2025-06-02', 'Submitted', 'BrandX'),
			('1001', 'D1', 'IT001', 'ACC2', '2025-06-03', 'Submitted', NULL)`,
		`INSERT INTO leave_request VALUES
			('1001', 'D1', 'Pharma A', 'Asha Rao', 'Privilege Leave', 'Approved', '2025-06-10', '2025-06-11', 2, TRUE),
			('1001', 'D1', 'Pharma A', 'Asha Rao', 'Privilege Leave', 'Approved', '2024-06-10', '2024-06-11', 2, TRUE),
			('1002', 'D1', 'Pharma A', 'Inactive', 'Sick Leave', 'Approved', '2025-06-10', '2025-06-10', 1, FALSE)`,
		`INSERT INTO territory_states VALUES
			('1001', 'Asha Rao', 'D1', 'IT001', 'IA001', 'Maharashtra', 'West', TRUE),
			('9999', 'Gone', 'D1', 'IT999', NULL, NULL, NULL, FALSE)`,
		`INSERT INTO assignment VALUES
			('1001', 'D1', 'IT001', 'ACC1', 'BrandX', 2, 'Active', 'Doctor', '2025-01-01', NULL),
			('1001', 'D1', 'IT001', 'ACC2', NULL, 1, 'Active', 'Doctor', '2025-01-01', '2025-06-15'),
			('1001', 'D1', 'IT001', 'CHEM1', NULL, 1, 'Active', 'Chemist', '2025-01-01', NULL)`,
		`INSERT INTO activity_master VALUES
			('Field Work', 'Field', NULL, NULL, TRUE, 1),
			('Meeting', 'Non Field', NULL, '2025-06-20', FALSE, 2),
			('Retired Activity', 'Non Field', NULL, '2024-01-01', FALSE, 3)`,
	)
}

func TestKPISourceRepository_Extract(t *testing.T) {
	setup := NewTestDatabase(t)
	seedJune2025(t, setup)

	repo := postgresql.NewKPISourceRepository(setup.DB)
	ex, err := repo.Extract(context.Background(), kpi.SourceFilter{
		Divisions:   []string{"D1"},
		CompanyCode: "1758",
		Period:      kpi.MonthPeriod(2025, time.June),
	})
	require.NoError(t, err)

	// only active TBM/ABM/ZBM rows of the division that started before the period end
	require.Len(t, ex.Employees, 1)
	assert.Equal(t, "1001", ex.Employees[0].EmployeeCode)
	assert.Equal(t, kpi.DesignationTBM, ex.Employees[0].Designation)
	require.NotNil(t, ex.Employees[0].LastSubmittedDCRDate)

	require.Len(t, ex.DailyWork, 1)
	assert.Equal(t, 1.0, ex.DailyWork[0].DayDuration)
	require.NotNil(t, ex.DailyWork[0].Activity1)
	assert.Nil(t, ex.DailyWork[0].Activity2)

	require.Len(t, ex.Holidays, 1)
	assert.Equal(t, "Ramzan Id", ex.Holidays[0].Name)

	require.Len(t, ex.Visits, 2)
	assert.Nil(t, ex.Visits[1].Brand)

	require.Len(t, ex.LeaveRequests, 1)
	assert.Equal(t, 2, ex.LeaveRequests[0].TotalDays)

	require.Len(t, ex.TerritoryStates, 1)
	assert.Equal(t, "West", ex.TerritoryStates[0].Zone)

	// the chemist and the assignment deactivated mid-month are excluded
	require.Len(t, ex.Assignments, 1)
	assert.Equal(t, "ACC1", ex.Assignments[0].Account)

	var names []string
	for _, a := range ex.Activities {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Field Work", "Meeting"}, names)
}

func TestKPISourceRepository_ExtractCanceled(t *testing.T) {
	setup := NewTestDatabase(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := postgresql.NewKPISourceRepository(setup.DB).Extract(ctx, kpi.SourceFilter{
		Divisions: []string{"D1"},
		Period:    kpi.MonthPeriod(2025, time.June),
	})
	assert.Error(t, err)
}

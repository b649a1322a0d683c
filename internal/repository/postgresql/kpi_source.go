package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/salesops/kpi-backend-go/internal/pkg/database"
)

type kpiSourceRepositoryImpl struct {
	db *database.DB
}

// NewKPISourceRepository reads the CRM replica tables a KPI run needs
func NewKPISourceRepository(db *database.DB) kpi.SourceRepository {
	return &kpiSourceRepositoryImpl{db: db}
}

// Extract implements kpi.SourceRepository. All tables are read inside one snapshot.
func (r *kpiSourceRepositoryImpl) Extract(ctx context.Context, filter kpi.SourceFilter) (kpi.Extract, error) {
	var out kpi.Extract

	err := WithSnapshot(ctx, r.db, func(ctx context.Context) error {
		steps := []struct {
			name string
			fn   func(ctx context.Context) error
		}{
			{"daily_work", func(ctx context.Context) (err error) {
				out.DailyWork, err = r.dailyWork(ctx, filter)
				return err
			}},
			{"holidays", func(ctx context.Context) (err error) {
				out.Holidays, err = r.holidays(ctx, filter)
				return err
			}},
			{"employees", func(ctx context.Context) (err error) {
				out.Employees, err = r.employees(ctx, filter)
				return err
			}},
			{"visits", func(ctx context.Context) (err error) {
				out.Visits, err = r.visits(ctx, filter)
				return err
			}},
			{"leave_requests", func(ctx context.Context) (err error) {
				out.LeaveRequests, err = r.leaveRequests(ctx, filter)
				return err
			}},
			{"territory_states", func(ctx context.Context) (err error) {
				out.TerritoryStates, err = r.territoryStates(ctx)
				return err
			}},
			{"assignments", func(ctx context.Context) (err error) {
				out.Assignments, err = r.assignments(ctx, filter)
				return err
			}},
			{"activities", func(ctx context.Context) (err error) {
				out.Activities, err = r.activities(ctx, filter)
				return err
			}},
		}

		for _, step := range steps {
			start := time.Now()
			if err := step.fn(ctx); err != nil {
				return fmt.Errorf("%w: %s: %w", kpi.ErrExtractionFailed, step.name, err)
			}
			slog.Debug("Extracted source table", "table", step.name, "duration", time.Since(start))
		}
		return nil
	})
	if err != nil {
		return kpi.Extract{}, err
	}

	return out, nil
}

func (r *kpiSourceRepositoryImpl) dailyWork(ctx context.Context, f kpi.SourceFilter) ([]kpi.DailyWork, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.owner_alias, d.division, d.territory_code, d.dcr_date,
			   d.activity1_name, d.activity2_name, COALESCE(d.day_duration, 0),
			   COALESCE(d.doctors_planned, 0), COALESCE(d.doctor_count, 0), d.status
		FROM dcr d
		WHERE d.division = ANY($1) AND d.dcr_date >= $2 AND d.dcr_date <= $3
		ORDER BY d.owner_alias, d.dcr_date
	`

	rows, err := q.Query(ctx, query, f.Divisions, f.Period.Start, f.Period.End)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (kpi.DailyWork, error) {
		var d kpi.DailyWork
		err := row.Scan(
			&d.EmployeeCode,
			&d.Division,
			&d.Territory,
			&d.Date,
			&d.Activity1,
			&d.Activity2,
			&d.DayDuration,
			&d.DoctorsPlanned,
			&d.DoctorCalls,
			&d.Status,
		)
		return d, err
	})
}

func (r *kpiSourceRepositoryImpl) holidays(ctx context.Context, f kpi.SourceFilter) ([]kpi.HolidayEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT h.name, h.division, h.state_name, h.holiday_date, h.year
		FROM holiday_master h
		WHERE h.company_code = $1 AND h.year = $2
		ORDER BY h.division, h.state_name, h.holiday_date
	`

	rows, err := q.Query(ctx, query, f.CompanyCode, f.Period.Start.Year())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (kpi.HolidayEntry, error) {
		var h kpi.HolidayEntry
		err := row.Scan(&h.Name, &h.Division, &h.StateName, &h.Date, &h.Year)
		return h, err
	})
}

func (r *kpiSourceRepositoryImpl) employees(ctx context.Context, f kpi.SourceFilter) ([]kpi.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT t.user_alias, t.user_name, t.designation, COALESCE(t.abbott_designation, ''),
			   t.division, COALESCE(t.division_name, ''), t.territory, COALESCE(t.hq, ''),
			   t.start_date, t.is_active, t.last_submitted_dcr_date
		FROM target t
		WHERE t.division = ANY($1)
		  AND t.designation IN ('TBM', 'ABM', 'ZBM')
		  AND t.is_active = TRUE
		  AND t.start_date <= $2
		ORDER BY t.user_alias
	`

	rows, err := q.Query(ctx, query, f.Divisions, f.Period.End)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (kpi.Employee, error) {
		var e kpi.Employee
		var designation string
		err := row.Scan(
			&e.EmployeeCode,
			&e.FullName,
			&designation,
			&e.AbbottDesignation,
			&e.Division,
			&e.DivisionName,
			&e.Territory,
			&e.TerritoryHeadquarter,
			&e.StartDate,
			&e.Active,
			&e.LastSubmittedDCRDate,
		)
		e.Designation = kpi.Designation(designation)
		return e, err
	})
}

func (r *kpiSourceRepositoryImpl) visits(ctx context.Context, f kpi.SourceFilter) ([]kpi.VisitRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT j.owner_alias, j.division, j.territory_code, j.account, j.dcr_date, j.dcr_status, j.brand1
		FROM dcr_junction j
		WHERE j.division = ANY($1) AND j.dcr_date >= $2 AND j.dcr_date <= $3
		ORDER BY j.owner_alias, j.account, j.dcr_date
	`

	rows, err := q.Query(ctx, query, f.Divisions, f.Period.Start, f.Period.End)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (kpi.VisitRecord, error) {
		var v kpi.VisitRecord
		err := row.Scan(&v.EmployeeCode, &v.Division, &v.Territory, &v.Account, &v.Date, &v.Status, &v.Brand)
		return v, err
	})
}

func (r *kpiSourceRepositoryImpl) leaveRequests(ctx context.Context, f kpi.SourceFilter) ([]kpi.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	// requests touching the report year; apportionment decides what falls in the month
	query := `
		SELECT l.owner_alias, l.division, COALESCE(l.division_name, ''), COALESCE(l.user_name, ''),
			   l.leave_type, l.status, l.from_date, l.to_date, COALESCE(l.total_days, 0)
		FROM leave_request l
		WHERE l.division = ANY($1)
		  AND l.user_is_active = TRUE
		  AND (EXTRACT(YEAR FROM l.from_date) = $2 OR EXTRACT(YEAR FROM l.to_date) = $2)
		ORDER BY l.owner_alias, l.from_date
	`

	rows, err := q.Query(ctx, query, f.Divisions, f.Period.Year())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (kpi.LeaveRequest, error) {
		var l kpi.LeaveRequest
		err := row.Scan(
			&l.EmployeeCode,
			&l.Division,
			&l.DivisionName,
			&l.FullName,
			&l.LeaveType,
			&l.Status,
			&l.FromDate,
			&l.ToDate,
			&l.TotalDays,
		)
		return l, err
	})
}

func (r *kpiSourceRepositoryImpl) territoryStates(ctx context.Context) ([]kpi.TerritoryState, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ts.user_alias, COALESCE(ts.user_name, ''), COALESCE(ts.division, ''), ts.territory,
			   COALESCE(ts.parent_territory, ''), COALESCE(ts.state_name, ''), COALESCE(ts.zone, '')
		FROM territory_states ts
		WHERE ts.user_is_active = TRUE
		ORDER BY ts.user_alias, ts.territory
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (kpi.TerritoryState, error) {
		var t kpi.TerritoryState
		err := row.Scan(&t.EmployeeCode, &t.EmployeeName, &t.Division, &t.Territory, &t.ParentTerritory, &t.State, &t.Zone)
		return t, err
	})
}

func (r *kpiSourceRepositoryImpl) assignments(ctx context.Context, f kpi.SourceFilter) ([]kpi.VisitAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.owner_alias, a.division, COALESCE(a.territory_code, ''), a.account,
			   COALESCE(a.brand1, ''), a.frequency, a.status, a.effective_date, a.deactivation_date
		FROM assignment a
		WHERE a.division = ANY($1)
		  AND a.customer_type = 'Doctor'
		  AND a.effective_date <= $2
		  AND (a.deactivation_date IS NULL OR a.deactivation_date >= $2)
		ORDER BY a.owner_alias, a.account
	`

	rows, err := q.Query(ctx, query, f.Divisions, f.Period.End)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (kpi.VisitAssignment, error) {
		var a kpi.VisitAssignment
		err := row.Scan(
			&a.EmployeeCode,
			&a.Division,
			&a.Territory,
			&a.Account,
			&a.Brand,
			&a.Frequency,
			&a.Status,
			&a.EffectiveDate,
			&a.DeactivationDate,
		)
		return a, err
	})
}

func (r *kpiSourceRepositoryImpl) activities(ctx context.Context, f kpi.SourceFilter) ([]kpi.Activity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT am.name, COALESCE(am.type, ''), am.start_date, am.expiration_date, am.active
		FROM activity_master am
		WHERE am.active = TRUE
		   OR (am.active = FALSE AND am.expiration_date >= $1 AND am.expiration_date <= $2)
		ORDER BY am.sort_order NULLS LAST, am.name
	`

	rows, err := q.Query(ctx, query, f.Period.Start, f.Period.End)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (kpi.Activity, error) {
		var a kpi.Activity
		err := row.Scan(&a.Name, &a.Type, &a.StartDate, &a.ExpirationDate, &a.Active)
		return a, err
	})
}

package kpi

import (
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func strPtr(s string) *string { return &s }

var june2025 = kpi.MonthPeriod(2025, time.June)

func assignment(emp, account string, freq int) kpi.VisitAssignment {
	return kpi.VisitAssignment{
		EmployeeCode:  emp,
		Division:      "D1",
		Account:       account,
		Brand:         "BrandX",
		Frequency:     freq,
		Status:        "Active",
		EffectiveDate: date(2024, time.January, 1),
	}
}

func visit(emp, account string, day time.Time) kpi.VisitRecord {
	return kpi.VisitRecord{
		EmployeeCode: emp,
		Division:     "D1",
		Account:      account,
		Date:         day,
		Status:       kpi.VisitStatusSubmitted,
		Brand:        strPtr("BrandX"),
	}
}

func workDay(emp string, day time.Time, a1, a2 string, planned, calls int) kpi.DailyWork {
	d := kpi.DailyWork{
		EmployeeCode:   emp,
		Division:       "D1",
		Date:           day,
		DoctorsPlanned: planned,
		DoctorCalls:    calls,
		Status:         "Submitted",
	}
	if a1 != "" {
		d.Activity1 = strPtr(a1)
	}
	if a2 != "" {
		d.Activity2 = strPtr(a2)
	}
	return d
}

func employee(code string, d kpi.Designation, territory string) kpi.Employee {
	return kpi.Employee{
		EmployeeCode:         code,
		FullName:             "Employee " + code,
		Designation:          d,
		Division:             "D1",
		DivisionName:         "Cardio",
		Territory:            territory,
		TerritoryHeadquarter: "Mumbai",
		StartDate:            date(2020, time.March, 1),
		Active:               true,
		LastSubmittedDCRDate: datePtr(2025, time.June, 14),
	}
}

// sampleExtract is a small but complete extract for June 2025
func sampleExtract() kpi.Extract {
	return kpi.Extract{
		Employees: []kpi.Employee{
			employee("1002", kpi.DesignationTBM, "IT002"),
			employee("1001", kpi.DesignationTBM, "IT001"),
			employee("2001", kpi.DesignationABM, "IA001"),
			employee("3001", kpi.DesignationZBM, "ZN001"),
		},
		DailyWork: []kpi.DailyWork{
			workDay("1001", date(2025, time.June, 2), "Field Work", "", 10, 8),
			workDay("1001", date(2025, time.June, 3), "Field Work", "Meeting", 6, 5),
			workDay("1001", date(2025, time.June, 4), "Training", "", 0, 0),
			workDay("1002", date(2025, time.June, 2), "Field Work", "", 12, 12),
			workDay("2001", date(2025, time.June, 2), "Field Work", "", 4, 3),
		},
		Holidays: []kpi.HolidayEntry{
			{Name: "Founders Day", Division: "D1", StateName: "StateA", Date: date(2025, time.June, 10), Year: 2025},
		},
		LeaveRequests: []kpi.LeaveRequest{
			{EmployeeCode: "1001", Division: "D1", LeaveType: "Casual Leave", Status: "Approved",
				FromDate: date(2025, time.June, 9), ToDate: date(2025, time.June, 11)},
			{EmployeeCode: "2001", Division: "D1", LeaveType: "Sick Leave", Status: "HR Applied",
				FromDate: date(2025, time.June, 16), ToDate: date(2025, time.June, 16)},
			{EmployeeCode: "2001", Division: "D1", LeaveType: "Comp Off", Status: "Approved",
				FromDate: date(2025, time.June, 17), ToDate: date(2025, time.June, 17)},
		},
		TerritoryStates: []kpi.TerritoryState{
			{EmployeeCode: "1001", Territory: "IT001", ParentTerritory: "IA001", State: "StateA", Zone: "West"},
			{EmployeeCode: "1002", Territory: "IT002", ParentTerritory: "IA001", State: "StateA", Zone: "West"},
			{EmployeeCode: "2001", Territory: "IA001", ParentTerritory: "ZN001", State: "StateA", Zone: "West"},
		},
		Assignments: []kpi.VisitAssignment{
			assignment("1001", "ACC1", 1),
			assignment("1001", "ACC2", 2),
			assignment("1001", "ACC3", 4),
			assignment("1002", "ACC9", 2),
		},
		Visits: []kpi.VisitRecord{
			visit("1001", "ACC1", date(2025, time.June, 2)),
			visit("1001", "ACC2", date(2025, time.June, 2)),
			visit("1001", "ACC2", date(2025, time.June, 3)),
			visit("1001", "ACC3", date(2025, time.June, 3)),
		},
		Activities: []kpi.Activity{
			{Name: "Field Work", Active: true},
			{Name: "Meeting", Active: true},
			{Name: "Training", Active: true},
		},
		Hierarchy: []kpi.HierarchyLink{
			{Code: "IT001", ParentCode: "IA001"},
			{Code: "IT002", ParentCode: "IA001"},
			{Code: "IA001", ParentCode: "ZN001"},
			{Code: "ZN001", ParentCode: "NSM01"},
		},
	}
}

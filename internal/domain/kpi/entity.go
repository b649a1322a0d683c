package kpi

import (
	"time"
)

// Designation is the CRM designation code of a field employee
type Designation string

const (
	DesignationTBM Designation = "TBM" // junior rep (territory business manager)
	DesignationABM Designation = "ABM" // area manager
	DesignationZBM Designation = "ZBM" // zonal manager
)

// Designations lists the designation tiers in export order
var Designations = []Designation{DesignationTBM, DesignationABM, DesignationZBM}

func (d Designation) IsValid() bool {
	switch d {
	case DesignationTBM, DesignationABM, DesignationZBM:
		return true
	}
	return false
}

const (
	VisitStatusSubmitted = "Submitted"
	DailyWorkStatusSaved = "Saved"
	EmployeeStatusActive = "Active"
)

// LeaveRequest entity
type LeaveRequest struct {
	EmployeeCode string
	Division     string
	DivisionName string
	FullName     string
	State        string
	LeaveType    string
	Status       string
	FromDate     time.Time
	ToDate       time.Time
	TotalDays    int // requested days; overwritten with the apportioned value
}

// HolidayEntry entity
type HolidayEntry struct {
	Name      string
	Division  string
	StateName string
	Date      time.Time
	Year      int
}

// VisitAssignment links an employee to an account with a required visit frequency
type VisitAssignment struct {
	EmployeeCode     string
	Division         string
	Territory        string
	Account          string
	Brand            string
	Frequency        int
	Status           string
	EffectiveDate    time.Time
	DeactivationDate *time.Time
}

// IsActiveAt reports whether the assignment is effective on the given date
func (a VisitAssignment) IsActiveAt(date time.Time) bool {
	if a.EffectiveDate.After(date) {
		return false
	}
	return a.DeactivationDate == nil || !a.DeactivationDate.Before(date)
}

// VisitRecord is one DCR junction row: a visit to an account on a DCR day
type VisitRecord struct {
	EmployeeCode string
	Division     string
	Territory    string
	Account      string
	Date         time.Time
	Status       string
	Brand        *string
}

// Employee is one row of the active-user roster
type Employee struct {
	EmployeeCode         string
	FullName             string
	Designation          Designation
	AbbottDesignation    string
	Division             string
	DivisionName         string
	Territory            string
	TerritoryHeadquarter string
	StartDate            time.Time
	Active               bool
	LastSubmittedDCRDate *time.Time
}

// DailyWork is one DCR day of the daily work summary
type DailyWork struct {
	EmployeeCode   string
	Division       string
	Territory      string
	Date           time.Time
	Activity1      *string
	Activity2      *string
	DayDuration    float64
	DoctorsPlanned int
	DoctorCalls    int
	Status         string
}

// Activity is one row of the activity master
type Activity struct {
	Name           string
	Type           string
	StartDate      *time.Time
	ExpirationDate *time.Time
	Active         bool
}

// TerritoryState maps an employee territory to its state and parent territory
type TerritoryState struct {
	EmployeeCode    string
	EmployeeName    string
	Division        string
	Territory       string
	ParentTerritory string
	State           string
	Zone            string
}

// HierarchyLink is one edge of the organisation hierarchy file
type HierarchyLink struct {
	Code       string
	ParentCode string
}

// Extract bundles every source table a run consumes
type Extract struct {
	DailyWork       []DailyWork
	Holidays        []HolidayEntry
	Employees       []Employee
	Visits          []VisitRecord
	LeaveRequests   []LeaveRequest
	TerritoryStates []TerritoryState
	Assignments     []VisitAssignment
	Activities      []Activity
	Hierarchy       []HierarchyLink
}

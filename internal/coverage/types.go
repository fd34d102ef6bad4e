package coverage

import (
	"fmt"
	"time"
)

// Period is a 1-based teaching period number within a school day.
type Period int

// Label renders the period as an ordinal such as "1st" or "12th".
func (p Period) Label() string {
	n := int(p)
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// Weekday follows ISO numbering: Monday=1 through Sunday=7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf converts a calendar date to its ISO weekday.
func WeekdayOf(t time.Time) Weekday {
	if t.Weekday() == time.Sunday {
		return Sunday
	}
	return Weekday(t.Weekday())
}

// StaffRole identifies the job of an absent staff member.
type StaffRole string

const (
	StaffRoleTeacher          StaffRole = "TEACHER"
	StaffRoleParaprofessional StaffRole = "PARAPROFESSIONAL"
)

// AbsenceStatus tracks the coverage outcome of an absence.
type AbsenceStatus string

const (
	AbsenceStatusPending           AbsenceStatus = "PENDING"
	AbsenceStatusAssigned          AbsenceStatus = "ASSIGNED"
	AbsenceStatusPartiallyAssigned AbsenceStatus = "PARTIALLY_ASSIGNED"
	AbsenceStatusNoCoverage        AbsenceStatus = "NO_COVERAGE"
)

// Absence is one staff member absent on the run date together with the periods needing cover.
type Absence struct {
	ID              string            `json:"id"`
	StaffID         string            `json:"staff_id"`
	StaffName       string            `json:"staff_name"`
	StaffRole       StaffRole         `json:"staff_role"`
	Department      string            `json:"department,omitempty"`
	Subject         string            `json:"subject,omitempty"`
	Periods         []Period          `json:"periods"`
	ManualOverrides map[Period]string `json:"manual_overrides,omitempty"`
	Status          AbsenceStatus     `json:"status"`
}

// AssignmentType tags the phase that produced an assignment.
type AssignmentType string

const (
	AssignmentTypeFullDay          AssignmentType = "Full Day Sub"
	AssignmentTypeExternal         AssignmentType = "External Sub"
	AssignmentTypeParaprofessional AssignmentType = "Paraprofessional"
	AssignmentTypeInternal         AssignmentType = "Internal Coverage"
	AssignmentTypeEmergency        AssignmentType = "Emergency Coverage"
	AssignmentTypeManual           AssignmentType = "Manual Override"
	AssignmentTypeNone             AssignmentType = "No Coverage"
)

// AssignmentStatus reports whether a period ended up covered.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "ASSIGNED"
	AssignmentStatusUncovered AssignmentStatus = "UNCOVERED"
)

// Assignment is the decision made for one (absence, period) pair.
type Assignment struct {
	AbsenceID     string           `json:"absence_id"`
	StaffID       string           `json:"staff_id"`
	Period        Period           `json:"period"`
	CandidateID   *string          `json:"candidate_id"`
	CandidateName string           `json:"candidate_name,omitempty"`
	Role          CandidateKind    `json:"role,omitempty"`
	Type          AssignmentType   `json:"type"`
	Status        AssignmentStatus `json:"status"`
	Reason        string           `json:"reason"`
}

// Covered reports whether the assignment has an assignee.
func (a Assignment) Covered() bool {
	return a.CandidateID != nil && *a.CandidateID != ""
}

// CoverageResult is the reporting projection of an assignment used by notification and UI layers.
type CoverageResult struct {
	AbsenceID           string           `json:"absence_id"`
	AbsentStaffID       string           `json:"absent_staff_id"`
	AbsentStaffName     string           `json:"absent_staff_name"`
	Period              Period           `json:"period"`
	PeriodLabel         string           `json:"period_label"`
	CandidateID         *string          `json:"candidate_id"`
	CandidateName       string           `json:"candidate_name,omitempty"`
	Role                CandidateKind    `json:"role,omitempty"`
	Type                AssignmentType   `json:"type"`
	Status              AssignmentStatus `json:"status"`
	Reason              string           `json:"reason"`
	CandidatesEvaluated int              `json:"candidates_evaluated"`
}

// ExistingAssignment is a persisted same-day assignment that predates the current run.
type ExistingAssignment struct {
	CandidateID string `json:"candidate_id"`
	Period      Period `json:"period"`
}

// Snapshot is the immutable input of a single run.
type Snapshot struct {
	Date       time.Time
	Absences   []Absence
	Candidates []Candidate
	Schedule   []ScheduleEntry
	Existing   []ExistingAssignment
	WeeklyLoad map[string]int
}

// RunMeta summarises a run.
type RunMeta struct {
	Date                     string  `json:"date"`
	Weekday                  Weekday `json:"weekday"`
	AbsencesProcessed        int     `json:"absences_processed"`
	CoveredPeriods           int     `json:"covered_periods"`
	UncoveredPeriods         int     `json:"uncovered_periods"`
	TotalCandidatesEvaluated int     `json:"total_candidates_evaluated"`
	ProcessingTimeMs         int64   `json:"processing_time_ms"`
	LoadMean                 float64 `json:"load_mean"`
	LoadStdDev               float64 `json:"load_std_dev"`
}

// RunResult is everything a run decided, in processing order.
type RunResult struct {
	Assignments []Assignment     `json:"assignments"`
	Results     []CoverageResult `json:"results"`
	Absences    []Absence        `json:"absences"`
	Loads       map[string]int   `json:"loads"`
	Meta        RunMeta          `json:"meta"`
}

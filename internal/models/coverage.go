package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CoverageAssignment is the persisted decision for one (absence, period) pair.
type CoverageAssignment struct {
	ID             string    `db:"id" json:"id"`
	RunID          string    `db:"run_id" json:"run_id"`
	AbsenceID      string    `db:"absence_id" json:"absence_id"`
	AbsenceDate    time.Time `db:"absence_date" json:"absence_date"`
	Period         int       `db:"period" json:"period"`
	CandidateID    *string   `db:"candidate_id" json:"candidate_id"`
	CandidateName  *string   `db:"candidate_name" json:"candidate_name,omitempty"`
	CandidateRole  *string   `db:"candidate_role" json:"candidate_role,omitempty"`
	AssignmentType string    `db:"assignment_type" json:"assignment_type"`
	Reason         string    `db:"reason" json:"reason"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CoverageAssignmentView joins an assignment with the absent staff member for reporting.
type CoverageAssignmentView struct {
	CoverageAssignment
	StaffID   string `db:"staff_id" json:"staff_id"`
	StaffName string `db:"staff_name" json:"staff_name"`
}

// CoverageRun summarises one engine execution.
type CoverageRun struct {
	ID                       string         `db:"id" json:"id"`
	RunDate                  time.Time      `db:"run_date" json:"run_date"`
	AbsencesProcessed        int            `db:"absences_processed" json:"absences_processed"`
	CoveredPeriods           int            `db:"covered_periods" json:"covered_periods"`
	UncoveredPeriods         int            `db:"uncovered_periods" json:"uncovered_periods"`
	TotalCandidatesEvaluated int            `db:"total_candidates_evaluated" json:"total_candidates_evaluated"`
	ProcessingTimeMs         int64          `db:"processing_time_ms" json:"processing_time_ms"`
	Meta                     types.JSONText `db:"meta" json:"meta"`
	CreatedAt                time.Time      `db:"created_at" json:"created_at"`
}

// CoverageRunFilter drives run history listing.
type CoverageRunFilter struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

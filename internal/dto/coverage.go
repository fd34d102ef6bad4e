package dto

import (
	"github.com/noah-isme/sma-coverage-api/internal/coverage"
	"github.com/noah-isme/sma-coverage-api/internal/models"
)

// RunCoverageRequest triggers the engine for one school day.
type RunCoverageRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	DryRun bool   `json:"dry_run"`
}

// AbsenceOutcome is the status an absence ended the run with.
type AbsenceOutcome struct {
	AbsenceID string                 `json:"absence_id"`
	StaffID   string                 `json:"staff_id"`
	StaffName string                 `json:"staff_name"`
	Periods   []coverage.Period      `json:"periods"`
	Status    coverage.AbsenceStatus `json:"status"`
}

// CoverageRunResponse is returned by a run, persisted or dry.
type CoverageRunResponse struct {
	RunID    string                    `json:"run_id,omitempty"`
	Date     string                    `json:"date"`
	DryRun   bool                      `json:"dry_run"`
	Results  []coverage.CoverageResult `json:"results"`
	Absences []AbsenceOutcome          `json:"absences"`
	Loads    map[string]int            `json:"loads"`
	Meta     coverage.RunMeta          `json:"meta"`
}

// CoverageSheetRow is one line of the daily coverage sheet.
type CoverageSheetRow struct {
	AbsenceID      string  `json:"absence_id"`
	StaffID        string  `json:"staff_id"`
	StaffName      string  `json:"staff_name"`
	Period         int     `json:"period"`
	PeriodLabel    string  `json:"period_label"`
	CandidateID    *string `json:"candidate_id"`
	CandidateName  string  `json:"candidate_name,omitempty"`
	CandidateRole  string  `json:"candidate_role,omitempty"`
	AssignmentType string  `json:"assignment_type"`
	Status         string  `json:"status"`
	Reason         string  `json:"reason"`
}

// CoverageSheet is the persisted coverage for a date.
type CoverageSheet struct {
	Date      string              `json:"date"`
	Rows      []CoverageSheetRow  `json:"rows"`
	Covered   int                 `json:"covered"`
	Uncovered int                 `json:"uncovered"`
	LatestRun *models.CoverageRun `json:"latest_run,omitempty"`
}

// OverrideRequest pins a candidate on an absence period. An empty candidate clears the pin.
type OverrideRequest struct {
	AbsenceID   string `json:"absence_id" validate:"required"`
	Period      int    `json:"period" validate:"required,min=1,max=20"`
	CandidateID string `json:"candidate_id" validate:"omitempty,max=64"`
}

// OverrideResponse echoes the absence's override map after the change.
type OverrideResponse struct {
	AbsenceID       string            `json:"absence_id"`
	ManualOverrides map[string]string `json:"manual_overrides"`
}

// ListCoverageRunsQuery filters run history.
type ListCoverageRunsQuery struct {
	From     string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// ExportFile is a rendered coverage sheet.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

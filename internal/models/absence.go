package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AbsenceStatus mirrors the coverage outcome written back after a run.
type AbsenceStatus string

const (
	AbsenceStatusPending           AbsenceStatus = "PENDING"
	AbsenceStatusAssigned          AbsenceStatus = "ASSIGNED"
	AbsenceStatusPartiallyAssigned AbsenceStatus = "PARTIALLY_ASSIGNED"
	AbsenceStatusNoCoverage        AbsenceStatus = "NO_COVERAGE"
)

// Absence records a staff member's reported unavailability for a date. An empty periods array
// means the whole day.
type Absence struct {
	ID              string         `db:"id" json:"id"`
	StaffID         string         `db:"staff_id" json:"staff_id"`
	AbsenceDate     time.Time      `db:"absence_date" json:"absence_date"`
	Periods         types.JSONText `db:"periods" json:"periods"`
	Reason          *string        `db:"reason" json:"reason,omitempty"`
	Status          AbsenceStatus  `db:"status" json:"status"`
	ManualOverrides types.JSONText `db:"manual_overrides" json:"manual_overrides"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

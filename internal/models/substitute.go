package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SubstituteAvailability lists the periods an external substitute can work on a weekday.
type SubstituteAvailability struct {
	DayOfWeek string `json:"day_of_week"`
	Periods   []int  `json:"periods"`
}

// Substitute is an external substitute on the district roster.
type Substitute struct {
	ID                    string         `db:"id" json:"id"`
	FullName              string         `db:"full_name" json:"full_name"`
	Subjects              types.JSONText `db:"subjects" json:"subjects"`
	Availability          types.JSONText `db:"availability" json:"availability"`
	MaxDailyLoad          int            `db:"max_daily_load" json:"max_daily_load"`
	MaxWeeklyLoad         int            `db:"max_weekly_load" json:"max_weekly_load"`
	PreferredForTeacherID *string        `db:"preferred_for_teacher_id" json:"preferred_for_teacher_id,omitempty"`
	Active                bool           `db:"active" json:"active"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

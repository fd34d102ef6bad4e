package models

import "time"

// StaffRole enumerates the staff roles that can be absent or cover.
type StaffRole string

const (
	StaffRoleTeacher          StaffRole = "TEACHER"
	StaffRoleParaprofessional StaffRole = "PARAPROFESSIONAL"
)

// Staff represents an employed teacher or paraprofessional.
type Staff struct {
	ID                    string    `db:"id" json:"id"`
	FullName              string    `db:"full_name" json:"full_name"`
	Role                  StaffRole `db:"role" json:"role"`
	Department            *string   `db:"department" json:"department,omitempty"`
	Subject               *string   `db:"subject" json:"subject,omitempty"`
	MaxDailyLoad          int       `db:"max_daily_load" json:"max_daily_load"`
	MaxWeeklyLoad         int       `db:"max_weekly_load" json:"max_weekly_load"`
	PreferredForTeacherID *string   `db:"preferred_for_teacher_id" json:"preferred_for_teacher_id,omitempty"`
	Active                bool      `db:"active" json:"active"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// StringValue dereferences optional text columns.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package models

import "time"

// StaffSchedule is one cell of a staff member's weekly timetable.
type StaffSchedule struct {
	ID         string    `db:"id" json:"id"`
	StaffID    string    `db:"staff_id" json:"staff_id"`
	DayOfWeek  string    `db:"day_of_week" json:"day_of_week"`
	TimeSlot   string    `db:"time_slot" json:"time_slot"`
	ClassID    *string   `db:"class_id" json:"class_id,omitempty"`
	SubjectID  *string   `db:"subject_id" json:"subject_id,omitempty"`
	Room       *string   `db:"room" json:"room,omitempty"`
	IsTeaching bool      `db:"is_teaching" json:"is_teaching"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

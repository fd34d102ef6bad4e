package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-coverage-api/internal/models"
)

// StaffScheduleRepository reads the weekly timetable.
type StaffScheduleRepository struct {
	db *sqlx.DB
}

// NewStaffScheduleRepository constructs the repository.
func NewStaffScheduleRepository(db *sqlx.DB) *StaffScheduleRepository {
	return &StaffScheduleRepository{db: db}
}

// ListByDay returns every timetable cell for a weekday name such as MONDAY.
func (r *StaffScheduleRepository) ListByDay(ctx context.Context, dayOfWeek string) ([]models.StaffSchedule, error) {
	const query = `SELECT id, staff_id, day_of_week, time_slot, class_id, subject_id, room, is_teaching, created_at, updated_at
FROM staff_schedules WHERE UPPER(day_of_week) = $1 ORDER BY staff_id ASC, time_slot ASC`
	var rows []models.StaffSchedule
	if err := r.db.SelectContext(ctx, &rows, query, strings.ToUpper(dayOfWeek)); err != nil {
		return nil, fmt.Errorf("list staff schedules for %s: %w", dayOfWeek, err)
	}
	return rows, nil
}

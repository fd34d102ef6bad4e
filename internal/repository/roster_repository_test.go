package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-coverage-api/internal/models"
)

func TestStaffRepositoryListActive(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStaffRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM staff WHERE active = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "role", "department", "subject", "max_daily_load", "max_weekly_load", "preferred_for_teacher_id", "active", "created_at", "updated_at"}).
			AddRow("t-1", "Tari", "TEACHER", "Science", "Math", 0, 0, nil, true, now, now).
			AddRow("p-1", "Putri", "PARAPROFESSIONAL", "Science", nil, 4, 20, "t-1", true, now, now))

	staff, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, models.StaffRoleParaprofessional, staff[1].Role)
	assert.Equal(t, "t-1", models.StringValue(staff[1].PreferredForTeacherID))
	assert.Empty(t, models.StringValue(staff[1].Subject))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstituteRepositoryListActive(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSubstituteRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM substitutes WHERE active = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "subjects", "availability", "max_daily_load", "max_weekly_load", "preferred_for_teacher_id", "active", "created_at", "updated_at"}).
			AddRow("sub-1", "Sari", `["Math"]`, `[{"day_of_week":"MONDAY","periods":[1,2]}]`, 6, 25, nil, true, now, now))

	subs, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.JSONEq(t, `["Math"]`, string(subs[0].Subjects))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffScheduleRepositoryListByDay(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStaffScheduleRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM staff_schedules WHERE UPPER(day_of_week) = $1")).
		WithArgs("MONDAY").
		WillReturnRows(sqlmock.NewRows([]string{"id", "staff_id", "day_of_week", "time_slot", "class_id", "subject_id", "room", "is_teaching", "created_at", "updated_at"}).
			AddRow("s-1", "t-1", "MONDAY", "1", "class-1", "math", "R1", true, now, now))

	rows, err := repo.ListByDay(context.Background(), "monday")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsTeaching)
	assert.NoError(t, mock.ExpectationsWereMet())
}

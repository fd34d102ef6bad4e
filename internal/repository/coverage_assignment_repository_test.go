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

func TestCoverageAssignmentRepositoryUpsertBatch(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCoverageAssignmentRepository(db)
	date := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	sub := "sub-1"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO coverage_assignments")).
		WithArgs(sqlmock.AnyArg(), "run-1", "abs-1", date, 1, "sub-1", sqlmock.AnyArg(), sqlmock.AnyArg(), "External Sub", "Qualified for Math", "ASSIGNED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO coverage_assignments")).
		WithArgs(sqlmock.AnyArg(), "run-1", "abs-1", date, 2, nil, nil, nil, "No Coverage", sqlmock.AnyArg(), "UNCOVERED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rows := []models.CoverageAssignment{
		{RunID: "run-1", AbsenceID: "abs-1", AbsenceDate: date, Period: 1, CandidateID: &sub, AssignmentType: "External Sub", Reason: "Qualified for Math", Status: "ASSIGNED"},
		{RunID: "run-1", AbsenceID: "abs-1", AbsenceDate: date, Period: 2, AssignmentType: "No Coverage", Reason: "none", Status: "UNCOVERED"},
	}
	require.NoError(t, repo.UpsertBatch(context.Background(), nil, rows))
	assert.NotEmpty(t, rows[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageAssignmentRepositoryUpsertBatchEmpty(t *testing.T) {
	db, mock := newRepoMock(t)
	require.NoError(t, NewCoverageAssignmentRepository(db).UpsertBatch(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageAssignmentRepositoryDeleteSuperseded(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCoverageAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM coverage_assignments WHERE absence_id = ANY($1) AND run_id <> $2")).
		WithArgs(sqlmock.AnyArg(), "run-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteSuperseded(context.Background(), nil, "run-2", []string{"abs-1", "abs-2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageAssignmentRepositoryDeleteSupersededWithoutAbsences(t *testing.T) {
	db, mock := newRepoMock(t)
	require.NoError(t, NewCoverageAssignmentRepository(db).DeleteSuperseded(context.Background(), nil, "run-2", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageAssignmentRepositoryListBooked(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCoverageAssignmentRepository(db)

	mock.ExpectQuery("SELECT candidate_id, period FROM coverage_assignments").
		WithArgs("2024-09-02", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"candidate_id", "period"}).AddRow("sub-1", 3).AddRow("t-2", 4))

	rows, err := repo.ListBooked(context.Background(), time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), []string{"abs-1"})
	require.NoError(t, err)
	assert.Equal(t, []ExistingRow{{CandidateID: "sub-1", Period: 3}, {CandidateID: "t-2", Period: 4}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageAssignmentRepositoryCountByCandidate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCoverageAssignmentRepository(db)

	mock.ExpectQuery("SELECT candidate_id, COUNT\\(\\*\\) AS total FROM coverage_assignments").
		WithArgs("2024-09-02", "2024-09-04", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"candidate_id", "total"}).AddRow("sub-1", 5))

	loads, err := repo.CountByCandidate(context.Background(),
		time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"sub-1": 5}, loads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageAssignmentRepositoryListByDate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCoverageAssignmentRepository(db)
	now := time.Now()

	columns := []string{"id", "run_id", "absence_id", "absence_date", "period", "candidate_id", "candidate_name", "candidate_role",
		"assignment_type", "reason", "status", "created_at", "updated_at", "staff_id", "staff_name"}
	mock.ExpectQuery("FROM coverage_assignments ca").
		WithArgs("2024-09-02").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("ca-1", "run-1", "abs-1", now, 1, "sub-1", "Sari", "EXTERNAL_SUBSTITUTE", "External Sub", "ok", "ASSIGNED", now, now, "t-1", "Tari"))

	rows, err := repo.ListByDate(context.Background(), time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tari", rows[0].StaffName)
	assert.Equal(t, "sub-1", *rows[0].CandidateID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-coverage-api/internal/models"
)

var absenceTestColumns = []string{"id", "staff_id", "absence_date", "periods", "reason", "status", "manual_overrides", "created_at", "updated_at"}

func TestAbsenceRepositoryListByDate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAbsenceRepository(db)
	date := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM absences WHERE absence_date = $1")).
		WithArgs("2024-09-02").
		WillReturnRows(sqlmock.NewRows(absenceTestColumns).
			AddRow("abs-1", "t-1", date, `[1,2]`, nil, "PENDING", `{}`, date, date))

	absences, err := repo.ListByDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, absences, 1)
	assert.Equal(t, types.JSONText(`[1,2]`), absences[0].Periods)
	assert.Equal(t, models.AbsenceStatusPending, absences[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAbsenceRepositoryUpdateStatus(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAbsenceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE absences SET status = $1")).
		WithArgs(models.AbsenceStatusAssigned, sqlmock.AnyArg(), "abs-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), nil, "abs-1", models.AbsenceStatusAssigned))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAbsenceRepositoryUpdateManualOverridesNotFound(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAbsenceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE absences SET manual_overrides = $1")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateManualOverrides(context.Background(), "missing", types.JSONText(`{"1":"sub-1"}`))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

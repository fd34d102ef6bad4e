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

func TestCoverageRunRepositoryCreate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCoverageRunRepository(db)
	date := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO coverage_runs")).
		WithArgs(sqlmock.AnyArg(), date, 2, 5, 1, 14, int64(3), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.CoverageRun{RunDate: date, AbsencesProcessed: 2, CoveredPeriods: 5, UncoveredPeriods: 1, TotalCandidatesEvaluated: 14, ProcessingTimeMs: 3}
	require.NoError(t, repo.Create(context.Background(), nil, run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "{}", string(run.Meta))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageRunRepositoryList(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewCoverageRunRepository(db)
	from := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM coverage_runs WHERE run_date >= $1")).
		WithArgs("2024-09-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY run_date DESC, created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("2024-09-01", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "run_date", "absences_processed", "covered_periods", "uncovered_periods", "total_candidates_evaluated", "processing_time_ms", "meta", "created_at"}).
			AddRow("run-1", from, 1, 3, 0, 4, 2, `{}`, now))

	runs, total, err := repo.List(context.Background(), models.CoverageRunFilter{From: &from, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

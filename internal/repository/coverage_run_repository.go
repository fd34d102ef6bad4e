package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-coverage-api/internal/models"
)

const coverageRunColumns = `id, run_date, absences_processed, covered_periods, uncovered_periods, total_candidates_evaluated, processing_time_ms, meta, created_at`

// CoverageRunRepository stores run summaries.
type CoverageRunRepository struct {
	db *sqlx.DB
}

// NewCoverageRunRepository constructs the repository.
func NewCoverageRunRepository(db *sqlx.DB) *CoverageRunRepository {
	return &CoverageRunRepository{db: db}
}

func (r *CoverageRunRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a run summary.
func (r *CoverageRunRepository) Create(ctx context.Context, exec sqlx.ExtContext, run *models.CoverageRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if len(run.Meta) == 0 {
		run.Meta = []byte("{}")
	}
	query := `INSERT INTO coverage_runs (` + coverageRunColumns + `)
VALUES (:id, :run_date, :absences_processed, :covered_periods, :uncovered_periods, :total_candidates_evaluated, :processing_time_ms, :meta, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, run); err != nil {
		return fmt.Errorf("insert coverage run: %w", err)
	}
	return nil
}

// LatestByDate returns the newest run for a date.
func (r *CoverageRunRepository) LatestByDate(ctx context.Context, date time.Time) (*models.CoverageRun, error) {
	query := `SELECT ` + coverageRunColumns + ` FROM coverage_runs WHERE run_date = $1 ORDER BY created_at DESC LIMIT 1`
	var run models.CoverageRun
	if err := r.db.GetContext(ctx, &run, query, date.Format("2006-01-02")); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns run history newest first with the total row count.
func (r *CoverageRunRepository) List(ctx context.Context, filter models.CoverageRunFilter) ([]models.CoverageRun, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.From != nil {
		args = append(args, filter.From.Format("2006-01-02"))
		conditions = append(conditions, fmt.Sprintf("run_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.Format("2006-01-02"))
		conditions = append(conditions, fmt.Sprintf("run_date <= $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM coverage_runs`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count coverage runs: %w", err)
	}

	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT %s FROM coverage_runs%s ORDER BY run_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		coverageRunColumns, where, len(args)-1, len(args))

	var runs []models.CoverageRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list coverage runs: %w", err)
	}
	return runs, total, nil
}

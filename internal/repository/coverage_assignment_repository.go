package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-coverage-api/internal/models"
)

// CoverageAssignmentRepository persists per-period coverage decisions.
type CoverageAssignmentRepository struct {
	db *sqlx.DB
}

// NewCoverageAssignmentRepository constructs the repository.
func NewCoverageAssignmentRepository(db *sqlx.DB) *CoverageAssignmentRepository {
	return &CoverageAssignmentRepository{db: db}
}

func (r *CoverageAssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// UpsertBatch writes one row per (absence, period); a later run overwrites an earlier decision.
func (r *CoverageAssignmentRepository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.CoverageAssignment) error {
	if len(rows) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO coverage_assignments (id, run_id, absence_id, absence_date, period, candidate_id, candidate_name, candidate_role, assignment_type, reason, status, created_at, updated_at)
VALUES (:id, :run_id, :absence_id, :absence_date, :period, :candidate_id, :candidate_name, :candidate_role, :assignment_type, :reason, :status, :created_at, :updated_at)
ON CONFLICT (absence_id, period) DO UPDATE
SET run_id = EXCLUDED.run_id,
    candidate_id = EXCLUDED.candidate_id,
    candidate_name = EXCLUDED.candidate_name,
    candidate_role = EXCLUDED.candidate_role,
    assignment_type = EXCLUDED.assignment_type,
    reason = EXCLUDED.reason,
    status = EXCLUDED.status,
    updated_at = EXCLUDED.updated_at`

	for i := range rows {
		row := &rows[i]
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, row); err != nil {
			return fmt.Errorf("upsert coverage assignment: %w", err)
		}
	}
	return nil
}

// DeleteSuperseded removes rows for the given absences left by earlier runs, so periods a newer
// run no longer produces do not linger on the sheet.
func (r *CoverageAssignmentRepository) DeleteSuperseded(ctx context.Context, exec sqlx.ExtContext, runID string, absenceIDs []string) error {
	if len(absenceIDs) == 0 {
		return nil
	}
	const query = `DELETE FROM coverage_assignments WHERE absence_id = ANY($1) AND run_id <> $2`
	if _, err := r.exec(exec).ExecContext(ctx, query, pq.Array(absenceIDs), runID); err != nil {
		return fmt.Errorf("delete superseded coverage assignments: %w", err)
	}
	return nil
}

// ListByDate returns the coverage sheet for a date joined with the absent staff member.
func (r *CoverageAssignmentRepository) ListByDate(ctx context.Context, date time.Time) ([]models.CoverageAssignmentView, error) {
	const query = `SELECT ca.id, ca.run_id, ca.absence_id, ca.absence_date, ca.period, ca.candidate_id, ca.candidate_name, ca.candidate_role,
       ca.assignment_type, ca.reason, ca.status, ca.created_at, ca.updated_at, a.staff_id, s.full_name AS staff_name
FROM coverage_assignments ca
JOIN absences a ON a.id = ca.absence_id
JOIN staff s ON s.id = a.staff_id
WHERE ca.absence_date = $1
ORDER BY s.full_name ASC, ca.period ASC`
	var rows []models.CoverageAssignmentView
	if err := r.db.SelectContext(ctx, &rows, query, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list coverage assignments: %w", err)
	}
	return rows, nil
}

// ExistingRow is a persisted booking of a candidate for a period.
type ExistingRow struct {
	CandidateID string `db:"candidate_id"`
	Period      int    `db:"period"`
}

// ListBooked returns covered periods on a date, excluding the given absences.
func (r *CoverageAssignmentRepository) ListBooked(ctx context.Context, date time.Time, excludeAbsenceIDs []string) ([]ExistingRow, error) {
	const query = `SELECT candidate_id, period FROM coverage_assignments
WHERE absence_date = $1 AND candidate_id IS NOT NULL AND NOT (absence_id = ANY($2))
ORDER BY candidate_id ASC, period ASC`
	var rows []ExistingRow
	if err := r.db.SelectContext(ctx, &rows, query, date.Format("2006-01-02"), pq.Array(nonNil(excludeAbsenceIDs))); err != nil {
		return nil, fmt.Errorf("list booked coverage: %w", err)
	}
	return rows, nil
}

type loadRow struct {
	CandidateID string `db:"candidate_id"`
	Total       int    `db:"total"`
}

// CountByCandidate sums covered periods per candidate in [from, to], excluding the given absences.
func (r *CoverageAssignmentRepository) CountByCandidate(ctx context.Context, from, to time.Time, excludeAbsenceIDs []string) (map[string]int, error) {
	const query = `SELECT candidate_id, COUNT(*) AS total FROM coverage_assignments
WHERE absence_date BETWEEN $1 AND $2 AND candidate_id IS NOT NULL AND NOT (absence_id = ANY($3))
GROUP BY candidate_id`
	var rows []loadRow
	if err := r.db.SelectContext(ctx, &rows, query, from.Format("2006-01-02"), to.Format("2006-01-02"), pq.Array(nonNil(excludeAbsenceIDs))); err != nil {
		return nil, fmt.Errorf("count coverage by candidate: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.CandidateID] = row.Total
	}
	return out, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/sma-coverage-api/internal/models"
)

const absenceColumns = `id, staff_id, absence_date, periods, reason, status, manual_overrides, created_at, updated_at`

// AbsenceRepository persists reported absences.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository constructs the repository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

func (r *AbsenceRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByDate returns the absences reported for a date.
func (r *AbsenceRepository) ListByDate(ctx context.Context, date time.Time) ([]models.Absence, error) {
	query := `SELECT ` + absenceColumns + ` FROM absences WHERE absence_date = $1 ORDER BY id ASC`
	var absences []models.Absence
	if err := r.db.SelectContext(ctx, &absences, query, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	return absences, nil
}

// FindByID fetches one absence.
func (r *AbsenceRepository) FindByID(ctx context.Context, id string) (*models.Absence, error) {
	query := `SELECT ` + absenceColumns + ` FROM absences WHERE id = $1`
	var absence models.Absence
	if err := r.db.GetContext(ctx, &absence, query, id); err != nil {
		return nil, err
	}
	return &absence, nil
}

// UpdateStatus writes the coverage outcome of an absence.
func (r *AbsenceRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.AbsenceStatus) error {
	const query = `UPDATE absences SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update absence status: %w", err)
	}
	return nil
}

// UpdateManualOverrides replaces the pinned candidates of an absence.
func (r *AbsenceRepository) UpdateManualOverrides(ctx context.Context, id string, overrides types.JSONText) error {
	const query = `UPDATE absences SET manual_overrides = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, overrides, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update manual overrides: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-coverage-api/internal/models"
)

const staffColumns = `id, full_name, role, department, subject, max_daily_load, max_weekly_load, preferred_for_teacher_id, active, created_at, updated_at`

// StaffRepository reads teachers and paraprofessionals.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs the repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// ListActive returns every active staff member ordered by id.
func (r *StaffRepository) ListActive(ctx context.Context) ([]models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE active = TRUE ORDER BY id ASC`
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("list active staff: %w", err)
	}
	return staff, nil
}

// FindByID fetches one staff member.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

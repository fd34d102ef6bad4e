package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-coverage-api/internal/models"
)

const substituteColumns = `id, full_name, subjects, availability, max_daily_load, max_weekly_load, preferred_for_teacher_id, active, created_at, updated_at`

// SubstituteRepository reads the external substitute roster.
type SubstituteRepository struct {
	db *sqlx.DB
}

// NewSubstituteRepository constructs the repository.
func NewSubstituteRepository(db *sqlx.DB) *SubstituteRepository {
	return &SubstituteRepository{db: db}
}

// ListActive returns active substitutes ordered by id.
func (r *SubstituteRepository) ListActive(ctx context.Context) ([]models.Substitute, error) {
	query := `SELECT ` + substituteColumns + ` FROM substitutes WHERE active = TRUE ORDER BY id ASC`
	var subs []models.Substitute
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("list active substitutes: %w", err)
	}
	return subs, nil
}

// FindByID fetches one substitute.
func (r *SubstituteRepository) FindByID(ctx context.Context, id string) (*models.Substitute, error) {
	query := `SELECT ` + substituteColumns + ` FROM substitutes WHERE id = $1`
	var sub models.Substitute
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/alqalam-institute/registry-api/internal/models"
)

// PeriodRepository manages the fixed daily period slots.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository constructs the repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns all periods in daily order.
func (r *PeriodRepository) List(ctx context.Context) ([]models.Period, error) {
	periods := []models.Period{}
	err := r.db.SelectContext(ctx, &periods,
		`SELECT id, label, start_time, end_time, sort_order FROM periods ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// FindByID looks up a single period.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.Period, error) {
	var period models.Period
	err := r.db.GetContext(ctx, &period,
		`SELECT id, label, start_time, end_time, sort_order FROM periods WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("find period: %w", err)
	}
	return &period, nil
}

// Update changes a period's label and time window. Periods are seeded by
// the schema; they are never created or deleted through the API.
func (r *PeriodRepository) Update(ctx context.Context, period *models.Period) error {
	_, err := r.db.NamedExecContext(ctx,
		`UPDATE periods SET label = :label, start_time = :start_time, end_time = :end_time WHERE id = :id`, period)
	if err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	return nil
}

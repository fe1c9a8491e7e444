package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/alqalam-institute/registry-api/internal/models"
)

// TermRepository handles persistence for academic terms. The overlap and
// single-active invariants are enforced inside one transaction per mutation
// so a partial failure never leaves a term incorrectly marked active.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

const termColumns = `id, name, start_date, end_date, is_active, is_archived, created_at, updated_at`

// List returns terms ordered by start date, newest first.
func (r *TermRepository) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	query := fmt.Sprintf(`SELECT %s FROM terms`, termColumns)
	if !filter.IncludeArchived {
		query += ` WHERE is_archived = FALSE`
	}
	query += ` ORDER BY start_date DESC`

	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, query); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

// FindByID loads a term by identifier.
func (r *TermRepository) FindByID(ctx context.Context, id string) (*models.Term, error) {
	query := fmt.Sprintf(`SELECT %s FROM terms WHERE id = $1`, termColumns)
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, id); err != nil {
		return nil, err
	}
	return &term, nil
}

// FindActive loads the single active term, sql.ErrNoRows when none is set.
func (r *TermRepository) FindActive(ctx context.Context) (*models.Term, error) {
	query := fmt.Sprintf(`SELECT %s FROM terms WHERE is_active = TRUE`, termColumns)
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query); err != nil {
		return nil, err
	}
	return &term, nil
}

// Create inserts a new term. Within the transaction: every other term's
// active flag is cleared first when the new term activates, then the new
// range is checked against all existing closed intervals before insert.
func (r *TermRepository) Create(ctx context.Context, term *models.Term) error {
	if term.ID == "" {
		term.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	term.CreatedAt = now
	term.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create term tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if term.IsActive {
		if _, err = tx.ExecContext(ctx, `UPDATE terms SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE`, now); err != nil {
			return fmt.Errorf("deactivate other terms: %w", err)
		}
	}

	var overlaps bool
	if err = tx.GetContext(ctx, &overlaps,
		`SELECT EXISTS (SELECT 1 FROM terms WHERE start_date <= $1 AND end_date >= $2)`,
		term.EndDate, term.StartDate); err != nil {
		return fmt.Errorf("check term overlap: %w", err)
	}
	if overlaps {
		err = ErrTermOverlap
		return err
	}

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO terms (id, name, start_date, end_date, is_active, is_archived, created_at, updated_at)
        VALUES (:id, :name, :start_date, :end_date, :is_active, :is_archived, :created_at, :updated_at)`, term); err != nil {
		return fmt.Errorf("create term: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create term tx: %w", err)
	}
	return nil
}

// Update persists the already-merged term record. The overlap check runs
// against all other terms; when the term activates, the rest are
// deactivated first in the same transaction.
func (r *TermRepository) Update(ctx context.Context, term *models.Term) error {
	now := time.Now().UTC()
	term.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update term tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if term.IsActive {
		if _, err = tx.ExecContext(ctx, `UPDATE terms SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE AND id <> $2`, now, term.ID); err != nil {
			return fmt.Errorf("deactivate other terms: %w", err)
		}
	}

	var overlaps bool
	if err = tx.GetContext(ctx, &overlaps,
		`SELECT EXISTS (SELECT 1 FROM terms WHERE id <> $1 AND start_date <= $2 AND end_date >= $3)`,
		term.ID, term.EndDate, term.StartDate); err != nil {
		return fmt.Errorf("check term overlap: %w", err)
	}
	if overlaps {
		err = ErrTermOverlap
		return err
	}

	if _, err = tx.NamedExecContext(ctx, `UPDATE terms SET name = :name, start_date = :start_date, end_date = :end_date,
        is_active = :is_active, is_archived = :is_archived, updated_at = :updated_at WHERE id = :id`, term); err != nil {
		return fmt.Errorf("update term: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update term tx: %w", err)
	}
	return nil
}

// Delete removes a term and its dependents. The cascade is explicit so the
// invariant holds regardless of the storage backend's referential actions:
// timetable entries, assignments, offerings, registrations and sections go
// first, then the term row itself.
func (r *TermRepository) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete term tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	dependents := []string{
		`DELETE FROM timetable_entries WHERE term_id = $1`,
		`DELETE FROM student_subjects WHERE term_id = $1`,
		`DELETE FROM term_subjects WHERE term_id = $1`,
		`DELETE FROM registrations WHERE term_id = $1`,
		`DELETE FROM sections WHERE term_id = $1`,
	}
	for _, query := range dependents {
		if _, err = tx.ExecContext(ctx, query, id); err != nil {
			return false, fmt.Errorf("delete term dependents: %w", err)
		}
	}

	var result = false
	res, err := tx.ExecContext(ctx, `DELETE FROM terms WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete term: %w", err)
	}
	if affected, raErr := res.RowsAffected(); raErr == nil && affected > 0 {
		result = true
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete term tx: %w", err)
	}
	return result, nil
}

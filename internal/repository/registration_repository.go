package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/alqalam-institute/registry-api/internal/models"
)

// RegistrationRepository handles term enrollment rows and the student
// study-semesters counter.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// ListByTerm returns a term's registrations joined with student identity.
func (r *RegistrationRepository) ListByTerm(ctx context.Context, termID string) ([]models.RegistrationDetail, error) {
	const query = `SELECT r.id, r.term_id, r.student_id, r.section_id, r.registered_at,
        s.registration_id AS student_registration_id, s.full_name AS student_full_name, s.email AS student_email
        FROM registrations r JOIN students s ON s.id = r.student_id
        WHERE r.term_id = $1 ORDER BY s.full_name ASC`
	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, termID); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return registrations, nil
}

// Exists reports whether a student holds a registration in the term.
func (r *RegistrationRepository) Exists(ctx context.Context, termID, studentID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE term_id = $1 AND student_id = $2)`,
		termID, studentID); err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

// RegisterBatch enrolls students into a term inside one transaction. Each
// insert is conditional on the (term, student) pair being absent; only an
// actual insert bumps the student's study_semesters_count, so repeating a
// registration never double-increments. Returns the IDs actually inserted.
func (r *RegistrationRepository) RegisterBatch(ctx context.Context, termID string, studentIDs []string, sectionID *string) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin register tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	var inserted []string
	for _, studentID := range studentIDs {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `INSERT INTO registrations (id, term_id, student_id, section_id, registered_at)
            VALUES ($1, $2, $3, $4, $5) ON CONFLICT (term_id, student_id) DO NOTHING`,
			uuid.NewString(), termID, studentID, sectionID, now)
		if err != nil {
			err = fmt.Errorf("register student: %w", err)
			return nil, err
		}

		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			err = fmt.Errorf("register student result: %w", err)
			return nil, err
		}
		if affected == 0 {
			// Already registered: skip without touching the counter.
			continue
		}

		if _, err = tx.ExecContext(ctx,
			`UPDATE students SET study_semesters_count = study_semesters_count + 1, updated_at = $2 WHERE id = $1`,
			studentID, now); err != nil {
			return nil, fmt.Errorf("increment study semesters: %w", err)
		}
		inserted = append(inserted, studentID)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit register tx: %w", err)
	}
	return inserted, nil
}

// UnregisterBatch removes registrations. The study-semesters counter is a
// historical high-water mark and is never decremented here.
func (r *RegistrationRepository) UnregisterBatch(ctx context.Context, termID string, studentIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unregister tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, studentID := range studentIDs {
		if _, err = tx.ExecContext(ctx, `DELETE FROM registrations WHERE term_id = $1 AND student_id = $2`, termID, studentID); err != nil {
			return fmt.Errorf("unregister student: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit unregister tx: %w", err)
	}
	return nil
}

// ListTermsByStudent returns the terms a student is registered in, newest
// first. Used by the portal dashboard.
func (r *RegistrationRepository) ListTermsByStudent(ctx context.Context, studentID string) ([]models.Term, error) {
	const query = `SELECT t.id, t.name, t.start_date, t.end_date, t.is_active, t.is_archived, t.created_at, t.updated_at
        FROM registrations r JOIN terms t ON t.id = r.term_id
        WHERE r.student_id = $1 ORDER BY t.start_date DESC`
	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, query, studentID); err != nil {
		return nil, fmt.Errorf("list student terms: %w", err)
	}
	return terms, nil
}

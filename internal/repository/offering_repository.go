package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/alqalam-institute/registry-api/internal/models"
)

// OfferingRepository manages the term catalogue: which subjects a term offers.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs the repository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// ListByTerm returns the subjects offered in a term joined with subject identity.
func (r *OfferingRepository) ListByTerm(ctx context.Context, termID string) ([]models.OfferedSubject, error) {
	const query = `SELECT ts.subject_id, s.name, s.code, s.units, s.curriculum_semester
        FROM term_subjects ts JOIN subjects s ON s.id = ts.subject_id
        WHERE ts.term_id = $1 ORDER BY s.code ASC`

	offered := []models.OfferedSubject{}
	if err := r.db.SelectContext(ctx, &offered, query, termID); err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	return offered, nil
}

// Exists reports whether a subject is already on the term's catalogue.
func (r *OfferingRepository) Exists(ctx context.Context, termID, subjectID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM term_subjects WHERE term_id = $1 AND subject_id = $2)`,
		termID, subjectID)
	if err != nil {
		return false, fmt.Errorf("check offering: %w", err)
	}
	return exists, nil
}

// OfferedSubjectIDs returns the set of subject IDs on a term's catalogue.
func (r *OfferingRepository) OfferedSubjectIDs(ctx context.Context, termID string) (map[string]bool, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT subject_id FROM term_subjects WHERE term_id = $1`, termID)
	if err != nil {
		return nil, fmt.Errorf("list offered subject ids: %w", err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// AssignBatch puts subjects on the term catalogue. Subjects already offered
// are skipped silently; the returned slice holds the subject IDs actually added.
func (r *OfferingRepository) AssignBatch(ctx context.Context, termID string, subjectIDs []string) (added []string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin offering assign: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, subjectID := range subjectIDs {
		res, execErr := tx.ExecContext(ctx, `INSERT INTO term_subjects (id, term_id, subject_id, created_at)
            VALUES ($1, $2, $3, $4) ON CONFLICT (term_id, subject_id) DO NOTHING`,
			uuid.NewString(), termID, subjectID, now)
		if execErr != nil {
			err = fmt.Errorf("assign subject: %w", execErr)
			return nil, err
		}

		affected, raErr := res.RowsAffected()
		if raErr != nil {
			err = fmt.Errorf("assign subject result: %w", raErr)
			return nil, err
		}
		if affected > 0 {
			added = append(added, subjectID)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit offering assign: %w", err)
	}
	return added, nil
}

// UnassignBatch removes subjects from the term catalogue. Existing student
// assignments and timetable entries are untouched; removing an offering only
// stops further assignment of that subject.
func (r *OfferingRepository) UnassignBatch(ctx context.Context, termID string, subjectIDs []string) error {
	if len(subjectIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		`DELETE FROM term_subjects WHERE term_id = ? AND subject_id IN (?)`, termID, subjectIDs)
	if err != nil {
		return fmt.Errorf("build offering unassign: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("unassign subjects: %w", err)
	}
	return nil
}

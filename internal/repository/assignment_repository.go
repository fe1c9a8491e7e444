package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/alqalam-institute/registry-api/internal/models"
)

// AssignmentRepository manages student-subject assignments within a term,
// including the optional grade.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByStudentTerm returns a student's assignments in a term joined with
// subject identity.
func (r *AssignmentRepository) ListByStudentTerm(ctx context.Context, termID, studentID string) ([]models.AssignmentDetail, error) {
	const query = `SELECT ss.subject_id, ss.grade, s.name, s.code, s.units, s.curriculum_semester
        FROM student_subjects ss JOIN subjects s ON s.id = ss.subject_id
        WHERE ss.term_id = $1 AND ss.student_id = $2 ORDER BY s.code ASC`

	assignments := []models.AssignmentDetail{}
	if err := r.db.SelectContext(ctx, &assignments, query, termID, studentID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// SubjectIDs returns the set of subject IDs already assigned to the student in
// the term.
func (r *AssignmentRepository) SubjectIDs(ctx context.Context, termID, studentID string) (map[string]bool, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT subject_id FROM student_subjects WHERE term_id = $1 AND student_id = $2`,
		termID, studentID)
	if err != nil {
		return nil, fmt.Errorf("list assigned subject ids: %w", err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Count returns how many subjects the student carries in the term.
func (r *AssignmentRepository) Count(ctx context.Context, termID, studentID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM student_subjects WHERE term_id = $1 AND student_id = $2`,
		termID, studentID)
	if err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return count, nil
}

// InsertBatch inserts the given subject assignments in one transaction.
// Eligibility is the service's concern; by the time this runs the batch has
// already been accepted as a whole.
func (r *AssignmentRepository) InsertBatch(ctx context.Context, termID, studentID string, subjectIDs []string) (err error) {
	if len(subjectIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment insert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, subjectID := range subjectIDs {
		_, err = tx.ExecContext(ctx, `INSERT INTO student_subjects (id, term_id, student_id, subject_id, assigned_at)
            VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), termID, studentID, subjectID, now)
		if err != nil {
			err = fmt.Errorf("insert assignment: %w", err)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment insert: %w", err)
	}
	return nil
}

// DeleteBatch removes the given subject assignments. Missing rows are ignored.
func (r *AssignmentRepository) DeleteBatch(ctx context.Context, termID, studentID string, subjectIDs []string) error {
	if len(subjectIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		`DELETE FROM student_subjects WHERE term_id = ? AND student_id = ? AND subject_id IN (?)`,
		termID, studentID, subjectIDs)
	if err != nil {
		return fmt.Errorf("build assignment delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}
	return nil
}

// UpdateGrade sets (or clears, when grade is nil) the grade on one assignment.
// It reports whether the assignment row exists.
func (r *AssignmentRepository) UpdateGrade(ctx context.Context, termID, studentID, subjectID string, grade *float64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE student_subjects SET grade = $1 WHERE term_id = $2 AND student_id = $3 AND subject_id = $4`,
		grade, termID, studentID, subjectID)
	if err != nil {
		return false, fmt.Errorf("update grade: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update grade result: %w", err)
	}
	return affected > 0, nil
}

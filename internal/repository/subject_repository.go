package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/alqalam-institute/registry-api/internal/models"
)

// SubjectRepository handles persistence for subjects and their department
// links.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching the filters, ordered by code.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	query := `SELECT DISTINCT s.id, s.name, s.code, s.units, s.curriculum_semester, s.created_at, s.updated_at
        FROM subjects s LEFT JOIN department_subjects ds ON ds.subject_id = s.id WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query += fmt.Sprintf(" AND (lower(s.name) LIKE $%d OR lower(s.code) LIKE $%d)", len(args)+1, len(args)+2)
		args = append(args, like, like)
	}
	if filter.DepartmentID != "" {
		query += fmt.Sprintf(" AND ds.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	query += " ORDER BY s.code ASC"

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID loads a subject by identifier.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, name, code, units, curriculum_semester, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

type subjectDepartmentRow struct {
	SubjectID string `db:"subject_id"`
	ID        string `db:"id"`
	Name      string `db:"name"`
	Code      string `db:"code"`
}

// DepartmentsBySubject returns the department links for the given subjects,
// keyed by subject ID and ordered by department code.
func (r *SubjectRepository) DepartmentsBySubject(ctx context.Context, subjectIDs []string) (map[string][]models.DepartmentRef, error) {
	result := make(map[string][]models.DepartmentRef, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT ds.subject_id, d.id, d.name, d.code
        FROM department_subjects ds JOIN departments d ON d.id = ds.department_id
        WHERE ds.subject_id IN (?) ORDER BY d.code ASC`, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("build subject departments query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []subjectDepartmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list subject departments: %w", err)
	}
	for _, row := range rows {
		result[row.SubjectID] = append(result[row.SubjectID], models.DepartmentRef{ID: row.ID, Name: row.Name, Code: row.Code})
	}
	return result, nil
}

// SubjectIDsByDepartment returns the IDs of subjects linked to a department.
func (r *SubjectRepository) SubjectIDsByDepartment(ctx context.Context, departmentID string) (map[string]bool, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT subject_id FROM department_subjects WHERE department_id = $1`, departmentID); err != nil {
		return nil, fmt.Errorf("list department subjects: %w", err)
	}
	result := make(map[string]bool, len(ids))
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// Create inserts a subject and its department links in one transaction.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject, departmentIDs []string) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create subject tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO subjects (id, name, code, units, curriculum_semester, created_at, updated_at)
        VALUES (:id, :name, :code, :units, :curriculum_semester, :created_at, :updated_at)`, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}

	if err = linkDepartments(ctx, tx, subject.ID, departmentIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create subject tx: %w", err)
	}
	return nil
}

// Update persists subject fields and, when departmentIDs is non-nil,
// replaces the department links in the same transaction.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject, departmentIDs []string) error {
	subject.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update subject tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `UPDATE subjects SET name = :name, code = :code, units = :units,
        curriculum_semester = :curriculum_semester, updated_at = :updated_at WHERE id = :id`, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}

	if departmentIDs != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM department_subjects WHERE subject_id = $1`, subject.ID); err != nil {
			return fmt.Errorf("clear subject departments: %w", err)
		}
		if err = linkDepartments(ctx, tx, subject.ID, departmentIDs); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update subject tx: %w", err)
	}
	return nil
}

// UpsertByCode inserts or updates a subject keyed by its unique code and
// replaces its department links. Used by the bulk import endpoint.
func (r *SubjectRepository) UpsertByCode(ctx context.Context, subject *models.Subject, departmentIDs []string) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert subject tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO subjects (id, name, code, units, curriculum_semester, created_at, updated_at)
        VALUES (:id, :name, :code, :units, :curriculum_semester, :created_at, :updated_at)
        ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, units = EXCLUDED.units,
        curriculum_semester = EXCLUDED.curriculum_semester, updated_at = EXCLUDED.updated_at`, subject); err != nil {
		return fmt.Errorf("upsert subject: %w", err)
	}

	var subjectID string
	if err = tx.GetContext(ctx, &subjectID, `SELECT id FROM subjects WHERE code = $1`, subject.Code); err != nil {
		return fmt.Errorf("resolve upserted subject: %w", err)
	}
	subject.ID = subjectID

	if _, err = tx.ExecContext(ctx, `DELETE FROM department_subjects WHERE subject_id = $1`, subjectID); err != nil {
		return fmt.Errorf("clear subject departments: %w", err)
	}
	if err = linkDepartments(ctx, tx, subjectID, departmentIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert subject tx: %w", err)
	}
	return nil
}

// Delete removes a subject. Returns false when no row matched.
func (r *SubjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete subject: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete subject result: %w", err)
	}
	return affected > 0, nil
}

// ExistsByIDs returns the subset of the given subject IDs that exist.
func (r *SubjectRepository) ExistsByIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM subjects WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build subject existence query: %w", err)
	}
	query = r.db.Rebind(query)

	var found []string
	if err := r.db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("check subjects exist: %w", err)
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func linkDepartments(ctx context.Context, tx *sqlx.Tx, subjectID string, departmentIDs []string) error {
	for _, departmentID := range departmentIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO department_subjects (id, department_id, subject_id)
            VALUES ($1, $2, $3) ON CONFLICT (department_id, subject_id) DO NOTHING`,
			uuid.NewString(), departmentID, subjectID); err != nil {
			return fmt.Errorf("link subject department: %w", err)
		}
	}
	return nil
}

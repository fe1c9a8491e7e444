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

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentDetailColumns = `s.id, s.registration_id, s.full_name, s.email, s.department_id, s.mother_name, s.phone,
        s.password_hash, s.study_semesters_count, s.created_at, s.updated_at,
        d.name AS department_name, d.code AS department_code`

// List returns paginated students joined with their department.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := ` FROM students s JOIN departments d ON d.id = s.department_id WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		base += fmt.Sprintf(" AND (lower(s.registration_id) LIKE $%d OR lower(s.full_name) LIKE $%d OR lower(s.email) LIKE $%d)",
			len(args)+1, len(args)+2, len(args)+3)
		args = append(args, like, like, like)
	}
	if filter.DepartmentID != "" {
		base += fmt.Sprintf(" AND s.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s%s ORDER BY s.full_name ASC LIMIT %d OFFSET %d", studentDetailColumns, base, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID loads a student with department context.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s JOIN departments d ON d.id = s.department_id WHERE s.id = $1`, studentDetailColumns)
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByLogin locates a student by email (case-insensitive) and
// registration ID for the portal login.
func (r *StudentRepository) FindByLogin(ctx context.Context, email, registrationID string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s JOIN departments d ON d.id = s.department_id
        WHERE lower(s.email) = lower($1) AND s.registration_id = $2 LIMIT 1`, studentDetailColumns)
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, email, registrationID); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	const query = `INSERT INTO students (id, registration_id, full_name, email, department_id, mother_name, phone,
        password_hash, study_semesters_count, created_at, updated_at)
        VALUES (:id, :registration_id, :full_name, :email, :department_id, :mother_name, :phone,
        :password_hash, :study_semesters_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update persists the already-merged student record.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET registration_id = :registration_id, full_name = :full_name, email = :email,
        department_id = :department_id, mother_name = :mother_name, phone = :phone,
        password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student. Returns false when no row matched.
func (r *StudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete student result: %w", err)
	}
	return affected > 0, nil
}

// ExistsByIDs returns the subset of the given student IDs that exist.
func (r *StudentRepository) ExistsByIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM students WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build student existence query: %w", err)
	}
	query = r.db.Rebind(query)

	var found []string
	if err := r.db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("check students exist: %w", err)
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

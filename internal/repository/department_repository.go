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

// DepartmentRepository handles persistence for departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs the repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns departments matching the provided filters, ordered by name.
func (r *DepartmentRepository) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, error) {
	query := `SELECT id, name, code, is_active, created_at, updated_at FROM departments WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query += fmt.Sprintf(" AND (lower(name) LIKE $%d OR lower(code) LIKE $%d)", len(args)+1, len(args)+2)
		args = append(args, like, like)
	}
	if filter.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", len(args)+1)
		args = append(args, *filter.IsActive)
	}
	query += " ORDER BY name ASC"

	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query, args...); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindByID loads a department by identifier.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	const query = `SELECT id, name, code, is_active, created_at, updated_at FROM departments WHERE id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// Create inserts a new department record.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	department.CreatedAt = now
	department.UpdatedAt = now

	const query = `INSERT INTO departments (id, name, code, is_active, created_at, updated_at)
        VALUES (:id, :name, :code, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, department); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// Update modifies an existing department.
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	department.UpdatedAt = time.Now().UTC()
	const query = `UPDATE departments SET name = :name, code = :code, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, department); err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	return nil
}

// Delete removes a department permanently. Returns false when no row
// matched.
func (r *DepartmentRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete department: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete department: %w", err)
	}
	return affected > 0, nil
}

// HasStudents reports whether any student references the department.
func (r *DepartmentRepository) HasStudents(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM students WHERE department_id = $1)`, id); err != nil {
		return false, fmt.Errorf("check department students: %w", err)
	}
	return exists, nil
}

// HasSubjects reports whether any subject is linked to the department.
func (r *DepartmentRepository) HasSubjects(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM department_subjects WHERE department_id = $1)`, id); err != nil {
		return false, fmt.Errorf("check department subjects: %w", err)
	}
	return exists, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alqalam-institute/registry-api/internal/models"
	"github.com/alqalam-institute/registry-api/internal/repository"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id string) (bool, error)
	HasStudents(ctx context.Context, id string) (bool, error)
	HasSubjects(ctx context.Context, id string) (bool, error)
}

// CreateDepartmentRequest describes the payload for creating a department.
type CreateDepartmentRequest struct {
	Code     string `json:"code" validate:"required,alphanum,max=16"`
	Name     string `json:"name" validate:"required"`
	IsActive *bool  `json:"is_active"`
}

// UpdateDepartmentRequest updates mutable fields on a department.
type UpdateDepartmentRequest struct {
	Code     *string `json:"code" validate:"omitempty,alphanum,max=16"`
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// DepartmentService manages the department reference data.
type DepartmentService struct {
	repo      departmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService creates a new department service instance.
func NewDepartmentService(repo departmentRepository, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, validator: validate, logger: logger}
}

// List returns departments matching the filter.
func (s *DepartmentService) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, error) {
	departments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Get returns a department by ID.
func (s *DepartmentService) Get(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return department, nil
}

// Create adds a department. A duplicate code is a conflict.
func (s *DepartmentService) Create(ctx context.Context, req CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}

	department := &models.Department{
		Code:     req.Code,
		Name:     req.Name,
		IsActive: true,
	}
	if req.IsActive != nil {
		department.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, department); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "department code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	return department, nil
}

// Update applies a partial change to a department.
func (s *DepartmentService) Update(ctx context.Context, id string, req UpdateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}

	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	if req.Code != nil {
		department.Code = *req.Code
	}
	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.IsActive != nil {
		department.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, department); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "department code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update department")
	}
	return department, nil
}

// Delete removes a department. Deletion is blocked while any student or
// subject still references it.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	hasStudents, err := s.repo.HasStudents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department students")
	}
	if hasStudents {
		return appErrors.Clone(appErrors.ErrConflict, "department still has students")
	}

	hasSubjects, err := s.repo.HasSubjects(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department subjects")
	}
	if hasSubjects {
		return appErrors.Clone(appErrors.ErrConflict, "department still has subjects")
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "department is still referenced")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "department not found")
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/alqalam-institute/registry-api/internal/models"
	"github.com/alqalam-institute/registry-api/internal/repository"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

type studentDepartmentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// CreateStudentRequest describes the payload for creating a student. When
// Password is empty the registration ID doubles as the initial password.
type CreateStudentRequest struct {
	RegistrationID string `json:"registration_id" validate:"required"`
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	DepartmentID   string `json:"department_id" validate:"required"`
	MotherName     string `json:"mother_name"`
	Phone          string `json:"phone"`
	Password       string `json:"password" validate:"omitempty,min=6"`
}

// UpdateStudentRequest updates mutable fields on a student.
type UpdateStudentRequest struct {
	RegistrationID *string `json:"registration_id"`
	FullName       *string `json:"full_name"`
	Email          *string `json:"email" validate:"omitempty,email"`
	DepartmentID   *string `json:"department_id"`
	MotherName     *string `json:"mother_name"`
	Phone          *string `json:"phone"`
	Password       *string `json:"password" validate:"omitempty,min=6"`
}

// StudentService manages the student roster.
type StudentService struct {
	repo        studentRepository
	departments studentDepartmentLookup
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService creates a new student service instance.
func NewStudentService(repo studentRepository, departments studentDepartmentLookup, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, departments: departments, validator: validate, logger: logger}
}

// List returns paginated students with department context.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 50
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return students, pagination, nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create adds a student. The department must exist; registration ID and
// email must be unused.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department")
	}

	password := req.Password
	if password == "" {
		password = req.RegistrationID
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		RegistrationID: strings.TrimSpace(req.RegistrationID),
		FullName:       req.FullName,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		DepartmentID:   req.DepartmentID,
		MotherName:     req.MotherName,
		Phone:          req.Phone,
		PasswordHash:   string(hash),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "registration id or email already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Update applies a partial change to a student. A new password is re-hashed.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	student := detail.Student

	if req.DepartmentID != nil {
		if _, err := s.departments.FindByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "department does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department")
		}
		student.DepartmentID = *req.DepartmentID
	}
	if req.RegistrationID != nil {
		student.RegistrationID = strings.TrimSpace(*req.RegistrationID)
	}
	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Email != nil {
		student.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.MotherName != nil {
		student.MotherName = *req.MotherName
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.Password != nil {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, appErrors.Wrap(hashErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		student.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, &student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "registration id or email already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return &student, nil
}

// Delete removes a student and, through storage cascades, the student's
// registrations and assignments.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}

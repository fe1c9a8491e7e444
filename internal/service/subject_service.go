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

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	DepartmentsBySubject(ctx context.Context, subjectIDs []string) (map[string][]models.DepartmentRef, error)
	Create(ctx context.Context, subject *models.Subject, departmentIDs []string) error
	Update(ctx context.Context, subject *models.Subject, departmentIDs []string) error
	UpsertByCode(ctx context.Context, subject *models.Subject, departmentIDs []string) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateSubjectRequest describes the payload for creating a subject.
type CreateSubjectRequest struct {
	Name               string   `json:"name" validate:"required"`
	Code               string   `json:"code" validate:"required,max=32"`
	Units              int      `json:"units" validate:"required,min=1,max=12"`
	CurriculumSemester int      `json:"curriculum_semester" validate:"min=0,max=12"`
	DepartmentIDs      []string `json:"department_ids" validate:"required,min=1"`
}

// UpdateSubjectRequest updates mutable fields on a subject. A non-nil
// DepartmentIDs replaces the full department link set.
type UpdateSubjectRequest struct {
	Name               *string  `json:"name"`
	Code               *string  `json:"code" validate:"omitempty,max=32"`
	Units              *int     `json:"units" validate:"omitempty,min=1,max=12"`
	CurriculumSemester *int     `json:"curriculum_semester" validate:"omitempty,min=0,max=12"`
	DepartmentIDs      []string `json:"department_ids" validate:"omitempty,min=1"`
}

// BulkSubjectItem is one row of a curriculum import, matched by code.
type BulkSubjectItem struct {
	Name               string   `json:"name" validate:"required"`
	Code               string   `json:"code" validate:"required,max=32"`
	Units              int      `json:"units" validate:"required,min=1,max=12"`
	CurriculumSemester int      `json:"curriculum_semester" validate:"min=0,max=12"`
	DepartmentIDs      []string `json:"department_ids" validate:"required,min=1"`
}

// BulkSubjectRequest upserts a batch of subjects by code.
type BulkSubjectRequest struct {
	Subjects []BulkSubjectItem `json:"subjects" validate:"required,min=1,dive"`
}

// SubjectService manages the subject catalogue and its department links.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service instance.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns subjects with their department links resolved in one extra
// round trip.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, error) {
	subjects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if len(subjects) == 0 {
		return []models.SubjectDetail{}, nil
	}

	ids := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		ids = append(ids, subject.ID)
	}
	links, err := s.repo.DepartmentsBySubject(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject departments")
	}

	details := make([]models.SubjectDetail, 0, len(subjects))
	for _, subject := range subjects {
		details = append(details, models.SubjectDetail{Subject: subject, Departments: links[subject.ID]})
	}
	return details, nil
}

// Get returns a subject with department links.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.SubjectDetail, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	links, err := s.repo.DepartmentsBySubject(ctx, []string{subject.ID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject departments")
	}
	return &models.SubjectDetail{Subject: *subject, Departments: links[subject.ID]}, nil
}

// Create adds a subject linked to at least one department.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject := &models.Subject{
		Name:               req.Name,
		Code:               req.Code,
		Units:              req.Units,
		CurriculumSemester: req.CurriculumSemester,
	}
	if err := s.repo.Create(ctx, subject, req.DepartmentIDs); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists")
		}
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "one or more departments do not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Update applies a partial change to a subject.
func (s *SubjectService) Update(ctx context.Context, id string, req UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Code != nil {
		subject.Code = *req.Code
	}
	if req.Units != nil {
		subject.Units = *req.Units
	}
	if req.CurriculumSemester != nil {
		subject.CurriculumSemester = *req.CurriculumSemester
	}

	if err := s.repo.Update(ctx, subject, req.DepartmentIDs); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists")
		}
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "one or more departments do not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return subject, nil
}

// BulkUpsert imports a curriculum batch, matching existing subjects by code.
// Rows are applied independently; the response reports how many landed.
func (s *SubjectService) BulkUpsert(ctx context.Context, req BulkSubjectRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk subject payload")
	}

	applied := 0
	for _, item := range req.Subjects {
		subject := &models.Subject{
			Name:               item.Name,
			Code:               item.Code,
			Units:              item.Units,
			CurriculumSemester: item.CurriculumSemester,
		}
		if err := s.repo.UpsertByCode(ctx, subject, item.DepartmentIDs); err != nil {
			if repository.IsForeignKeyViolation(err) {
				return applied, appErrors.Clone(appErrors.ErrValidation, "one or more departments do not exist")
			}
			return applied, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert subject")
		}
		applied++
	}

	s.logger.Info("subjects bulk upserted", zap.Int("count", applied))
	return applied, nil
}

// Delete removes a subject. Offerings, assignments and timetable entries
// referencing it go with it through storage cascades.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	return nil
}

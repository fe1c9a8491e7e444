package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alqalam-institute/registry-api/internal/models"
	"github.com/alqalam-institute/registry-api/internal/repository"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type termRepository interface {
	List(ctx context.Context, filter models.TermFilter) ([]models.Term, error)
	FindByID(ctx context.Context, id string) (*models.Term, error)
	Create(ctx context.Context, term *models.Term) error
	Update(ctx context.Context, term *models.Term) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateTermRequest describes the payload for creating an academic term.
type CreateTermRequest struct {
	Name       string `json:"name" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsActive   bool   `json:"is_active"`
	IsArchived bool   `json:"is_archived"`
}

// UpdateTermRequest updates mutable fields on a term. Omitted fields keep
// their stored value.
type UpdateTermRequest struct {
	Name       *string `json:"name"`
	StartDate  *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive   *bool   `json:"is_active"`
	IsArchived *bool   `json:"is_archived"`
}

// TermService orchestrates the term lifecycle. Range overlap and the
// single-active rule are enforced transactionally by the repository; this
// layer validates payloads and translates storage outcomes to API errors.
type TermService struct {
	repo      termRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermService creates a new term service instance.
func NewTermService(repo termRepository, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, validator: validate, logger: logger}
}

// List returns terms, archived ones included only on request.
func (s *TermService) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	terms, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list terms")
	}
	return terms, nil
}

// Get returns a term by ID.
func (s *TermService) Get(ctx context.Context, id string) (*models.Term, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

// Create adds a term. Activating it deactivates every other term in the
// same transaction; a range intersecting any existing term is a conflict.
func (s *TermService) Create(ctx context.Context, req CreateTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}

	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	if start.After(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be on or before end_date")
	}

	term := &models.Term{
		Name:       req.Name,
		StartDate:  start,
		EndDate:    end,
		IsActive:   req.IsActive,
		IsArchived: req.IsArchived,
	}
	if err := s.repo.Create(ctx, term); err != nil {
		if errors.Is(err, repository.ErrTermOverlap) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "term dates overlap an existing term")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create term")
	}

	s.logger.Info("term created", zap.String("term_id", term.ID), zap.Bool("active", term.IsActive))
	return term, nil
}

// Update applies a partial change. When only one end of the range moves,
// the overlap window combines the new value with the stored other end.
func (s *TermService) Update(ctx context.Context, id string, req UpdateTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}

	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}

	if req.Name != nil {
		term.Name = *req.Name
	}
	if req.StartDate != nil {
		term.StartDate, _ = time.Parse(dateLayout, *req.StartDate)
	}
	if req.EndDate != nil {
		term.EndDate, _ = time.Parse(dateLayout, *req.EndDate)
	}
	if term.StartDate.After(term.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be on or before end_date")
	}
	if req.IsActive != nil {
		term.IsActive = *req.IsActive
	}
	if req.IsArchived != nil {
		term.IsArchived = *req.IsArchived
	}

	if err := s.repo.Update(ctx, term); err != nil {
		if errors.Is(err, repository.ErrTermOverlap) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "term dates overlap an existing term")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update term")
	}
	return term, nil
}

// Delete removes a term together with its offerings, registrations,
// assignments and timetable entries.
func (s *TermService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete term")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "term not found")
	}
	s.logger.Info("term deleted", zap.String("term_id", id))
	return nil
}

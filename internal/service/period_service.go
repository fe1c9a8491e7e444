package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alqalam-institute/registry-api/internal/models"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type periodRepository interface {
	List(ctx context.Context) ([]models.Period, error)
	FindByID(ctx context.Context, id string) (*models.Period, error)
	Update(ctx context.Context, period *models.Period) error
}

// UpdatePeriodRequest relabels a period or moves its time window. The
// period set itself is fixed.
type UpdatePeriodRequest struct {
	Label     *string `json:"label"`
	StartTime *string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time" validate:"omitempty,datetime=15:04"`
}

// PeriodService manages the fixed daily period slots.
type PeriodService struct {
	repo      periodRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService creates a new period service instance.
func NewPeriodService(repo periodRepository, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{repo: repo, validator: validate, logger: logger}
}

// List returns all periods in daily order.
func (s *PeriodService) List(ctx context.Context) ([]models.Period, error) {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}
	return periods, nil
}

// Update changes a period's label or times.
func (s *PeriodService) Update(ctx context.Context, id string, req UpdatePeriodRequest) (*models.Period, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}

	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}

	if req.Label != nil {
		period.Label = *req.Label
	}
	if req.StartTime != nil {
		period.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		period.EndTime = *req.EndTime
	}
	if period.StartTime >= period.EndTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}

	if err := s.repo.Update(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update period")
	}
	return period, nil
}

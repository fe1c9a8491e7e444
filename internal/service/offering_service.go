package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alqalam-institute/registry-api/internal/models"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type offeringRepository interface {
	ListByTerm(ctx context.Context, termID string) ([]models.OfferedSubject, error)
	OfferedSubjectIDs(ctx context.Context, termID string) (map[string]bool, error)
	AssignBatch(ctx context.Context, termID string, subjectIDs []string) ([]string, error)
	UnassignBatch(ctx context.Context, termID string, subjectIDs []string) error
}

type offeringSubjectLookup interface {
	ExistsByIDs(ctx context.Context, ids []string) (map[string]bool, error)
	DepartmentsBySubject(ctx context.Context, subjectIDs []string) (map[string][]models.DepartmentRef, error)
}

// OfferingBatchRequest assigns or unassigns subjects on a term catalogue.
type OfferingBatchRequest struct {
	SubjectIDs []string `json:"subject_ids" validate:"required,min=1"`
}

// OfferingResult reports the outcome of an assign batch. Skipped subjects
// were already on the catalogue.
type OfferingResult struct {
	Assigned []string `json:"assigned"`
	Skipped  []string `json:"skipped"`
}

// OfferingService manages the term catalogue. Assigning an already-offered
// subject is an idempotent no-op; unassigning never cascades to existing
// student assignments or timetable entries.
type OfferingService struct {
	repo      offeringRepository
	terms     registrationTermLookup
	subjects  offeringSubjectLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOfferingService creates a new offering service instance.
func NewOfferingService(repo offeringRepository, terms registrationTermLookup, subjects offeringSubjectLookup, validate *validator.Validate, logger *zap.Logger) *OfferingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferingService{repo: repo, terms: terms, subjects: subjects, validator: validate, logger: logger}
}

// ListByTerm returns the term catalogue with department links resolved.
func (s *OfferingService) ListByTerm(ctx context.Context, termID string) ([]models.OfferedSubject, error) {
	if err := s.requireTerm(ctx, termID); err != nil {
		return nil, err
	}

	offered, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	if len(offered) == 0 {
		return []models.OfferedSubject{}, nil
	}

	ids := make([]string, 0, len(offered))
	for _, subject := range offered {
		ids = append(ids, subject.SubjectID)
	}
	links, err := s.subjects.DepartmentsBySubject(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject departments")
	}
	for i := range offered {
		offered[i].Departments = links[offered[i].SubjectID]
	}
	return offered, nil
}

// Assign puts subjects on the term catalogue. Every subject must exist;
// duplicates within the batch and subjects already offered are skipped.
func (s *OfferingService) Assign(ctx context.Context, termID string, req OfferingBatchRequest) (*OfferingResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}
	if err := s.requireTerm(ctx, termID); err != nil {
		return nil, err
	}

	subjectIDs := dedupe(req.SubjectIDs)
	exists, err := s.subjects.ExistsByIDs(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subjects")
	}
	for _, id := range subjectIDs {
		if !exists[id] {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %s does not exist", id))
		}
	}

	assigned, err := s.repo.AssignBatch(ctx, termID, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign offerings")
	}

	assignedSet := make(map[string]bool, len(assigned))
	for _, id := range assigned {
		assignedSet[id] = true
	}
	result := &OfferingResult{Assigned: assigned, Skipped: []string{}}
	for _, id := range subjectIDs {
		if !assignedSet[id] {
			result.Skipped = append(result.Skipped, id)
		}
	}

	s.logger.Info("offerings assigned",
		zap.String("term_id", termID),
		zap.Int("assigned", len(result.Assigned)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// Unassign removes subjects from the term catalogue. Student assignments
// and timetable entries referencing the subject stay in place.
func (s *OfferingService) Unassign(ctx context.Context, termID string, req OfferingBatchRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}
	if err := s.requireTerm(ctx, termID); err != nil {
		return err
	}

	if err := s.repo.UnassignBatch(ctx, termID, dedupe(req.SubjectIDs)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign offerings")
	}
	return nil
}

func (s *OfferingService) requireTerm(ctx context.Context, termID string) error {
	if _, err := s.terms.FindByID(ctx, termID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return nil
}

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
	"github.com/alqalam-institute/registry-api/pkg/export"
)

type registrationRepository interface {
	ListByTerm(ctx context.Context, termID string) ([]models.RegistrationDetail, error)
	RegisterBatch(ctx context.Context, termID string, studentIDs []string, sectionID *string) ([]string, error)
	UnregisterBatch(ctx context.Context, termID string, studentIDs []string) error
}

type registrationTermLookup interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type registrationStudentLookup interface {
	ExistsByIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// RegisterRequest enrolls a batch of students in a term.
type RegisterRequest struct {
	TermID     string   `json:"term_id" validate:"required"`
	StudentIDs []string `json:"student_ids" validate:"required,min=1"`
	SectionID  *string  `json:"section_id"`
}

// UnregisterRequest removes a batch of students from a term.
type UnregisterRequest struct {
	TermID     string   `json:"term_id" validate:"required"`
	StudentIDs []string `json:"student_ids" validate:"required,min=1"`
}

// RegisterResult reports the outcome of a register batch. Skipped holds
// students who were already registered and therefore untouched.
type RegisterResult struct {
	Registered []string `json:"registered"`
	Skipped    []string `json:"skipped"`
}

// RegistrationService manages term enrollment. Registration is idempotent
// per (term, student); the study-semesters counter moves only on a real
// insert and never moves back.
type RegistrationService struct {
	repo      registrationRepository
	terms     registrationTermLookup
	students  registrationStudentLookup
	csv       *export.CSVExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService creates a new registration service instance.
func NewRegistrationService(repo registrationRepository, terms registrationTermLookup, students registrationStudentLookup, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		repo:      repo,
		terms:     terms,
		students:  students,
		csv:       export.NewCSVExporter(),
		validator: validate,
		logger:    logger,
	}
}

// ListByTerm returns a term's registrations with student identity.
func (s *RegistrationService) ListByTerm(ctx context.Context, termID string) ([]models.RegistrationDetail, error) {
	if _, err := s.lookupTerm(ctx, termID); err != nil {
		return nil, err
	}

	registrations, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return registrations, nil
}

// Register enrolls the batch. Every student must exist; students already
// registered in the term are reported as skipped, not errors.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register payload")
	}
	if _, err := s.lookupTerm(ctx, req.TermID); err != nil {
		return nil, err
	}

	studentIDs := dedupe(req.StudentIDs)
	exists, err := s.students.ExistsByIDs(ctx, studentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check students")
	}
	for _, id := range studentIDs {
		if !exists[id] {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s does not exist", id))
		}
	}

	registered, err := s.repo.RegisterBatch(ctx, req.TermID, studentIDs, req.SectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register students")
	}

	insertedSet := make(map[string]bool, len(registered))
	for _, id := range registered {
		insertedSet[id] = true
	}
	result := &RegisterResult{Registered: registered, Skipped: []string{}}
	for _, id := range studentIDs {
		if !insertedSet[id] {
			result.Skipped = append(result.Skipped, id)
		}
	}

	s.logger.Info("students registered",
		zap.String("term_id", req.TermID),
		zap.Int("registered", len(result.Registered)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// Unregister removes the batch from the term. Missing registrations are
// silent no-ops and the study-semesters counter is left as it stands.
func (s *RegistrationService) Unregister(ctx context.Context, req UnregisterRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unregister payload")
	}
	if _, err := s.lookupTerm(ctx, req.TermID); err != nil {
		return err
	}

	if err := s.repo.UnregisterBatch(ctx, req.TermID, dedupe(req.StudentIDs)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unregister students")
	}
	return nil
}

// ExportCSV renders a term's registration roster as CSV.
func (s *RegistrationService) ExportCSV(ctx context.Context, termID string) ([]byte, string, error) {
	term, err := s.lookupTerm(ctx, termID)
	if err != nil {
		return nil, "", err
	}

	registrations, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}

	dataset := export.Dataset{
		Headers: []string{"registration_id", "full_name", "email", "registered_at"},
	}
	for _, reg := range registrations {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"registration_id": reg.StudentRegistrationID,
			"full_name":       reg.StudentFullName,
			"email":           reg.StudentEmail,
			"registered_at":   reg.RegisteredAt.Format("2006-01-02"),
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render registrations csv")
	}
	filename := fmt.Sprintf("registrations-%s.csv", term.Name)
	return payload, filename, nil
}

func (s *RegistrationService) lookupTerm(ctx context.Context, termID string) (*models.Term, error) {
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

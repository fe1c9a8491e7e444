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

type assignmentRepository interface {
	ListByStudentTerm(ctx context.Context, termID, studentID string) ([]models.AssignmentDetail, error)
	SubjectIDs(ctx context.Context, termID, studentID string) (map[string]bool, error)
	InsertBatch(ctx context.Context, termID, studentID string, subjectIDs []string) error
	DeleteBatch(ctx context.Context, termID, studentID string, subjectIDs []string) error
	UpdateGrade(ctx context.Context, termID, studentID, subjectID string, grade *float64) (bool, error)
}

type assignmentRegistrationLookup interface {
	Exists(ctx context.Context, termID, studentID string) (bool, error)
}

type assignmentOfferingLookup interface {
	OfferedSubjectIDs(ctx context.Context, termID string) (map[string]bool, error)
}

type assignmentStudentLookup interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type assignmentSubjectLookup interface {
	SubjectIDsByDepartment(ctx context.Context, departmentID string) (map[string]bool, error)
}

// AssignSubjectsRequest assigns a batch of subjects to one student in a term.
type AssignSubjectsRequest struct {
	SubjectIDs []string `json:"subject_ids" validate:"required,min=1"`
}

// UnassignSubjectsRequest removes a batch of subject assignments.
type UnassignSubjectsRequest struct {
	SubjectIDs []string `json:"subject_ids" validate:"required,min=1"`
}

// SetGradeRequest records a grade for one assignment. A nil grade clears it.
type SetGradeRequest struct {
	Grade *float64 `json:"grade" validate:"omitempty,min=0,max=100"`
}

// AssignResult reports an accepted assign batch. Skipped subjects were
// already assigned.
type AssignResult struct {
	Assigned []string `json:"assigned"`
	Skipped  []string `json:"skipped"`
}

// AssignmentService enforces the assignment eligibility chain: the student
// must be registered in the term, every subject must be offered in the term
// and linked to the student's department, and the per-term subject cap must
// hold after the batch. One failure rejects the whole batch.
type AssignmentService struct {
	repo          assignmentRepository
	terms         registrationTermLookup
	students      assignmentStudentLookup
	registrations assignmentRegistrationLookup
	offerings     assignmentOfferingLookup
	subjects      assignmentSubjectLookup
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAssignmentService creates a new assignment service instance.
func NewAssignmentService(
	repo assignmentRepository,
	terms registrationTermLookup,
	students assignmentStudentLookup,
	registrations assignmentRegistrationLookup,
	offerings assignmentOfferingLookup,
	subjects assignmentSubjectLookup,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		repo:          repo,
		terms:         terms,
		students:      students,
		registrations: registrations,
		offerings:     offerings,
		subjects:      subjects,
		validator:     validate,
		logger:        logger,
	}
}

// ListByStudentTerm returns the student's assignments in a term.
func (s *AssignmentService) ListByStudentTerm(ctx context.Context, termID, studentID string) ([]models.AssignmentDetail, error) {
	if err := s.requireTermAndStudent(ctx, termID, studentID); err != nil {
		return nil, err
	}

	assignments, err := s.repo.ListByStudentTerm(ctx, termID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Assign runs the eligibility chain and inserts the accepted batch.
func (s *AssignmentService) Assign(ctx context.Context, termID, studentID string, req AssignSubjectsRequest) (*AssignResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if err := s.requireTerm(ctx, termID); err != nil {
		return nil, err
	}
	student, err := s.lookupStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	registered, err := s.registrations.Exists(ctx, termID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if !registered {
		return nil, appErrors.Clone(appErrors.ErrEligibility, "student must be registered in the term first")
	}

	offered, err := s.offerings.OfferedSubjectIDs(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term offerings")
	}
	departmentSubjects, err := s.subjects.SubjectIDsByDepartment(ctx, student.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department subjects")
	}

	subjectIDs := dedupe(req.SubjectIDs)
	for _, id := range subjectIDs {
		if !offered[id] {
			return nil, appErrors.Clone(appErrors.ErrEligibility, fmt.Sprintf("subject %s is not offered in the term", id))
		}
		if !departmentSubjects[id] {
			return nil, appErrors.Clone(appErrors.ErrEligibility, fmt.Sprintf("subject %s is not available for the student's department", id))
		}
	}

	current, err := s.repo.SubjectIDs(ctx, termID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current assignments")
	}

	newIDs := make([]string, 0, len(subjectIDs))
	skipped := []string{}
	for _, id := range subjectIDs {
		if current[id] {
			skipped = append(skipped, id)
			continue
		}
		newIDs = append(newIDs, id)
	}

	if len(current)+len(newIDs) > models.MaxSubjectsPerTerm {
		return nil, appErrors.Clone(appErrors.ErrEligibility,
			fmt.Sprintf("assignment would exceed the limit of %d subjects per term", models.MaxSubjectsPerTerm))
	}

	if err := s.repo.InsertBatch(ctx, termID, studentID, newIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign subjects")
	}

	s.logger.Info("subjects assigned",
		zap.String("term_id", termID),
		zap.String("student_id", studentID),
		zap.Int("assigned", len(newIDs)),
		zap.Int("skipped", len(skipped)))
	return &AssignResult{Assigned: newIDs, Skipped: skipped}, nil
}

// Unassign removes the batch. Absent assignments are silent no-ops.
func (s *AssignmentService) Unassign(ctx context.Context, termID, studentID string, req UnassignSubjectsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := s.requireTermAndStudent(ctx, termID, studentID); err != nil {
		return err
	}

	if err := s.repo.DeleteBatch(ctx, termID, studentID, dedupe(req.SubjectIDs)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign subjects")
	}
	return nil
}

// SetGrade records (or clears) a grade on one existing assignment.
func (s *AssignmentService) SetGrade(ctx context.Context, termID, studentID, subjectID string, req SetGradeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "grade must be between 0 and 100")
	}

	found, err := s.repo.UpdateGrade(ctx, termID, studentID, subjectID, req.Grade)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set grade")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

func (s *AssignmentService) requireTerm(ctx context.Context, termID string) error {
	if _, err := s.terms.FindByID(ctx, termID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return nil
}

func (s *AssignmentService) lookupStudent(ctx context.Context, studentID string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func (s *AssignmentService) requireTermAndStudent(ctx context.Context, termID, studentID string) error {
	if err := s.requireTerm(ctx, termID); err != nil {
		return err
	}
	_, err := s.lookupStudent(ctx, studentID)
	return err
}

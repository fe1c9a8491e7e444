package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alqalam-institute/registry-api/internal/models"
	"github.com/alqalam-institute/registry-api/internal/repository"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
	"github.com/alqalam-institute/registry-api/pkg/export"
)

type timetableRepository interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntryDetail, error)
	FindByID(ctx context.Context, id string) (*models.TimetableEntryDetail, error)
	Create(ctx context.Context, entry *models.TimetableEntry) error
	Update(ctx context.Context, entry *models.TimetableEntry) error
	Delete(ctx context.Context, id string) (bool, error)
}

type timetablePeriodLookup interface {
	FindByID(ctx context.Context, id string) (*models.Period, error)
}

type timetableOfferingLookup interface {
	Exists(ctx context.Context, termID, subjectID string) (bool, error)
}

// CreateTimetableEntryRequest schedules an offered subject in a slot.
type CreateTimetableEntryRequest struct {
	DayOfWeek    models.DayOfWeek `json:"day_of_week" validate:"required"`
	PeriodID     string           `json:"period_id" validate:"required"`
	SubjectID    string           `json:"subject_id" validate:"required"`
	RoomText     *string          `json:"room_text"`
	LecturerText *string          `json:"lecturer_text"`
}

// UpdateTimetableEntryRequest moves or relabels an entry. The term is fixed
// at creation and cannot change.
type UpdateTimetableEntryRequest struct {
	DayOfWeek    *models.DayOfWeek `json:"day_of_week"`
	PeriodID     *string           `json:"period_id"`
	SubjectID    *string           `json:"subject_id"`
	RoomText     *string           `json:"room_text"`
	LecturerText *string           `json:"lecturer_text"`
}

// TimetableService manages the weekly schedule grid. The
// (term, day, period, subject) slot is unique and a duplicate is a hard
// conflict; different subjects may share the same day and period, and
// room or lecturer double booking is not checked.
type TimetableService struct {
	repo      timetableRepository
	terms     registrationTermLookup
	periods   timetablePeriodLookup
	offerings timetableOfferingLookup
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService creates a new timetable service instance.
func NewTimetableService(repo timetableRepository, terms registrationTermLookup, periods timetablePeriodLookup, offerings timetableOfferingLookup, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		repo:      repo,
		terms:     terms,
		periods:   periods,
		offerings: offerings,
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// ListByTerm returns a term's schedule ordered for grid rendering.
func (s *TimetableService) ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntryDetail, error) {
	if _, err := s.lookupTerm(ctx, termID); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	return entries, nil
}

// CreateEntry schedules a subject. The day must be a teaching day, the
// period must exist and the subject must be offered in the term.
func (s *TimetableService) CreateEntry(ctx context.Context, termID string, req CreateTimetableEntryRequest) (*models.TimetableEntryDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if !req.DayOfWeek.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day_of_week must be a teaching day (saturday through thursday)")
	}
	if _, err := s.lookupTerm(ctx, termID); err != nil {
		return nil, err
	}
	if err := s.checkSlotReferences(ctx, termID, req.PeriodID, req.SubjectID); err != nil {
		return nil, err
	}

	entry := &models.TimetableEntry{
		TermID:       termID,
		DayOfWeek:    req.DayOfWeek,
		PeriodID:     req.PeriodID,
		SubjectID:    req.SubjectID,
		RoomText:     req.RoomText,
		LecturerText: req.LecturerText,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject is already scheduled in this slot")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable entry")
	}

	detail, err := s.repo.FindByID(ctx, entry.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entry")
	}
	return detail, nil
}

// UpdateEntry moves or relabels an entry within its term.
func (s *TimetableService) UpdateEntry(ctx context.Context, id string, req UpdateTimetableEntryRequest) (*models.TimetableEntryDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entry")
	}
	if existing == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
	}

	entry := existing.TimetableEntry
	if req.DayOfWeek != nil {
		if !req.DayOfWeek.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "day_of_week must be a teaching day (saturday through thursday)")
		}
		entry.DayOfWeek = *req.DayOfWeek
	}
	if req.PeriodID != nil {
		entry.PeriodID = *req.PeriodID
	}
	if req.SubjectID != nil {
		entry.SubjectID = *req.SubjectID
	}
	if req.RoomText != nil {
		entry.RoomText = req.RoomText
	}
	if req.LecturerText != nil {
		entry.LecturerText = req.LecturerText
	}

	if err := s.checkSlotReferences(ctx, entry.TermID, entry.PeriodID, entry.SubjectID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject is already scheduled in this slot")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable entry")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entry")
	}
	return detail, nil
}

// DeleteEntry removes an entry.
func (s *TimetableService) DeleteEntry(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable entry")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
	}
	return nil
}

// ExportPDF renders a term's schedule as a landscape PDF table.
func (s *TimetableService) ExportPDF(ctx context.Context, termID string) ([]byte, string, error) {
	term, err := s.lookupTerm(ctx, termID)
	if err != nil {
		return nil, "", err
	}

	entries, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}

	dataset := export.Dataset{
		Headers: []string{"day", "period", "time", "subject", "room", "lecturer"},
	}
	for _, entry := range entries {
		row := map[string]string{
			"day":     string(entry.DayOfWeek),
			"period":  entry.PeriodLabel,
			"time":    fmt.Sprintf("%s-%s", entry.PeriodStart, entry.PeriodEnd),
			"subject": fmt.Sprintf("%s %s", entry.SubjectCode, entry.SubjectName),
		}
		if entry.RoomText != nil {
			row["room"] = *entry.RoomText
		}
		if entry.LecturerText != nil {
			row["lecturer"] = *entry.LecturerText
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	payload, err := s.pdf.Render(dataset, fmt.Sprintf("Timetable - %s", term.Name))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable pdf")
	}
	filename := fmt.Sprintf("timetable-%s.pdf", term.Name)
	return payload, filename, nil
}

func (s *TimetableService) lookupTerm(ctx context.Context, termID string) (*models.Term, error) {
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

func (s *TimetableService) checkSlotReferences(ctx context.Context, termID, periodID, subjectID string) error {
	if _, err := s.periods.FindByID(ctx, periodID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "period does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}

	offered, err := s.offerings.Exists(ctx, termID, subjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check offering")
	}
	if !offered {
		return appErrors.Clone(appErrors.ErrEligibility, "subject is not offered in the term")
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alqalam-institute/registry-api/internal/models"
	"github.com/alqalam-institute/registry-api/internal/repository"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type fakeTimetableRepo struct {
	entries map[string]models.TimetableEntryDetail
	nextID  int
}

func (f *fakeTimetableRepo) slotTaken(e models.TimetableEntry, excludeID string) bool {
	for _, existing := range f.entries {
		if existing.ID == excludeID {
			continue
		}
		if existing.TermID == e.TermID && existing.DayOfWeek == e.DayOfWeek &&
			existing.PeriodID == e.PeriodID && existing.SubjectID == e.SubjectID {
			return true
		}
	}
	return false
}

func (f *fakeTimetableRepo) ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntryDetail, error) {
	var out []models.TimetableEntryDetail
	for _, e := range f.entries {
		if e.TermID == termID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeTimetableRepo) FindByID(ctx context.Context, id string) (*models.TimetableEntryDetail, error) {
	if e, ok := f.entries[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (f *fakeTimetableRepo) Create(ctx context.Context, entry *models.TimetableEntry) error {
	if f.slotTaken(*entry, "") {
		return repository.ErrDuplicateSlot
	}
	if f.entries == nil {
		f.entries = make(map[string]models.TimetableEntryDetail)
	}
	f.nextID++
	entry.ID = fmt.Sprintf("entry-%d", f.nextID)
	f.entries[entry.ID] = models.TimetableEntryDetail{TimetableEntry: *entry}
	return nil
}

func (f *fakeTimetableRepo) Update(ctx context.Context, entry *models.TimetableEntry) error {
	if f.slotTaken(*entry, entry.ID) {
		return repository.ErrDuplicateSlot
	}
	f.entries[entry.ID] = models.TimetableEntryDetail{TimetableEntry: *entry}
	return nil
}

func (f *fakeTimetableRepo) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := f.entries[id]
	delete(f.entries, id)
	return ok, nil
}

type fakePeriodLookup struct {
	periods map[string]models.Period
}

func (f *fakePeriodLookup) FindByID(ctx context.Context, id string) (*models.Period, error) {
	if p, ok := f.periods[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

type fakeOfferingExists struct {
	offered map[string]bool
}

func (f *fakeOfferingExists) Exists(ctx context.Context, termID, subjectID string) (bool, error) {
	return f.offered[termID+":"+subjectID], nil
}

func newTimetableFixture() (*TimetableService, *fakeTimetableRepo, *fakeOfferingExists) {
	repo := &fakeTimetableRepo{}
	terms := &fakeTermLookup{terms: map[string]models.Term{"term-1": {ID: "term-1", Name: "1447 Autumn"}}}
	periods := &fakePeriodLookup{periods: map[string]models.Period{
		"period-1": {ID: "period-1", Label: "First", StartTime: "08:30", EndTime: "10:00"},
	}}
	offerings := &fakeOfferingExists{offered: map[string]bool{"term-1:subj-1": true, "term-1:subj-2": true}}
	return NewTimetableService(repo, terms, periods, offerings, nil, nil), repo, offerings
}

func TestTimetableServiceRejectsFriday(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	_, err := svc.CreateEntry(context.Background(), "term-1", CreateTimetableEntryRequest{
		DayOfWeek: models.DayOfWeek("friday"),
		PeriodID:  "period-1",
		SubjectID: "subj-1",
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestTimetableServiceRequiresOffering(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	_, err := svc.CreateEntry(context.Background(), "term-1", CreateTimetableEntryRequest{
		DayOfWeek: models.DayMonday,
		PeriodID:  "period-1",
		SubjectID: "subj-unoffered",
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrEligibility))
}

func TestTimetableServiceUnknownPeriodNotFound(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	_, err := svc.CreateEntry(context.Background(), "term-1", CreateTimetableEntryRequest{
		DayOfWeek: models.DayMonday,
		PeriodID:  "ghost",
		SubjectID: "subj-1",
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableServiceDuplicateSlotIsConflict(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	req := CreateTimetableEntryRequest{
		DayOfWeek: models.DayMonday,
		PeriodID:  "period-1",
		SubjectID: "subj-1",
	}
	_, err := svc.CreateEntry(context.Background(), "term-1", req)
	require.NoError(t, err)

	_, err = svc.CreateEntry(context.Background(), "term-1", req)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestTimetableServiceDifferentSubjectsShareSlot(t *testing.T) {
	svc, repo, _ := newTimetableFixture()

	_, err := svc.CreateEntry(context.Background(), "term-1", CreateTimetableEntryRequest{
		DayOfWeek: models.DayMonday,
		PeriodID:  "period-1",
		SubjectID: "subj-1",
	})
	require.NoError(t, err)

	_, err = svc.CreateEntry(context.Background(), "term-1", CreateTimetableEntryRequest{
		DayOfWeek: models.DayMonday,
		PeriodID:  "period-1",
		SubjectID: "subj-2",
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 2)
}

func TestTimetableServiceUpdateMissingEntry(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	day := models.DayTuesday
	_, err := svc.UpdateEntry(context.Background(), "missing", UpdateTimetableEntryRequest{DayOfWeek: &day})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableServiceDeleteMissingEntry(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	err := svc.DeleteEntry(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableServiceExportPDF(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	_, err := svc.CreateEntry(context.Background(), "term-1", CreateTimetableEntryRequest{
		DayOfWeek: models.DaySaturday,
		PeriodID:  "period-1",
		SubjectID: "subj-1",
	})
	require.NoError(t, err)

	payload, filename, err := svc.ExportPDF(context.Background(), "term-1")
	require.NoError(t, err)
	require.Contains(t, filename, ".pdf")
	require.NotEmpty(t, payload)
}

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alqalam-institute/registry-api/internal/models"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type fakeRegistrationRepo struct {
	registered map[string]bool // key termID+":"+studentID
	listed     []models.RegistrationDetail
	unregister [][]string
}

func (f *fakeRegistrationRepo) key(termID, studentID string) string {
	return termID + ":" + studentID
}

func (f *fakeRegistrationRepo) ListByTerm(ctx context.Context, termID string) ([]models.RegistrationDetail, error) {
	return f.listed, nil
}

func (f *fakeRegistrationRepo) RegisterBatch(ctx context.Context, termID string, studentIDs []string, sectionID *string) ([]string, error) {
	if f.registered == nil {
		f.registered = make(map[string]bool)
	}
	var inserted []string
	for _, id := range studentIDs {
		k := f.key(termID, id)
		if f.registered[k] {
			continue
		}
		f.registered[k] = true
		inserted = append(inserted, id)
	}
	return inserted, nil
}

func (f *fakeRegistrationRepo) UnregisterBatch(ctx context.Context, termID string, studentIDs []string) error {
	f.unregister = append(f.unregister, studentIDs)
	for _, id := range studentIDs {
		delete(f.registered, f.key(termID, id))
	}
	return nil
}

type fakeTermLookup struct {
	terms map[string]models.Term
}

func (f *fakeTermLookup) FindByID(ctx context.Context, id string) (*models.Term, error) {
	if t, ok := f.terms[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

type fakeStudentExists struct {
	known map[string]bool
}

func (f *fakeStudentExists) ExistsByIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = f.known[id]
	}
	return out, nil
}

func newRegistrationFixture() (*RegistrationService, *fakeRegistrationRepo) {
	repo := &fakeRegistrationRepo{}
	terms := &fakeTermLookup{terms: map[string]models.Term{
		"term-1": {ID: "term-1", Name: "1447 Autumn"},
	}}
	students := &fakeStudentExists{known: map[string]bool{"stu-1": true, "stu-2": true}}
	return NewRegistrationService(repo, terms, students, nil, nil), repo
}

func TestRegistrationServiceRegisterIsIdempotent(t *testing.T) {
	svc, _ := newRegistrationFixture()

	first, err := svc.Register(context.Background(), RegisterRequest{
		TermID:     "term-1",
		StudentIDs: []string{"stu-1", "stu-2"},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"stu-1", "stu-2"}, first.Registered)
	require.Empty(t, first.Skipped)

	second, err := svc.Register(context.Background(), RegisterRequest{
		TermID:     "term-1",
		StudentIDs: []string{"stu-1", "stu-2"},
	})
	require.NoError(t, err)
	require.Empty(t, second.Registered)
	require.ElementsMatch(t, []string{"stu-1", "stu-2"}, second.Skipped)
}

func TestRegistrationServiceRegisterDeduplicatesBatch(t *testing.T) {
	svc, repo := newRegistrationFixture()

	result, err := svc.Register(context.Background(), RegisterRequest{
		TermID:     "term-1",
		StudentIDs: []string{"stu-1", "stu-1", "stu-1"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"stu-1"}, result.Registered)
	require.True(t, repo.registered["term-1:stu-1"])
}

func TestRegistrationServiceRegisterRejectsUnknownStudent(t *testing.T) {
	svc, repo := newRegistrationFixture()

	_, err := svc.Register(context.Background(), RegisterRequest{
		TermID:     "term-1",
		StudentIDs: []string{"stu-1", "ghost"},
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	require.Empty(t, repo.registered)
}

func TestRegistrationServiceRegisterUnknownTerm(t *testing.T) {
	svc, _ := newRegistrationFixture()

	_, err := svc.Register(context.Background(), RegisterRequest{
		TermID:     "missing",
		StudentIDs: []string{"stu-1"},
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestRegistrationServiceUnregisterMissingIsNoop(t *testing.T) {
	svc, repo := newRegistrationFixture()

	err := svc.Unregister(context.Background(), UnregisterRequest{
		TermID:     "term-1",
		StudentIDs: []string{"stu-1"},
	})
	require.NoError(t, err)
	require.Len(t, repo.unregister, 1)
}

func TestRegistrationServiceExportCSV(t *testing.T) {
	svc, repo := newRegistrationFixture()
	repo.listed = []models.RegistrationDetail{
		{
			Registration:          models.Registration{ID: "reg-1", TermID: "term-1", StudentID: "stu-1", RegisteredAt: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)},
			StudentRegistrationID: "R-1001",
			StudentFullName:       "Aisha Karim",
			StudentEmail:          "aisha@example.edu",
		},
	}

	payload, filename, err := svc.ExportCSV(context.Background(), "term-1")
	require.NoError(t, err)
	require.Contains(t, filename, ".csv")
	require.Contains(t, string(payload), "R-1001")
	require.Contains(t, string(payload), "Aisha Karim")
}

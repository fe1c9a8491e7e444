package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alqalam-institute/registry-api/internal/models"
	"github.com/alqalam-institute/registry-api/internal/repository"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type fakeTermRepo struct {
	terms      map[string]models.Term
	overlapOn  bool
	created    *models.Term
	updated    *models.Term
	deleted    []string
	deleteHits bool
}

func (f *fakeTermRepo) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	var out []models.Term
	for _, t := range f.terms {
		if t.IsArchived && !filter.IncludeArchived {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTermRepo) FindByID(ctx context.Context, id string) (*models.Term, error) {
	if t, ok := f.terms[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTermRepo) Create(ctx context.Context, term *models.Term) error {
	if f.overlapOn {
		return repository.ErrTermOverlap
	}
	if term.ID == "" {
		term.ID = "new-term"
	}
	if f.terms == nil {
		f.terms = make(map[string]models.Term)
	}
	f.terms[term.ID] = *term
	f.created = term
	return nil
}

func (f *fakeTermRepo) Update(ctx context.Context, term *models.Term) error {
	if f.overlapOn {
		return repository.ErrTermOverlap
	}
	f.terms[term.ID] = *term
	f.updated = term
	return nil
}

func (f *fakeTermRepo) Delete(ctx context.Context, id string) (bool, error) {
	f.deleted = append(f.deleted, id)
	_, ok := f.terms[id]
	delete(f.terms, id)
	return ok || f.deleteHits, nil
}

func TestTermServiceCreateValidatesDateOrder(t *testing.T) {
	svc := NewTermService(&fakeTermRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateTermRequest{
		Name:      "Backwards",
		StartDate: "2027-01-15",
		EndDate:   "2026-09-01",
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestTermServiceCreateOverlapIsConflict(t *testing.T) {
	svc := NewTermService(&fakeTermRepo{overlapOn: true}, nil, nil)

	_, err := svc.Create(context.Background(), CreateTermRequest{
		Name:      "1447 Autumn",
		StartDate: "2026-09-01",
		EndDate:   "2027-01-15",
	})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestTermServiceCreateSucceeds(t *testing.T) {
	repo := &fakeTermRepo{}
	svc := NewTermService(repo, nil, nil)

	term, err := svc.Create(context.Background(), CreateTermRequest{
		Name:      "1447 Autumn",
		StartDate: "2026-09-01",
		EndDate:   "2027-01-15",
		IsActive:  true,
	})
	require.NoError(t, err)
	require.True(t, term.IsActive)
	require.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), term.StartDate)
	require.NotNil(t, repo.created)
}

func TestTermServiceUpdateCombinesStoredDates(t *testing.T) {
	repo := &fakeTermRepo{terms: map[string]models.Term{
		"term-1": {
			ID:        "term-1",
			Name:      "1447 Autumn",
			StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}}
	svc := NewTermService(repo, nil, nil)

	// Only the end moves; the stored start still bounds the order check.
	end := "2026-08-01"
	_, err := svc.Update(context.Background(), "term-1", UpdateTermRequest{EndDate: &end})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))

	end = "2027-02-01"
	updated, err := svc.Update(context.Background(), "term-1", UpdateTermRequest{EndDate: &end})
	require.NoError(t, err)
	require.Equal(t, time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC), updated.EndDate)
	require.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), updated.StartDate)
}

func TestTermServiceUpdateMissingTerm(t *testing.T) {
	svc := NewTermService(&fakeTermRepo{}, nil, nil)

	name := "Renamed"
	_, err := svc.Update(context.Background(), "missing", UpdateTermRequest{Name: &name})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTermServiceDeleteMissing(t *testing.T) {
	svc := NewTermService(&fakeTermRepo{}, nil, nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

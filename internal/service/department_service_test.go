package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alqalam-institute/registry-api/internal/models"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
)

type fakeDepartmentRepo struct {
	departments  map[string]models.Department
	withStudents map[string]bool
	withSubjects map[string]bool
	deleted      []string
}

func (f *fakeDepartmentRepo) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, error) {
	var out []models.Department
	for _, d := range f.departments {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDepartmentRepo) FindByID(ctx context.Context, id string) (*models.Department, error) {
	if d, ok := f.departments[id]; ok {
		return &d, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeDepartmentRepo) Create(ctx context.Context, department *models.Department) error {
	if f.departments == nil {
		f.departments = make(map[string]models.Department)
	}
	if department.ID == "" {
		department.ID = "new-dept"
	}
	f.departments[department.ID] = *department
	return nil
}

func (f *fakeDepartmentRepo) Update(ctx context.Context, department *models.Department) error {
	f.departments[department.ID] = *department
	return nil
}

func (f *fakeDepartmentRepo) Delete(ctx context.Context, id string) (bool, error) {
	f.deleted = append(f.deleted, id)
	_, ok := f.departments[id]
	delete(f.departments, id)
	return ok, nil
}

func (f *fakeDepartmentRepo) HasStudents(ctx context.Context, id string) (bool, error) {
	return f.withStudents[id], nil
}

func (f *fakeDepartmentRepo) HasSubjects(ctx context.Context, id string) (bool, error) {
	return f.withSubjects[id], nil
}

func TestDepartmentServiceDeleteBlockedByStudents(t *testing.T) {
	repo := &fakeDepartmentRepo{
		departments:  map[string]models.Department{"dept-1": {ID: "dept-1", Code: "SHARIA"}},
		withStudents: map[string]bool{"dept-1": true},
	}
	svc := NewDepartmentService(repo, nil, nil)

	err := svc.Delete(context.Background(), "dept-1")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrConflict))
	require.Empty(t, repo.deleted)
}

func TestDepartmentServiceDeleteBlockedBySubjects(t *testing.T) {
	repo := &fakeDepartmentRepo{
		departments:  map[string]models.Department{"dept-1": {ID: "dept-1"}},
		withSubjects: map[string]bool{"dept-1": true},
	}
	svc := NewDepartmentService(repo, nil, nil)

	err := svc.Delete(context.Background(), "dept-1")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestDepartmentServiceDeleteUnreferenced(t *testing.T) {
	repo := &fakeDepartmentRepo{
		departments: map[string]models.Department{"dept-1": {ID: "dept-1"}},
	}
	svc := NewDepartmentService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "dept-1"))
	require.Equal(t, []string{"dept-1"}, repo.deleted)
}

func TestDepartmentServiceCreateDefaultsActive(t *testing.T) {
	repo := &fakeDepartmentRepo{}
	svc := NewDepartmentService(repo, nil, nil)

	dept, err := svc.Create(context.Background(), CreateDepartmentRequest{Code: "QURAN", Name: "Quranic Studies"})
	require.NoError(t, err)
	require.True(t, dept.IsActive)
}

func TestDepartmentServiceGetMissing(t *testing.T) {
	svc := NewDepartmentService(&fakeDepartmentRepo{}, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

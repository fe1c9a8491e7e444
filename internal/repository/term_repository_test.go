package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/alqalam-institute/registry-api/internal/models"
)

func newTermRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTermRepositoryCreateDeactivatesOthersFirst(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE terms SET is_active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM terms WHERE start_date <= $1 AND end_date >= $2)")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO terms")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	term := &models.Term{
		Name:      "1447 Autumn",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	require.NoError(t, repo.Create(context.Background(), term))
	require.NotEmpty(t, term.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryCreateOverlapRollsBack(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM terms WHERE start_date <= $1 AND end_date >= $2)")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	term := &models.Term{
		Name:      "1447 Spring",
		StartDate: time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 6, 15, 0, 0, 0, 0, time.UTC),
	}
	err := repo.Create(context.Background(), term)
	require.ErrorIs(t, err, ErrTermOverlap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryUpdateExcludesSelfFromOverlap(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM terms WHERE id <> $1")).
		WithArgs("term-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE terms SET name = ")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	term := &models.Term{
		ID:        "term-1",
		Name:      "1447 Autumn (revised)",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 1, 20, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Update(context.Background(), term))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryDeleteCascadesDependents(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)

	mock.ExpectBegin()
	for _, table := range []string{"timetable_entries", "student_subjects", "term_subjects", "registrations", "sections"} {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM "+table)).
			WithArgs("term-1").
			WillReturnResult(sqlmock.NewResult(0, 3))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM terms WHERE id = $1")).
		WithArgs("term-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	found, err := repo.Delete(context.Background(), "term-1")
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)

	mock.ExpectBegin()
	for _, table := range []string{"timetable_entries", "student_subjects", "term_subjects", "registrations", "sections"} {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM "+table)).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM terms WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	found, err := repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

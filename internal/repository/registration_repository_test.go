package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRegistrationRepositoryRegisterBatchIncrementsOnlyOnInsert(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	// stu-1 is new: the row lands and the counter moves.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registrations")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET study_semesters_count = study_semesters_count + 1")).
		WithArgs("stu-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// stu-2 is already registered: conflict skips the insert and the counter.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	inserted, err := repo.RegisterBatch(context.Background(), "term-1", []string{"stu-1", "stu-2"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"stu-1"}, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryUnregisterBatchLeavesCounter(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM registrations WHERE term_id = $1 AND student_id = $2")).
		WithArgs("term-1", "stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UnregisterBatch(context.Background(), "term-1", []string{"stu-1"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryExists(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM registrations")).
		WithArgs("term-1", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "term-1", "stu-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestDepartmentRepositoryDeleteReportsMatch(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewDepartmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM departments WHERE id = $1")).
		WithArgs("dept-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.Delete(context.Background(), "dept-1")
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentRepositoryDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewDepartmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM departments WHERE id = $1")).
		WithArgs("dept-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := repo.Delete(context.Background(), "dept-missing")
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestAssignmentRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_subjects")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_subjects")).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.InsertBatch(context.Background(), "term-1", "stu-1", []string{"subj-1", "subj-2"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateGrade(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)

	grade := 87.5
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_subjects SET grade = $1")).
		WithArgs(grade, "term-1", "stu-1", "subj-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.UpdateGrade(context.Background(), "term-1", "stu-1", "subj-1", &grade)
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateGradeClearsWithNil(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_subjects SET grade = $1")).
		WithArgs(nil, "term-1", "stu-1", "subj-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.UpdateGrade(context.Background(), "term-1", "stu-1", "subj-1", nil)
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateGradeMissingRow(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)

	grade := 50.0
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_subjects SET grade = $1")).
		WithArgs(grade, "term-1", "stu-1", "subj-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := repo.UpdateGrade(context.Background(), "term-1", "stu-1", "subj-x", &grade)
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositorySubjectIDs(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_id FROM student_subjects WHERE term_id = $1 AND student_id = $2")).
		WithArgs("term-1", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"subject_id"}).AddRow("subj-1"))

	set, err := repo.SubjectIDs(context.Background(), "term-1", "stu-1")
	require.NoError(t, err)
	require.True(t, set["subj-1"])
	require.Len(t, set, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

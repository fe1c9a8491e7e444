package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestOfferingRepositoryAssignBatchSkipsExisting(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewOfferingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO term_subjects")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO term_subjects")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	added, err := repo.AssignBatch(context.Background(), "term-1", []string{"subj-1", "subj-2"})
	require.NoError(t, err)
	require.Equal(t, []string{"subj-1"}, added)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferingRepositoryOfferedSubjectIDs(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewOfferingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_id FROM term_subjects WHERE term_id = $1")).
		WithArgs("term-1").
		WillReturnRows(sqlmock.NewRows([]string{"subject_id"}).AddRow("subj-1").AddRow("subj-2"))

	set, err := repo.OfferedSubjectIDs(context.Background(), "term-1")
	require.NoError(t, err)
	require.True(t, set["subj-1"])
	require.True(t, set["subj-2"])
	require.False(t, set["subj-3"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferingRepositoryUnassignBatch(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()

	repo := NewOfferingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM term_subjects WHERE term_id = ")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.UnassignBatch(context.Background(), "term-1", []string{"subj-1", "subj-2"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

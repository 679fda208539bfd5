package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-logistics-api/internal/models"
)

func newBranchRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBranchRepositoryUpdateRefreshesSectionNames(t *testing.T) {
	db, mock, cleanup := newBranchRepoMock(t)
	defer cleanup()

	repo := NewBranchRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE branches SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sections SET formatted_name")).
		WithArgs("ECE", sqlmock.AnyArg(), "br-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), &models.Branch{ID: "br-1", Name: "ECE", YearID: "year-1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBranchRepositoryUpdateRollsBackOnRefreshFailure(t *testing.T) {
	db, mock, cleanup := newBranchRepoMock(t)
	defer cleanup()

	repo := NewBranchRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE branches SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sections SET formatted_name")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Branch{ID: "br-1", Name: "ECE", YearID: "year-1"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBranchRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newBranchRepoMock(t)
	defer cleanup()

	repo := NewBranchRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM branches")).
		WithArgs("CSE", "year-1", "br-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	taken, err := repo.ExistsByName(context.Background(), "CSE", "year-1", "br-1")
	require.NoError(t, err)
	require.True(t, taken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBranchRepositoryExistsByNameNoMatch(t *testing.T) {
	db, mock, cleanup := newBranchRepoMock(t)
	defer cleanup()

	repo := NewBranchRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM branches")).
		WithArgs("CIVIL", "year-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	taken, err := repo.ExistsByName(context.Background(), "CIVIL", "year-1", "")
	require.NoError(t, err)
	require.False(t, taken)
	require.NoError(t, mock.ExpectationsWereMet())
}

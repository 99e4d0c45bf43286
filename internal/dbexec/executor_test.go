package dbexec

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphql-datalayer/internal/sqlgen"
)

func TestRun_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `User`").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectExec("DELETE FROM `User`").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	executor := New(db)
	err = executor.Run(context.Background(), []sqlgen.Statement{
		{SQL: "SELECT `id` FROM `User` WHERE `id` = ? LIMIT 1", Args: []interface{}{"u1"}, Kind: sqlgen.KindProbeExists},
		{SQL: "DELETE FROM `User` WHERE `id` = ?", Args: []interface{}{"u1"}, Kind: sqlgen.KindWrite},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_RollsBackWhenExistenceProbeMisses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `User`").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	executor := New(db)
	err = executor.Run(context.Background(), []sqlgen.Statement{
		{SQL: "SELECT `id` FROM `User` WHERE `id` = ? LIMIT 1", Args: []interface{}{"missing"}, Kind: sqlgen.KindProbeExists},
		{SQL: "DELETE FROM `User` WHERE `id` = ?", Args: []interface{}{"missing"}, Kind: sqlgen.KindWrite},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProbeFailed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_RollsBackWhenAbsenceProbeFindsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `A` FROM `_PostToUser`").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"A"}).AddRow("u1"))
	mock.ExpectRollback()

	executor := New(db)
	err = executor.Run(context.Background(), []sqlgen.Statement{
		{SQL: "SELECT `A` FROM `_PostToUser` WHERE `A` = ? LIMIT 1", Args: []interface{}{"u1"}, Kind: sqlgen.KindProbeAbsent},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProbeFailed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_RollsBackOnWriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("duplicate key")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `User`").
		WillReturnError(boom)
	mock.ExpectRollback()

	executor := New(db)
	err = executor.Run(context.Background(), []sqlgen.Statement{
		{SQL: "INSERT INTO `User` (`id`) VALUES (?)", Args: []interface{}{"u1"}, Kind: sqlgen.KindWrite},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_NilDatabase(t *testing.T) {
	executor := New(nil)
	err := executor.Run(context.Background(), nil)
	require.Error(t, err)
}

func TestRun_EmptyPlanCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	executor := New(db)
	require.NoError(t, executor.Run(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

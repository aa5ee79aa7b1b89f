package revocations

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	revokeQ = `(?s)^\s*INSERT\s+INTO\s+revoked_tokens\s*\(token_hash,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(token_hash\)\s*DO\s+NOTHING\s*$`
	existsQ = `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+revoked_tokens\s+WHERE\s+token_hash\s*=\s*\$1\)$`
	purgeQ  = `^DELETE\s+FROM\s+revoked_tokens\s+WHERE\s+expires_at\s*<\s*\$1$`
)

func TestRevoke(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	mock.ExpectExec(revokeQ).WithArgs("abc", exp).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(revokeQ).WithArgs("abc", exp).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Revoke(context.Background(), "abc", exp))
	require.NoError(t, repo.Revoke(context.Background(), "abc", exp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevoke_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(revokeQ).WillReturnError(errors.New("db down"))
	assert.ErrorContains(t, repo.Revoke(context.Background(), "abc", time.Now()), "db error: db down")
}

func TestIsRevoked(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(existsQ).WithArgs("abc").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(existsQ).WithArgs("def").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(existsQ).WithArgs("ghi").WillReturnError(errors.New("boom"))

	ok, err := repo.IsRevoked(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsRevoked(context.Background(), "def")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.IsRevoked(context.Background(), "ghi")
	assert.Error(t, err)
}

func TestPurgeExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(purgeQ).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.PurgeExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectExec(purgeQ).WillReturnError(errors.New("boom"))
	_, err = repo.PurgeExpired(context.Background(), now)
	assert.Error(t, err)
}

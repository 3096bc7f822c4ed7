package store

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &SQLiteStore{db: sqlx.NewDb(db, "sqlite")}, mock
}

func TestSQLiteStore_GetWrapsDriverErrors(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT value FROM prefs").
		WithArgs("themeMode").
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.Get("themeMode")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_SetWrapsDriverErrors(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO prefs").
		WillReturnError(errors.New("database is locked"))

	err := s.Set("themeMode", "dark")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `setting pref "themeMode"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_MigrationsSkipAppliedVersions(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(len(migrations)))

	require.NoError(t, s.runMigrations())
	assert.NoError(t, mock.ExpectationsWereMet())
}

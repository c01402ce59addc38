package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ RepositoryManager = (*PostgresRepositoryManager)(nil)
	_ RepositoryManager = (*MemoryRepositoryManager)(nil)
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestNewPostgresRepositoryManager_OpenError(t *testing.T) {
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) { return nil, errors.New("bad dsn") }
	defer func() { sqlOpen = orig }()

	_, err := NewPostgresRepositoryManager("postgres://x")
	require.ErrorContains(t, err, "db open error: bad dsn")
}

func TestNewPostgresRepositoryManager_UsesPgxDriver(t *testing.T) {
	db, _ := newDB(t)

	var gotDriver string
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver = driver
		return db, nil
	}
	defer func() { sqlOpen = orig }()

	m, err := NewPostgresRepositoryManager("postgres://x")
	require.NoError(t, err)
	assert.Equal(t, "pgx", gotDriver)
	assert.NotNil(t, m.Users())
}

func TestRunMigrations(t *testing.T) {
	db, _ := newDB(t)
	m := NewPostgresRepositoryManagerFromDB(db)

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	require.NoError(t, m.RunMigrations(context.Background()))

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	require.ErrorContains(t, m.RunMigrations(context.Background()), "migrations: boom")
}

func TestPostgresInTx_CommitsAndRollsBack(t *testing.T) {
	db, mock := newDB(t)
	m := NewPostgresRepositoryManagerFromDB(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	err := m.InTx(context.Background(), func(ctx context.Context, r users.Repository) error {
		assert.NotNil(t, r)
		return nil
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	err = m.InTx(context.Background(), func(ctx context.Context, r users.Repository) error {
		return common.ErrorAlreadyExists
	})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPingAndClose(t *testing.T) {
	db, mock := newDB(t)
	m := NewPostgresRepositoryManagerFromDB(db)

	mock.ExpectPing()
	require.NoError(t, m.Ping(context.Background()))

	mock.ExpectClose()
	require.NoError(t, m.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepositoryManager(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRepositoryManager()

	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.Ping(ctx))

	err := m.InTx(ctx, func(ctx context.Context, r users.Repository) error {
		_, err := r.Create(ctx, &models.User{UserName: "alice1", Email: "a@example.com"})
		return err
	})
	require.NoError(t, err)

	u, err := m.Users().FindByUsername(ctx, "alice1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)

	require.NoError(t, m.Close())
}

package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/clinicauth/internal/server/config"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_DBError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(context.Context, string, repomanager.RepositoryManager) (*sql.DB, error) {
		return nil, errors.New("no db")
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()

	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error: no db")
}

func TestApp_SetDisabled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(context.Context, string, repomanager.RepositoryManager) (*sql.DB, error) {
		return db, nil
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogLevel = "error"

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE accounts SET disabled").
		WithArgs("asha@x.com", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectClose()

	require.NoError(t, app.SetDisabled(context.Background(), "Asha@X.com", true))
	require.NoError(t, app.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

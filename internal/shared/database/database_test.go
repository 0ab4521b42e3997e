package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// gorm pings on open
	mock.ExpectPing()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestHealthCheckPostgres(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		mock.ExpectPing()

		db := &DB{PostgreSQL: gdb}
		assert.NoError(t, db.HealthCheck(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping fails", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		db := &DB{PostgreSQL: gdb}
		err := db.HealthCheck(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PostgreSQL ping failed")
	})
}

func TestWithTxCommitsAndJoins(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := WithTx(context.Background(), gdb, func(ctx context.Context) error {
		calls++
		return WithTx(ctx, gdb, func(inner context.Context) error {
			calls++
			assert.NotNil(t, inner.Value(txKey{}))
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := WithTx(context.Background(), gdb, func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateConstraints(t *testing.T) {
	gdb, mock := newMockDB(t)
	for range constraintStatements {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, MigrateConstraints(gdb))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateWithoutModels(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectExec("CREATE EXTENSION").WillReturnResult(sqlmock.NewResult(0, 0))
	for range constraintStatements {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(gdb))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenPostgres_AppliesPoolSettings(t *testing.T) {
	// pings are not monitored, so they succeed
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		GinMode: "release",
		Database: config.DatabaseConfig{
			MaxOpenConns:    7,
			MaxIdleConns:    3,
			ConnMaxLifetime: time.Minute,
			ConnectTimeout:  time.Second,
		},
	}
	gdb, err := openPostgres(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
	require.NoError(t, err)
	require.NotNil(t, gdb)

	assert.Equal(t, 7, sqlDB.Stats().MaxOpenConnections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_ReportsEveryBackend(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	err := (&DB{PostgreSQL: gdb, Redis: rdb}).HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PostgreSQL ping failed")
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestConnectTimeoutDefault(t *testing.T) {
	assert.Equal(t, 5*time.Second, connectTimeout(0))
	assert.Equal(t, 2*time.Second, connectTimeout(2*time.Second))
}

// Package integration runs the rent ledger against a real PostgreSQL
// started with testcontainers and migrated with the SQL files under
// migrations/.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rentledger/backend/internal/infrastructure/config"
	"github.com/rentledger/backend/internal/infrastructure/logger"
	"github.com/rentledger/backend/internal/infrastructure/migration"
	"github.com/rentledger/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testDBName     = "rentledger_test"
	testDBUser     = "postgres"
	testDBPassword = "postgres"
)

// ledgerTables are truncated between tests, children first
var ledgerTables = []string{
	"sms_logs",
	"payment_histories",
	"tenant_histories",
	"archived_payments",
	"archived_tenants",
	"payments",
	"tenants",
}

// TestDB is a migrated PostgreSQL database in its own container, opened
// the same way the server opens its database.
type TestDB struct {
	*persistence.Database
	container testcontainers.Container
	t         *testing.T
}

// NewTestDB starts a fresh container for the test and terminates it at cleanup
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	tdb := &TestDB{container: container, t: t}
	t.Cleanup(tdb.Close)

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	migrate(t, url)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	level := gormlogger.Silent
	if os.Getenv("RENT_TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	tdb.Database, err = persistence.NewDatabase(&config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            testDBUser,
		Password:        testDBPassword,
		DBName:          testDBName,
		SSLMode:         "disable",
		MaxOpenConns:    20,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
	}, persistence.WithLogger(logger.NewGormLogger(zaptest.NewLogger(t), level)))
	require.NoError(t, err, "Failed to connect to database")
	return tdb
}

func migrate(t *testing.T, url string) {
	t.Helper()
	path := findMigrationsPath()
	require.NotEmpty(t, path, "Could not find migrations directory")

	m, err := migration.NewFromURL(url, path, zap.NewNop())
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// Close closes the connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.Database != nil {
		_ = tdb.Database.Close()
	}
	if err := tdb.container.Terminate(context.Background()); err != nil {
		tdb.t.Logf("Warning: failed to terminate container: %v", err)
	}
}

// CleanTables empties every ledger table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	for _, table := range ledgerTables {
		require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+table+" CASCADE").Error)
	}
}

// Count returns the number of rows in table matching where
func (tdb *TestDB) Count(table, where string, args ...any) int64 {
	tdb.t.Helper()
	var n int64
	query := tdb.DB.Table(table)
	if where != "" {
		query = query.Where(where, args...)
	}
	require.NoError(tdb.t, query.Count(&n).Error)
	return n
}

// findMigrationsPath walks up from this file to the repository's migrations/
func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	for dir := filepath.Dir(filename); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}

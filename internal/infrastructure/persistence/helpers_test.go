package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var repoNow = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

// setupSQLiteDB opens an in-memory database with the full schema
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// newMockGormDB opens a postgres-dialect GORM DB over sqlmock
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

// seedTenant persists a tenant created at repoNow
func seedTenant(t *testing.T, db *gorm.DB, name, unit string, rent int64) *rental.Tenant {
	t.Helper()
	tenant, err := rental.NewTenant(name, "0712000000", unit, decimal.NewFromInt(rent), 5, repoNow)
	require.NoError(t, err)
	tenant.PullDomainEvents()
	require.NoError(t, NewGormTenantRepository(db).Create(context.Background(), tenant))
	return tenant
}

// seedPayment persists a payment made at paidAt
func seedPayment(t *testing.T, db *gorm.DB, tenant *rental.Tenant, amount int64, status rental.PaymentStatus, paidAt time.Time) *rental.Payment {
	t.Helper()
	payment, err := rental.NewPayment(tenant.ID, decimal.NewFromInt(amount), rental.PaymentTypePartial, status, "", paidAt)
	require.NoError(t, err)
	require.NoError(t, NewGormPaymentRepository(db).Create(context.Background(), payment))
	return payment
}

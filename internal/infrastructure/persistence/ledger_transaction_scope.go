package persistence

import (
	"context"

	"github.com/rentledger/backend/internal/application/ledger"
	"github.com/rentledger/backend/internal/domain/rental"
	"gorm.io/gorm"
)

// GormTransactionScope implements ledger.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back; otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Tenants returns the tenant repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Tenants() rental.TenantRepository {
	return NewGormTenantRepository(r.tx)
}

// Payments returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Payments() rental.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Archive returns the archive store scoped to the current transaction.
func (r *gormTransactionalRepositories) Archive() rental.ArchiveRepository {
	return NewGormArchiveRepository(r.tx)
}

// History returns the audit log scoped to the current transaction.
func (r *gormTransactionalRepositories) History() rental.HistoryRepository {
	return NewGormHistoryRepository(r.tx)
}

// Remover returns the live-row remover scoped to the current transaction.
func (r *gormTransactionalRepositories) Remover() rental.LiveRecordRemover {
	return &gormLiveRecordRemover{db: r.tx}
}

// Ensure GormTransactionScope implements TransactionScope
var _ ledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ ledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

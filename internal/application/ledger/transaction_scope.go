package ledger

import (
	"context"

	"github.com/rentledger/backend/internal/domain/rental"
)

// TransactionScope provides transactional access to the ledger repositories.
// Every repository handed to fn shares one database transaction, which is
// committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all ledger repositories within a transaction.
//
// Remover is the only way to delete live tenants and payments. It is exposed
// here, and nowhere else, so deletions always run next to their archive writes.
type TransactionalRepositories interface {
	// Tenants returns the tenant repository scoped to the current transaction
	Tenants() rental.TenantRepository
	// Payments returns the payment repository scoped to the current transaction
	Payments() rental.PaymentRepository
	// Archive returns the archive store scoped to the current transaction
	Archive() rental.ArchiveRepository
	// History returns the audit log scoped to the current transaction
	History() rental.HistoryRepository
	// Remover deletes live rows within the current transaction
	Remover() rental.LiveRecordRemover
}

// NoOpTransactionScope runs fn directly against the given repositories
// without a transaction. Useful in tests where atomicity is not under test.
type NoOpTransactionScope struct {
	repos TransactionalRepositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	tenants rental.TenantRepository,
	payments rental.PaymentRepository,
	archive rental.ArchiveRepository,
	history rental.HistoryRepository,
	remover rental.LiveRecordRemover,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		repos: &staticRepositories{
			tenants:  tenants,
			payments: payments,
			archive:  archive,
			history:  history,
			remover:  remover,
		},
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

type staticRepositories struct {
	tenants  rental.TenantRepository
	payments rental.PaymentRepository
	archive  rental.ArchiveRepository
	history  rental.HistoryRepository
	remover  rental.LiveRecordRemover
}

func (r *staticRepositories) Tenants() rental.TenantRepository { return r.tenants }
func (r *staticRepositories) Payments() rental.PaymentRepository { return r.payments }
func (r *staticRepositories) Archive() rental.ArchiveRepository { return r.archive }
func (r *staticRepositories) History() rental.HistoryRepository { return r.history }
func (r *staticRepositories) Remover() rental.LiveRecordRemover { return r.remover }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*staticRepositories)(nil)
)

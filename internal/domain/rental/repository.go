package rental

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TenantFilter defines filtering options for tenant queries
type TenantFilter struct {
	shared.Filter
	Statuses []RentStatus // Filter by any of these statuses
}

// TenantTotals aggregates money figures across all tenants
type TenantTotals struct {
	RentRoll    decimal.Decimal // Sum of monthly rent
	Outstanding decimal.Decimal // Sum of amount due
}

// TenantRepository defines the interface for tenant persistence.
// Tenants are removed only through LiveRecordRemover inside an archive transaction.
type TenantRepository interface {
	// FindByID finds a tenant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByIDForUpdate finds a tenant and locks its row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindAll finds tenants with filtering and pagination
	FindAll(ctx context.Context, filter TenantFilter) ([]Tenant, error)

	// FindByStatuses finds every tenant in any of the given statuses
	FindByStatuses(ctx context.Context, statuses ...RentStatus) ([]Tenant, error)

	// ListIDs returns the ID of every tenant, oldest first
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// Count counts tenants matching the filter
	Count(ctx context.Context, filter TenantFilter) (int64, error)

	// CountByStatus counts tenants per status
	CountByStatus(ctx context.Context) (map[RentStatus]int64, error)

	// Totals sums rent and outstanding balances across tenants
	Totals(ctx context.Context) (TenantTotals, error)

	// Create inserts a new tenant
	Create(ctx context.Context, tenant *Tenant) error

	// SaveWithLock saves with optimistic locking (version check).
	// Returns shared.ErrConcurrencyConflict when the stored version moved on.
	SaveWithLock(ctx context.Context, tenant *Tenant) error
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	TenantID *uuid.UUID     // Filter by owning tenant
	Status   *PaymentStatus // Filter by payment status
	Type     *PaymentType   // Filter by payment type
	From     *time.Time     // PaidAt on or after
	To       *time.Time     // PaidAt before
}

// IncomeSummary is the total and count of received payments in a period
type IncomeSummary struct {
	Total decimal.Decimal
	Count int64
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByTenant finds every payment owned by a tenant, oldest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Payment, error)

	// FindAll finds payments with filtering and pagination
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, error)

	// Count counts payments matching the filter
	Count(ctx context.Context, filter PaymentFilter) (int64, error)

	// FindPaidAtBefore finds payments made before cutoff, oldest first
	FindPaidAtBefore(ctx context.Context, cutoff time.Time) ([]Payment, error)

	// FindReceivedBetween finds received (status Paid) payments with PaidAt in [from, to)
	FindReceivedBetween(ctx context.Context, from, to time.Time) ([]Payment, error)

	// SumReceivedBetween sums received payments with PaidAt in [from, to)
	SumReceivedBetween(ctx context.Context, from, to time.Time) (IncomeSummary, error)

	// Create inserts a new payment
	Create(ctx context.Context, payment *Payment) error
}

// ArchiveFilter defines filtering options for archive queries
type ArchiveFilter struct {
	shared.Filter
	OriginalID *uuid.UUID // Filter by the id the record had while live
	TenantID   *uuid.UUID // Payments only: filter by owning tenant
}

// ArchiveRepository is the append-only archive store
type ArchiveRepository interface {
	// SaveTenant inserts a tenant snapshot
	SaveTenant(ctx context.Context, archived *ArchivedTenant) error

	// SavePayment inserts a payment snapshot
	SavePayment(ctx context.Context, archived *ArchivedPayment) error

	// FindTenants lists archived tenants, newest first
	FindTenants(ctx context.Context, filter ArchiveFilter) ([]ArchivedTenant, error)

	// FindPayments lists archived payments, newest first
	FindPayments(ctx context.Context, filter ArchiveFilter) ([]ArchivedPayment, error)

	// CountTenants counts archived tenants matching the filter
	CountTenants(ctx context.Context, filter ArchiveFilter) (int64, error)

	// CountPayments counts archived payments matching the filter
	CountPayments(ctx context.Context, filter ArchiveFilter) (int64, error)
}

// HistoryRepository is the append-only audit log
type HistoryRepository interface {
	// AppendTenant appends a tenant history entry
	AppendTenant(ctx context.Context, entry *TenantHistory) error

	// AppendPayment appends a payment history entry
	AppendPayment(ctx context.Context, entry *PaymentHistory) error

	// FindByTenant lists a tenant's history, newest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]TenantHistory, error)

	// FindByPayment lists a payment's history, newest first
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]PaymentHistory, error)
}

// LiveRecordRemover deletes live rows. It is only handed out inside an
// archive transaction so nothing can delete without archiving first.
type LiveRecordRemover interface {
	// DeleteTenant removes a tenant row
	DeleteTenant(ctx context.Context, id uuid.UUID) error

	// DeletePayment removes a payment row
	DeletePayment(ctx context.Context, id uuid.UUID) error
}

// SMSStats summarises notification attempts
type SMSStats struct {
	Total      int64
	Successful int64
	Failed     int64
}

// SMSLogRepository stores notification attempts
type SMSLogRepository interface {
	// Create appends an attempt
	Create(ctx context.Context, entry *SMSLog) error

	// FindByTenant lists a tenant's attempts, newest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]SMSLog, error)

	// Stats counts attempts by outcome
	Stats(ctx context.Context) (SMSStats, error)
}

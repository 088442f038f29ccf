package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ArchiveFailure describes one entity that could not be archived in a bulk request
type ArchiveFailure struct {
	Kind  rental.EntityKind `json:"kind"`
	ID    uuid.UUID         `json:"id"`
	Error string            `json:"error"`
}

// BulkArchiveResult is the outcome of archiving several entities
type BulkArchiveResult struct {
	Requested int              `json:"requested"`
	Archived  int              `json:"archived"`
	Failures  []ArchiveFailure `json:"failures"`
}

// ArchiveService is the only way to delete tenants and payments. Each deletion
// snapshots the live row into the archive, appends a history entry and only
// then removes the row, all inside one transaction.
type ArchiveService struct {
	payments rental.PaymentRepository
	txScope  TransactionScope
	events   shared.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewArchiveService creates a new ArchiveService. events may be nil.
func NewArchiveService(
	payments rental.PaymentRepository,
	txScope TransactionScope,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ArchiveService {
	return &ArchiveService{
		payments: payments,
		txScope:  txScope,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// ArchiveAndDelete archives and deletes a tenant (with all its payments) or a
// single payment. Deleting a single received payment adds its amount back to
// the owner's balance. If any archive or history write fails the transaction
// is rolled back, nothing is deleted, and shared.ErrPersistenceFailure is returned.
func (s *ArchiveService) ArchiveAndDelete(ctx context.Context, ref rental.EntityRef, actor, reason string) error {
	if err := ref.Validate(); err != nil {
		return err
	}

	var events []shared.DomainEvent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		switch ref.Kind {
		case rental.EntityKindTenant:
			events, err = s.archiveTenant(ctx, repos, ref.ID, actor, reason)
		case rental.EntityKindPayment:
			meta := rental.NewArchiveMetadata(actor, reason, rental.ReasonPaymentDeleted, s.now())
			events, err = s.archivePayment(ctx, repos, ref.ID, meta, true)
		}
		return err
	})
	if err != nil {
		s.logger.Warn("Archive and delete failed",
			zap.String("entity", ref.String()),
			zap.Error(err))
		return err
	}

	s.logger.Info("Entity archived and deleted",
		zap.String("entity", ref.String()),
		zap.String("actor", actor))

	publishEvents(ctx, s.events, s.logger, events)
	return nil
}

// ArchiveAndDeleteMany archives each entity in its own transaction. One
// failure does not stop the others.
func (s *ArchiveService) ArchiveAndDeleteMany(ctx context.Context, refs []rental.EntityRef, actor, reason string) *BulkArchiveResult {
	result := &BulkArchiveResult{
		Requested: len(refs),
		Failures:  make([]ArchiveFailure, 0),
	}
	for _, ref := range refs {
		if err := s.ArchiveAndDelete(ctx, ref, actor, reason); err != nil {
			result.Failures = append(result.Failures, ArchiveFailure{Kind: ref.Kind, ID: ref.ID, Error: err.Error()})
			continue
		}
		result.Archived++
	}
	return result
}

// ClearPaymentsOlderThan archives and deletes every payment made more than
// days ago. Balances are not touched: old payments belong to closed cycles.
func (s *ArchiveService) ClearPaymentsOlderThan(ctx context.Context, days int, actor string) (*BulkArchiveResult, error) {
	if days <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "days must be positive")
	}

	now := s.now()
	cutoff := now.AddDate(0, 0, -days)
	old, err := s.payments.FindPaidAtBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	reason := fmt.Sprintf("Cleared payments older than %d days", days)
	result := &BulkArchiveResult{
		Requested: len(old),
		Failures:  make([]ArchiveFailure, 0),
	}

	for _, p := range old {
		var events []shared.DomainEvent
		err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			meta := rental.NewArchiveMetadata(actor, reason, rental.ReasonPaymentDeleted, now)
			var err error
			events, err = s.archivePayment(ctx, repos, p.ID, meta, false)
			return err
		})
		if err != nil {
			result.Failures = append(result.Failures, ArchiveFailure{Kind: rental.EntityKindPayment, ID: p.ID, Error: err.Error()})
			s.logger.Warn("Failed to clear old payment",
				zap.String("payment_id", p.ID.String()),
				zap.Error(err))
			continue
		}
		result.Archived++
		publishEvents(ctx, s.events, s.logger, events)
	}

	s.logger.Info("Old payments cleared",
		zap.Int("days", days),
		zap.Time("cutoff", cutoff),
		zap.Int("archived", result.Archived),
		zap.Int("failed", len(result.Failures)))

	return result, nil
}

// archiveTenant snapshots the tenant and every owned payment, records the
// deletions, then removes the payments and the tenant.
func (s *ArchiveService) archiveTenant(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, actor, reason string) ([]shared.DomainEvent, error) {
	tenant, err := repos.Tenants().FindByIDForUpdate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	meta := rental.NewArchiveMetadata(actor, reason, rental.ReasonTenantDeleted, s.now())

	archivedTenant := rental.NewArchivedTenant(tenant, meta)
	if err := repos.Archive().SaveTenant(ctx, archivedTenant); err != nil {
		return nil, persistenceFailure("failed to archive tenant", err)
	}
	if err := repos.History().AppendTenant(ctx, rental.TenantDeletedHistory(tenant, meta)); err != nil {
		return nil, persistenceFailure("failed to record tenant deletion", err)
	}

	payments, err := repos.Payments().FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant payments: %w", err)
	}

	events := make([]shared.DomainEvent, 0, len(payments)+1)
	for i := range payments {
		p := &payments[i]
		archived := rental.NewArchivedPayment(p, tenant, meta)
		if err := repos.Archive().SavePayment(ctx, archived); err != nil {
			return nil, persistenceFailure("failed to archive payment", err)
		}
		if err := repos.History().AppendPayment(ctx, rental.PaymentDeletedHistory(p, tenant, meta)); err != nil {
			return nil, persistenceFailure("failed to record payment deletion", err)
		}
		if err := repos.Remover().DeletePayment(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("failed to delete payment %s: %w", p.ID, err)
		}
		events = append(events, rental.NewPaymentArchivedEvent(archived))
	}

	if err := repos.Remover().DeleteTenant(ctx, tenant.ID); err != nil {
		return nil, fmt.Errorf("failed to delete tenant: %w", err)
	}

	events = append(events, rental.NewTenantArchivedEvent(archivedTenant, len(payments)))
	return events, nil
}

// archivePayment snapshots one payment, records the deletion, optionally
// reverses it on the owner's balance and removes it.
func (s *ArchiveService) archivePayment(ctx context.Context, repos TransactionalRepositories, paymentID uuid.UUID, meta rental.ArchiveMetadata, reverse bool) ([]shared.DomainEvent, error) {
	payment, err := repos.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	owner, err := repos.Tenants().FindByIDForUpdate(ctx, payment.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment owner: %w", err)
	}

	archived := rental.NewArchivedPayment(payment, owner, meta)
	if err := repos.Archive().SavePayment(ctx, archived); err != nil {
		return nil, persistenceFailure("failed to archive payment", err)
	}
	if err := repos.History().AppendPayment(ctx, rental.PaymentDeletedHistory(payment, owner, meta)); err != nil {
		return nil, persistenceFailure("failed to record payment deletion", err)
	}

	if reverse && payment.CountsTowardBalance() {
		if err := reverseOnTenant(ctx, repos, owner, payment.Amount, meta.At); err != nil {
			return nil, err
		}
	}

	if err := repos.Remover().DeletePayment(ctx, payment.ID); err != nil {
		return nil, fmt.Errorf("failed to delete payment: %w", err)
	}

	events := owner.PullDomainEvents()
	return append(events, rental.NewPaymentArchivedEvent(archived)), nil
}

// persistenceFailure keeps domain errors as they are and wraps anything else
// as a persistence failure.
func persistenceFailure(message string, err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.WrapDomainError(shared.CodePersistenceFailure, message, err)
}

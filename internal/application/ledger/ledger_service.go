package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService moves tenant balances. It only updates the balance and the
// derived status; writing the matching Payment row and notifying the tenant
// are separate steps owned by the caller.
type LedgerService struct {
	txScope TransactionScope
	events  shared.EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewLedgerService creates a new LedgerService. events may be nil.
func NewLedgerService(txScope TransactionScope, events shared.EventPublisher, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		txScope: txScope,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// BalanceChange is one balance movement as seen inside the transaction that
// made it.
type BalanceChange struct {
	Tenant      *rental.Tenant
	PreviousDue decimal.Decimal
}

// Applied is how much the balance actually went down. It can be less than
// the payment when the payment overshoots the balance.
func (c *BalanceChange) Applied() decimal.Decimal {
	return c.PreviousDue.Sub(c.Tenant.AmountDue)
}

// ApplyPayment reduces a tenant's balance by amount (never below zero),
// stamps the payment time and re-derives the status, all in one transaction.
// A competing write to the same tenant yields shared.ErrConcurrencyConflict;
// the caller retries the whole operation.
func (s *LedgerService) ApplyPayment(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) (*rental.Tenant, error) {
	change, err := s.Apply(ctx, tenantID, amount)
	if err != nil {
		return nil, err
	}
	return change.Tenant, nil
}

// Apply is ApplyPayment that also reports the balance the payment was
// applied against.
func (s *LedgerService) Apply(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) (*BalanceChange, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "payment amount must be positive")
	}

	var (
		change BalanceChange
		events []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		tenant, err := repos.Tenants().FindByIDForUpdate(ctx, tenantID)
		if err != nil {
			return err
		}

		now := s.now()
		previousDue, previousStatus := tenant.AmountDue, tenant.Status
		if err := tenant.ApplyPayment(amount, now); err != nil {
			return err
		}
		if err := repos.Tenants().SaveWithLock(ctx, tenant); err != nil {
			return err
		}
		if err := recordTenantChanges(ctx, repos.History(), tenant, previousDue, previousStatus, "payment received", false, now); err != nil {
			return err
		}

		events = tenant.PullDomainEvents()
		change = BalanceChange{Tenant: tenant.Clone(), PreviousDue: previousDue}
		return nil
	})
	if err != nil {
		s.logger.Warn("Failed to apply payment",
			zap.String("tenant_id", tenantID.String()),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Payment applied",
		zap.String("tenant_id", tenantID.String()),
		zap.String("amount", amount.String()),
		zap.String("previous_due", change.PreviousDue.String()),
		zap.String("amount_due", change.Tenant.AmountDue.String()),
		zap.String("status", change.Tenant.Status.String()))

	publishEvents(ctx, s.events, s.logger, events)
	return &change, nil
}

// ReversePayment adds amount back to a tenant's balance, undoing an earlier
// payment. The balance is not capped at the rent.
func (s *LedgerService) ReversePayment(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) (*rental.Tenant, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "reversal amount must be positive")
	}

	var (
		snapshot *rental.Tenant
		events   []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		tenant, err := repos.Tenants().FindByIDForUpdate(ctx, tenantID)
		if err != nil {
			return err
		}
		if err := reverseOnTenant(ctx, repos, tenant, amount, s.now()); err != nil {
			return err
		}
		events = tenant.PullDomainEvents()
		snapshot = tenant.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.events, s.logger, events)
	return snapshot, nil
}

// RefreshStatus re-derives one tenant's status as of today without touching
// the balance. It reports whether the stored status changed.
func (s *LedgerService) RefreshStatus(ctx context.Context, tenantID uuid.UUID, today time.Time) (bool, error) {
	var (
		changed bool
		events  []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		tenant, err := repos.Tenants().FindByIDForUpdate(ctx, tenantID)
		if err != nil {
			return err
		}

		previous := tenant.Status
		changed, err = tenant.RefreshStatus(today)
		if err != nil || !changed {
			return err
		}
		if err := repos.Tenants().SaveWithLock(ctx, tenant); err != nil {
			return err
		}
		if err := repos.History().AppendTenant(ctx, rental.StatusChangedHistory(tenant, previous, false, today)); err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}
		events = tenant.PullDomainEvents()
		return nil
	})
	if err != nil {
		return false, err
	}

	publishEvents(ctx, s.events, s.logger, events)
	return changed, nil
}

// reverseOnTenant applies a reversal to an already locked tenant and records it.
func reverseOnTenant(ctx context.Context, repos TransactionalRepositories, tenant *rental.Tenant, amount decimal.Decimal, now time.Time) error {
	previousDue, previousStatus := tenant.AmountDue, tenant.Status
	if err := tenant.ReversePayment(amount, now); err != nil {
		return err
	}
	if err := repos.Tenants().SaveWithLock(ctx, tenant); err != nil {
		return err
	}
	return recordTenantChanges(ctx, repos.History(), tenant, previousDue, previousStatus, "payment reversed", false, now)
}

// recordTenantChanges appends history for a balance and/or status change.
func recordTenantChanges(
	ctx context.Context,
	history rental.HistoryRepository,
	tenant *rental.Tenant,
	previousDue decimal.Decimal,
	previousStatus rental.RentStatus,
	reason string,
	rollover bool,
	at time.Time,
) error {
	if !previousDue.Equal(tenant.AmountDue) {
		if err := history.AppendTenant(ctx, rental.BalanceChangedHistory(tenant, previousDue, reason, at)); err != nil {
			return fmt.Errorf("failed to record balance change: %w", err)
		}
	}
	if previousStatus != tenant.Status {
		if err := history.AppendTenant(ctx, rental.StatusChangedHistory(tenant, previousStatus, rollover, at)); err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}
	}
	return nil
}

// publishEvents publishes after commit. Failures are logged, never returned:
// the ledger change is already durable.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish ledger events",
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}

package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RolloverFailure describes a tenant whose rollover could not be completed
type RolloverFailure struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Error    string    `json:"error"`
}

// RolloverReport is the outcome of a rollover batch
type RolloverReport struct {
	AsOf     time.Time         `json:"as_of"`
	Total    int               `json:"total"`   // Paid tenants considered
	Count    int               `json:"count"`   // Tenants rolled over
	Skipped  int               `json:"skipped"` // No longer Paid when locked, or zero rent
	Failures []RolloverFailure `json:"failures"`
}

// RolloverService starts a new billing cycle for tenants who settled the
// previous one.
type RolloverService struct {
	tenants rental.TenantRepository
	txScope TransactionScope
	events  shared.EventPublisher
	logger  *zap.Logger
}

// NewRolloverService creates a new RolloverService. events may be nil.
func NewRolloverService(
	tenants rental.TenantRepository,
	txScope TransactionScope,
	events shared.EventPublisher,
	logger *zap.Logger,
) *RolloverService {
	return &RolloverService{
		tenants: tenants,
		txScope: txScope,
		events:  events,
		logger:  logger,
	}
}

// RolloverAll charges a full month again to every Paid tenant. Partial,
// Unpaid and Overdue tenants are left alone, so running it twice in the same
// period changes nothing the second time.
//
// Each tenant is rolled over in its own transaction; a failure is recorded in
// the report and the batch moves on. The error is non-nil only when the
// candidate tenants cannot be listed.
func (s *RolloverService) RolloverAll(ctx context.Context, asOf time.Time) (*RolloverReport, error) {
	s.logger.Info("Starting rent rollover", zap.Time("as_of", asOf))

	candidates, err := s.tenants.FindByStatuses(ctx, rental.RentStatusPaid)
	if err != nil {
		s.logger.Error("Failed to list paid tenants", zap.Error(err))
		return nil, err
	}

	report := &RolloverReport{
		AsOf:     asOf,
		Total:    len(candidates),
		Failures: make([]RolloverFailure, 0),
	}

	for _, candidate := range candidates {
		rolled, err := s.rolloverTenant(ctx, candidate.ID, asOf)
		switch {
		case err != nil:
			report.Failures = append(report.Failures, RolloverFailure{
				TenantID: candidate.ID,
				Error:    err.Error(),
			})
			s.logger.Warn("Failed to roll over tenant",
				zap.String("tenant_id", candidate.ID.String()),
				zap.Error(err))
		case rolled:
			report.Count++
		default:
			report.Skipped++
		}
	}

	s.logger.Info("Rent rollover completed",
		zap.Int("total", report.Total),
		zap.Int("rolled_over", report.Count),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", len(report.Failures)))

	return report, nil
}

// rolloverTenant locks one tenant and rolls it over if it is still Paid.
func (s *RolloverService) rolloverTenant(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (bool, error) {
	var (
		rolled bool
		events []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		tenant, err := repos.Tenants().FindByIDForUpdate(ctx, tenantID)
		if err != nil {
			return err
		}

		previousDue, previousStatus := tenant.AmountDue, tenant.Status
		if rolled = tenant.Rollover(asOf); !rolled {
			return nil
		}
		if err := repos.Tenants().SaveWithLock(ctx, tenant); err != nil {
			return err
		}
		if err := recordTenantChanges(ctx, repos.History(), tenant, previousDue, previousStatus, "new billing cycle", true, asOf); err != nil {
			return err
		}
		events = tenant.PullDomainEvents()
		return nil
	})
	if err != nil {
		return false, err
	}

	publishEvents(ctx, s.events, s.logger, events)
	return rolled, nil
}

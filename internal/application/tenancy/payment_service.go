package tenancy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/ledger"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceLedger moves tenant balances
type BalanceLedger interface {
	Apply(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) (*ledger.BalanceChange, error)
	ReversePayment(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) (*rental.Tenant, error)
}

// PaymentService records payments. Recording is two explicit steps: the
// ledger applies the amount to the tenant's balance, then the payment row
// and its history entry are written. If the second step fails the first is
// compensated with a reversal.
type PaymentService struct {
	tenants     rental.TenantRepository
	payments    rental.PaymentRepository
	history     rental.HistoryRepository
	ledger      BalanceLedger
	txScope     ledger.TransactionScope
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	events      shared.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// PaymentServiceOption configures a PaymentService
type PaymentServiceOption func(*PaymentService)

// WithIdempotencyStore enables Idempotency-Key handling
func WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) PaymentServiceOption {
	return func(s *PaymentService) {
		s.idempotency = store
		if cfg.TTL > 0 {
			s.idemConfig = cfg
		}
	}
}

// WithEventPublisher publishes PaymentRecorded events after each payment
func WithEventPublisher(events shared.EventPublisher) PaymentServiceOption {
	return func(s *PaymentService) {
		s.events = events
	}
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	tenants rental.TenantRepository,
	payments rental.PaymentRepository,
	history rental.HistoryRepository,
	balances BalanceLedger,
	txScope ledger.TransactionScope,
	logger *zap.Logger,
	opts ...PaymentServiceOption,
) *PaymentService {
	s := &PaymentService{
		tenants:    tenants,
		payments:   payments,
		history:    history,
		ledger:     balances,
		txScope:    txScope,
		idemConfig: shared.DefaultIdempotencyConfig(),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordPayment records a payment for a tenant. Only payments with status
// Paid reduce the balance; Pending payments are recorded as-is. The type
// defaults to Full when the amount settles the balance and Partial otherwise.
// A repeated Idempotency-Key yields shared.ErrDuplicateRequest.
func (s *PaymentService) RecordPayment(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (result *PaymentResultResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "payment amount must be positive")
	}
	status := rental.PaymentStatusPaid
	if req.Status != "" {
		if status, err = rental.ParsePaymentStatus(req.Status); err != nil {
			return nil, err
		}
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		key := paymentKey(tenantID, req.IdempotencyKey)
		isNew, markErr := s.idempotency.MarkProcessed(ctx, key, s.idemConfig.TTL)
		if markErr != nil {
			s.logger.Warn("Idempotency check failed, recording payment anyway",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(markErr))
		} else if !isNew {
			return nil, shared.ErrDuplicateRequest
		} else {
			defer func() {
				if err != nil {
					s.release(ctx, key)
				}
			}()
		}
	}

	paymentType := rental.PaymentType("")
	if req.Type != "" {
		if paymentType, err = rental.ParsePaymentType(req.Type); err != nil {
			return nil, err
		}
	}

	payment, err := rental.NewPayment(tenantID, req.Amount, paymentType, status, req.Notes, s.now())
	if err != nil {
		return nil, err
	}

	// Step 1: balance. The type is classified against the balance the
	// ledger saw, and only what the ledger actually took is ever reversed.
	var (
		tenant  *rental.Tenant
		applied = decimal.Zero
	)
	if payment.CountsTowardBalance() {
		change, err := s.ledger.Apply(ctx, tenantID, payment.Amount)
		if err != nil {
			return nil, err
		}
		tenant, applied = change.Tenant, change.Applied()
		if req.Type == "" {
			payment.Type = rental.ClassifyPayment(payment.Amount, change.PreviousDue)
		}
	} else {
		if tenant, err = s.tenants.FindByID(ctx, tenantID); err != nil {
			return nil, err
		}
		if req.Type == "" {
			payment.Type = rental.ClassifyPayment(payment.Amount, tenant.AmountDue)
		}
	}

	// Step 2: payment row and its history
	err = s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}
		if err := repos.History().AppendPayment(ctx, rental.PaymentCreatedHistory(payment, tenant)); err != nil {
			return fmt.Errorf("failed to record payment creation: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to write payment after applying it",
			zap.String("tenant_id", tenantID.String()),
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
		if applied.IsPositive() {
			s.compensate(ctx, tenantID, applied)
		}
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, payment.ID.String(),
		telemetry.SpanAttrStatus, string(tenant.Status))
	s.logger.Info("Payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("type", string(payment.Type)),
		zap.String("status", string(payment.Status)))

	if s.events != nil {
		if err := s.events.Publish(ctx, rental.NewPaymentRecordedEvent(payment)); err != nil {
			s.logger.Warn("Failed to publish payment recorded event", zap.Error(err))
		}
	}

	return &PaymentResultResponse{
		Payment: ToPaymentResponse(payment),
		Tenant:  ToTenantResponse(tenant, s.now()),
	}, nil
}

// MarkRentPaid records a Full payment of whatever the tenant currently owes
func (s *PaymentService) MarkRentPaid(ctx context.Context, tenantID uuid.UUID, idempotencyKey string) (*PaymentResultResponse, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.AmountDue.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "tenant has no outstanding balance")
	}
	return s.RecordPayment(ctx, tenantID, RecordPaymentRequest{
		Amount:         tenant.AmountDue,
		Type:           string(rental.PaymentTypeFull),
		Status:         string(rental.PaymentStatusPaid),
		Notes:          "Marked as paid",
		IdempotencyKey: idempotencyKey,
	})
}

// Get returns one payment
func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// List returns a page of payments matching the filter
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) (shared.Paginated[PaymentResponse], error) {
	domainFilter := rental.PaymentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(),
		TenantID: filter.TenantID,
		From:     filter.From,
		To:       filter.To,
	}
	if filter.Status != "" {
		status, err := rental.ParsePaymentStatus(filter.Status)
		if err != nil {
			return shared.Paginated[PaymentResponse]{}, err
		}
		domainFilter.Status = &status
	}
	if filter.Type != "" {
		paymentType, err := rental.ParsePaymentType(filter.Type)
		if err != nil {
			return shared.Paginated[PaymentResponse]{}, err
		}
		domainFilter.Type = &paymentType
	}

	payments, err := s.payments.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}
	total, err := s.payments.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}
	return shared.NewPaginated(ToPaymentResponses(payments), total, domainFilter.Page, domainFilter.PageSize), nil
}

// compensate undoes step 1 when step 2 failed
func (s *PaymentService) compensate(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) {
	if _, err := s.ledger.ReversePayment(ctx, tenantID, amount); err != nil {
		s.logger.Error("Failed to reverse balance after payment write failure; tenant balance needs manual review",
			zap.String("tenant_id", tenantID.String()),
			zap.String("amount", amount.String()),
			zap.Error(err))
	}
}

func (s *PaymentService) release(ctx context.Context, key string) {
	if err := s.idempotency.Release(ctx, key); err != nil {
		s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func paymentKey(tenantID uuid.UUID, key string) string {
	return "payment:" + tenantID.String() + ":" + key
}

// History returns a payment's audit trail, including entries written after
// the payment was deleted.
func (s *PaymentService) History(ctx context.Context, paymentID uuid.UUID) ([]PaymentHistoryResponse, error) {
	entries, err := s.history.FindByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentHistoryResponse, len(entries))
	for i, h := range entries {
		out[i] = PaymentHistoryResponse{
			ID:          h.ID,
			PaymentID:   h.PaymentID,
			TenantID:    h.TenantID,
			Action:      string(h.Action),
			Description: h.Description,
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			ChangedBy:   h.ChangedBy,
			ChangedAt:   h.ChangedAt,
		}
	}
	return out, nil
}

package notification

import (
	"context"
	"fmt"

	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PaymentConfirmer sends payment confirmations
type PaymentConfirmer interface {
	Confirm(ctx context.Context, c PaymentConfirmation) DeliveryResult
}

// PaymentConfirmationHandler texts a tenant after a payment reduced their
// balance. It runs on the event bus, after the ledger transaction committed.
type PaymentConfirmationHandler struct {
	confirmer PaymentConfirmer
	logger    *zap.Logger
}

// NewPaymentConfirmationHandler creates a new PaymentConfirmationHandler
func NewPaymentConfirmationHandler(confirmer PaymentConfirmer, logger *zap.Logger) *PaymentConfirmationHandler {
	return &PaymentConfirmationHandler{
		confirmer: confirmer,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentConfirmationHandler) EventTypes() []string {
	return []string{rental.EventTypeRentPaymentApplied}
}

// Handle sends the confirmation. A failed delivery is already logged by the
// confirmer and does not fail the handler.
func (h *PaymentConfirmationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	applied, ok := event.(*rental.RentPaymentAppliedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", rental.EventTypeRentPaymentApplied),
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			rental.EventTypeRentPaymentApplied, event.EventType())
	}

	result := h.confirmer.Confirm(ctx, PaymentConfirmation{
		TenantID:   applied.TenantID,
		Name:       applied.Name,
		Phone:      applied.Phone,
		UnitNumber: applied.UnitNumber,
		Amount:     applied.Amount,
		Remaining:  applied.AmountDue,
	})
	h.logger.Debug("Payment confirmation handled",
		zap.String("tenant_id", applied.TenantID.String()),
		zap.String("event_id", applied.EventID().String()),
		zap.Bool("delivered", result.OK))
	return nil
}

var _ shared.EventHandler = (*PaymentConfirmationHandler)(nil)

package rental

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentType describes how a payment relates to the rent owed
type PaymentType string

const (
	PaymentTypeFull    PaymentType = "Full"
	PaymentTypePartial PaymentType = "Partial"
	PaymentTypeAdvance PaymentType = "Advance"
)

// IsValid checks if the payment type is a known value
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeFull, PaymentTypePartial, PaymentTypeAdvance:
		return true
	}
	return false
}

// ParsePaymentType parses a payment type case-insensitively
func ParsePaymentType(value string) (PaymentType, error) {
	for _, t := range []PaymentType{PaymentTypeFull, PaymentTypePartial, PaymentTypeAdvance} {
		if strings.EqualFold(string(t), strings.TrimSpace(value)) {
			return t, nil
		}
	}
	return "", shared.NewDomainError(shared.CodeInvalidArgument, fmt.Sprintf("unknown payment type %q", value))
}

// PaymentStatus says whether the money has actually been received
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
)

// IsValid checks if the payment status is a known value
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPaid || s == PaymentStatusPending
}

// ParsePaymentStatus parses a payment status case-insensitively
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, s := range []PaymentStatus{PaymentStatusPaid, PaymentStatusPending} {
		if strings.EqualFold(string(s), strings.TrimSpace(value)) {
			return s, nil
		}
	}
	return "", shared.NewDomainError(shared.CodeInvalidArgument, fmt.Sprintf("unknown payment status %q", value))
}

// Payment is a ledger entry owned by exactly one tenant. PaidAt is fixed at
// creation. Payments are only ever removed through the archive path.
type Payment struct {
	shared.BaseEntity
	TenantID uuid.UUID
	Amount   decimal.Decimal
	Type     PaymentType
	Status   PaymentStatus
	PaidAt   time.Time
	Notes    string
}

// NewPayment creates a payment record for a tenant
func NewPayment(tenantID uuid.UUID, amount decimal.Decimal, paymentType PaymentType, status PaymentStatus, notes string, now time.Time) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "payment must belong to a tenant")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "payment amount must be positive")
	}
	if paymentType == "" {
		paymentType = PaymentTypeFull
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, fmt.Sprintf("invalid payment type %q", paymentType))
	}
	if status == "" {
		status = PaymentStatusPaid
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, fmt.Sprintf("invalid payment status %q", status))
	}

	return &Payment{
		BaseEntity: shared.NewBaseEntityAt(now),
		TenantID:   tenantID,
		Amount:     amount.Round(2),
		Type:       paymentType,
		Status:     status,
		PaidAt:     now,
		Notes:      strings.TrimSpace(notes),
	}, nil
}

// CountsTowardBalance reports whether the payment reduced the tenant's balance
func (p *Payment) CountsTowardBalance() bool {
	return p.Status == PaymentStatusPaid
}

// ClassifyPayment picks Full when amount settles the outstanding balance and
// Partial otherwise.
func ClassifyPayment(amount, amountDue decimal.Decimal) PaymentType {
	if amount.GreaterThanOrEqual(amountDue) {
		return PaymentTypeFull
	}
	return PaymentTypePartial
}

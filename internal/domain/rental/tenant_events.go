package rental

import (
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeTenantCreated       = "TenantCreated"
	EventTypeRentPaymentApplied  = "RentPaymentApplied"
	EventTypeRentPaymentReversed = "RentPaymentReversed"
	EventTypeRentStatusChanged   = "RentStatusChanged"
	EventTypeRentRolledOver      = "RentRolledOver"
	EventTypeTenantArchived      = "TenantArchived"
	EventTypePaymentArchived     = "PaymentArchived"
	EventTypePaymentRecorded     = "PaymentRecorded"
)

// TenantCreatedEvent is raised when a tenant moves in
type TenantCreatedEvent struct {
	shared.BaseDomainEvent
	TenantID   uuid.UUID       `json:"tenant_id"`
	Name       string          `json:"name"`
	UnitNumber string          `json:"unit_number"`
	RentAmount decimal.Decimal `json:"rent_amount"`
	DueDay     int             `json:"due_day"`
}

// NewTenantCreatedEvent creates a new TenantCreatedEvent
func NewTenantCreatedEvent(t *Tenant) *TenantCreatedEvent {
	return &TenantCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantCreated, AggregateTypeTenant, t.ID),
		TenantID:        t.ID,
		Name:            t.Name,
		UnitNumber:      t.UnitNumber,
		RentAmount:      t.RentAmount,
		DueDay:          t.DueDay,
	}
}

// RentPaymentAppliedEvent is raised after a payment reduced a tenant's balance.
// It carries the contact details needed to confirm the payment to the tenant.
type RentPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	TenantID    uuid.UUID       `json:"tenant_id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	UnitNumber  string          `json:"unit_number"`
	Amount      decimal.Decimal `json:"amount"`
	PreviousDue decimal.Decimal `json:"previous_due"`
	AmountDue   decimal.Decimal `json:"amount_due"`
	Status      RentStatus      `json:"status"`
}

// NewRentPaymentAppliedEvent creates a new RentPaymentAppliedEvent
func NewRentPaymentAppliedEvent(t *Tenant, amount, previousDue decimal.Decimal) *RentPaymentAppliedEvent {
	return &RentPaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRentPaymentApplied, AggregateTypeTenant, t.ID),
		TenantID:        t.ID,
		Name:            t.Name,
		Phone:           t.Phone,
		UnitNumber:      t.UnitNumber,
		Amount:          amount,
		PreviousDue:     previousDue,
		AmountDue:       t.AmountDue,
		Status:          t.Status,
	}
}

// RentPaymentReversedEvent is raised when a deleted payment is added back to the balance
type RentPaymentReversedEvent struct {
	shared.BaseDomainEvent
	TenantID    uuid.UUID       `json:"tenant_id"`
	Amount      decimal.Decimal `json:"amount"`
	PreviousDue decimal.Decimal `json:"previous_due"`
	AmountDue   decimal.Decimal `json:"amount_due"`
	Status      RentStatus      `json:"status"`
}

// NewRentPaymentReversedEvent creates a new RentPaymentReversedEvent
func NewRentPaymentReversedEvent(t *Tenant, amount, previousDue decimal.Decimal) *RentPaymentReversedEvent {
	return &RentPaymentReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRentPaymentReversed, AggregateTypeTenant, t.ID),
		TenantID:        t.ID,
		Amount:          amount,
		PreviousDue:     previousDue,
		AmountDue:       t.AmountDue,
		Status:          t.Status,
	}
}

// RentStatusChangedEvent is raised whenever the derived status moves
type RentStatusChangedEvent struct {
	shared.BaseDomainEvent
	TenantID  uuid.UUID       `json:"tenant_id"`
	From      RentStatus      `json:"from"`
	To        RentStatus      `json:"to"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

// NewRentStatusChangedEvent creates a new RentStatusChangedEvent
func NewRentStatusChangedEvent(t *Tenant, from RentStatus) *RentStatusChangedEvent {
	return &RentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRentStatusChanged, AggregateTypeTenant, t.ID),
		TenantID:        t.ID,
		From:            from,
		To:              t.Status,
		AmountDue:       t.AmountDue,
	}
}

// RentRolledOverEvent is raised when a paid tenant starts a new billing cycle
type RentRolledOverEvent struct {
	shared.BaseDomainEvent
	TenantID   uuid.UUID       `json:"tenant_id"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	CycleStart string          `json:"cycle_start"`
}

// NewRentRolledOverEvent creates a new RentRolledOverEvent
func NewRentRolledOverEvent(t *Tenant) *RentRolledOverEvent {
	return &RentRolledOverEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRentRolledOver, AggregateTypeTenant, t.ID),
		TenantID:        t.ID,
		AmountDue:       t.AmountDue,
		CycleStart:      t.CycleStart.Format("2006-01-02"),
	}
}

// PaymentRecordedEvent is raised when a payment row is written
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Amount    decimal.Decimal `json:"amount"`
	Type      PaymentType     `json:"type"`
	Status    PaymentStatus   `json:"status"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeTenant, p.TenantID),
		PaymentID:       p.ID,
		TenantID:        p.TenantID,
		Amount:          p.Amount,
		Type:            p.Type,
		Status:          p.Status,
	}
}

package rental

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantAction tags a tenant history entry
type TenantAction string

const (
	TenantActionCreated        TenantAction = "created"
	TenantActionUpdated        TenantAction = "updated"
	TenantActionDeleted        TenantAction = "deleted"
	TenantActionRentPaid       TenantAction = "rent_paid"
	TenantActionRentUnpaid     TenantAction = "rent_unpaid"
	TenantActionStatusChanged  TenantAction = "status_changed"
	TenantActionAmountChanged  TenantAction = "amount_changed"
	TenantActionDueDateChanged TenantAction = "due_date_changed"
)

// PaymentAction tags a payment history entry
type PaymentAction string

const (
	PaymentActionCreated       PaymentAction = "created"
	PaymentActionUpdated       PaymentAction = "updated"
	PaymentActionDeleted       PaymentAction = "deleted"
	PaymentActionStatusChanged PaymentAction = "status_changed"
	PaymentActionAmountChanged PaymentAction = "amount_changed"
)

// TenantHistory is an append-only audit entry about a tenant. TenantID is a
// plain reference so the entry outlives the tenant.
type TenantHistory struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	TenantName  string
	UnitNumber  string
	Action      TenantAction
	Description string
	OldValue    string
	NewValue    string
	ChangedBy   string
	ChangedAt   time.Time
}

// NewTenantHistory creates an entry attributed to the system
func NewTenantHistory(t *Tenant, action TenantAction, description string, at time.Time) *TenantHistory {
	return &TenantHistory{
		ID:          uuid.New(),
		TenantID:    t.ID,
		TenantName:  t.Name,
		UnitNumber:  t.UnitNumber,
		Action:      action,
		Description: description,
		ChangedBy:   SystemActor,
		ChangedAt:   at,
	}
}

// WithChange records the old and new values
func (h *TenantHistory) WithChange(oldValue, newValue string) *TenantHistory {
	h.OldValue = oldValue
	h.NewValue = newValue
	return h
}

// By attributes the entry to actor; blank keeps the system actor
func (h *TenantHistory) By(actor string) *TenantHistory {
	if actor != "" {
		h.ChangedBy = actor
	}
	return h
}

// PaymentHistory is an append-only audit entry about a payment
type PaymentHistory struct {
	ID            uuid.UUID
	PaymentID     uuid.UUID
	TenantID      uuid.UUID
	TenantName    string
	UnitNumber    string
	PaymentAmount decimal.Decimal
	Action        PaymentAction
	Description   string
	OldValue      string
	NewValue      string
	ChangedBy     string
	ChangedAt     time.Time
}

// NewPaymentHistory creates an entry attributed to the system
func NewPaymentHistory(p *Payment, owner *Tenant, action PaymentAction, description string, at time.Time) *PaymentHistory {
	return &PaymentHistory{
		ID:            uuid.New(),
		PaymentID:     p.ID,
		TenantID:      p.TenantID,
		TenantName:    owner.Name,
		UnitNumber:    owner.UnitNumber,
		PaymentAmount: p.Amount,
		Action:        action,
		Description:   description,
		ChangedBy:     SystemActor,
		ChangedAt:     at,
	}
}

// By attributes the entry to actor; blank keeps the system actor
func (h *PaymentHistory) By(actor string) *PaymentHistory {
	if actor != "" {
		h.ChangedBy = actor
	}
	return h
}

// WithChange records the old and new values
func (h *PaymentHistory) WithChange(oldValue, newValue string) *PaymentHistory {
	h.OldValue = oldValue
	h.NewValue = newValue
	return h
}

// Descriptions used in history entries.

func describeTenantCreated(t *Tenant) string {
	return fmt.Sprintf("Tenant %s was added to apartment %s with rent of %s", t.Name, t.UnitNumber, FormatAmount(t.RentAmount))
}

func describeTenantDeleted(t *Tenant) string {
	return fmt.Sprintf("Tenant %s was deleted from apartment %s", t.Name, t.UnitNumber)
}

func describePaymentCreated(p *Payment, owner *Tenant) string {
	return fmt.Sprintf("Payment of %s was recorded for %s", FormatAmount(p.Amount), owner.Name)
}

func describePaymentDeleted(p *Payment, owner *Tenant) string {
	return fmt.Sprintf("Payment of %s was deleted for %s", FormatAmount(p.Amount), owner.Name)
}

// TenantCreatedHistory records a new tenant
func TenantCreatedHistory(t *Tenant) *TenantHistory {
	return NewTenantHistory(t, TenantActionCreated, describeTenantCreated(t), t.CreatedAt).
		WithChange("", t.AmountDue.StringFixed(2))
}

// TenantDeletedHistory records the deletion of a tenant
func TenantDeletedHistory(t *Tenant, meta ArchiveMetadata) *TenantHistory {
	return NewTenantHistory(t, TenantActionDeleted, describeTenantDeleted(t), meta.At).
		WithChange(string(t.Status), "").
		By(meta.Actor)
}

// BalanceChangedHistory records a change of amount due
func BalanceChangedHistory(t *Tenant, previousDue decimal.Decimal, reason string, at time.Time) *TenantHistory {
	description := fmt.Sprintf("Amount due for %s changed from %s to %s (%s)",
		t.Name, FormatAmount(previousDue), FormatAmount(t.AmountDue), reason)
	return NewTenantHistory(t, TenantActionAmountChanged, description, at).
		WithChange(previousDue.StringFixed(2), t.AmountDue.StringFixed(2))
}

// StatusChangedHistory records a status transition. Reaching Paid is tagged
// rent_paid and a rollover back to Unpaid is tagged rent_unpaid.
func StatusChangedHistory(t *Tenant, from RentStatus, rollover bool, at time.Time) *TenantHistory {
	action := TenantActionStatusChanged
	switch {
	case t.Status == RentStatusPaid:
		action = TenantActionRentPaid
	case rollover:
		action = TenantActionRentUnpaid
	}
	description := fmt.Sprintf("Rent status for %s changed from %s to %s", t.Name, from, t.Status)
	return NewTenantHistory(t, action, description, at).WithChange(string(from), string(t.Status))
}

// PaymentCreatedHistory records a new payment
func PaymentCreatedHistory(p *Payment, owner *Tenant) *PaymentHistory {
	return NewPaymentHistory(p, owner, PaymentActionCreated, describePaymentCreated(p, owner), p.CreatedAt).
		WithChange("", p.Amount.StringFixed(2))
}

// PaymentDeletedHistory records the deletion of a payment
func PaymentDeletedHistory(p *Payment, owner *Tenant, meta ArchiveMetadata) *PaymentHistory {
	return NewPaymentHistory(p, owner, PaymentActionDeleted, describePaymentDeleted(p, owner), meta.At).
		WithChange(p.Amount.StringFixed(2), "").
		By(meta.Actor)
}

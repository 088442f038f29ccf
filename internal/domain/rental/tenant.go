package rental

import (
	"fmt"
	"strings"
	"time"

	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeTenant is the aggregate type name used in events
const AggregateTypeTenant = "Tenant"

// Tenant is the aggregate root for a billable occupant of a rental unit.
//
// AmountDue stays within [0, RentAmount] under normal operation. Status is a
// cache of DeriveStatus and is recomputed by every method that touches the
// balance or the billing cycle.
type Tenant struct {
	shared.BaseAggregateRoot
	Name          string
	Phone         string
	UnitNumber    string
	RentAmount    decimal.Decimal
	DueDay        int
	AmountDue     decimal.Decimal
	Status        RentStatus
	LastPaymentAt *time.Time
	// CycleStart is the date the open billing cycle began: creation, then each rollover.
	CycleStart time.Time
}

// NewTenant creates a tenant owing a full month of rent
func NewTenant(name, phone, unitNumber string, rentAmount decimal.Decimal, dueDay int, now time.Time) (*Tenant, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	unitNumber = strings.TrimSpace(unitNumber)

	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "tenant name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "tenant name cannot exceed 100 characters")
	}
	if phone == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "phone number cannot be empty")
	}
	if unitNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "apartment number cannot be empty")
	}
	if rentAmount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "rent amount cannot be negative")
	}
	if err := ValidateDueDay(dueDay); err != nil {
		return nil, err
	}

	t := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRootAt(now),
		Name:              name,
		Phone:             phone,
		UnitNumber:        unitNumber,
		RentAmount:        rentAmount.Round(2),
		DueDay:            dueDay,
		AmountDue:         rentAmount.Round(2),
		CycleStart:        DateOf(now),
	}
	if _, err := t.RecomputeStatus(now); err != nil {
		return nil, err
	}

	t.AddDomainEvent(NewTenantCreatedEvent(t))
	return t, nil
}

// CurrentDueDate returns the due date of the open billing cycle
func (t *Tenant) CurrentDueDate() (time.Time, error) {
	return NextDueDate(t.DueDay, t.CycleStart)
}

// UpcomingDueDate returns the next due date as seen from asOf
func (t *Tenant) UpcomingDueDate(asOf time.Time) (time.Time, error) {
	return NextDueDate(t.DueDay, asOf)
}

// IsOverdue reports whether the open cycle's due date has passed with money owed
func (t *Tenant) IsOverdue(today time.Time) bool {
	if t.Status == RentStatusPaid {
		return false
	}
	due, err := t.CurrentDueDate()
	if err != nil {
		return false
	}
	return calendarKey(today) > calendarKey(due)
}

// DaysOverdue returns how many days past the open cycle's due date today is, or 0
func (t *Tenant) DaysOverdue(today time.Time) int {
	if !t.IsOverdue(today) {
		return 0
	}
	due, _ := t.CurrentDueDate()
	return DaysBetween(due, today)
}

// RecomputeStatus re-derives Status from the balance and the open cycle's
// due date. It returns the previous status.
func (t *Tenant) RecomputeStatus(today time.Time) (RentStatus, error) {
	due, err := t.CurrentDueDate()
	if err != nil {
		return t.Status, err
	}
	previous := t.Status
	t.Status = DeriveStatus(t.AmountDue, t.RentAmount, due, today, t.Status)
	return previous, nil
}

// RefreshStatus re-derives the status without touching the balance and
// reports whether it changed.
func (t *Tenant) RefreshStatus(today time.Time) (bool, error) {
	previous, err := t.RecomputeStatus(today)
	if err != nil {
		return false, err
	}
	if previous == t.Status {
		return false, nil
	}
	t.Touch(today)
	t.IncrementVersion()
	t.AddDomainEvent(NewRentStatusChangedEvent(t, previous))
	return true, nil
}

// ApplyPayment reduces the outstanding balance by amount, never below zero
func (t *Tenant) ApplyPayment(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "payment amount must be positive")
	}

	previousDue := t.AmountDue
	t.AmountDue = decimal.Max(decimal.Zero, t.AmountDue.Sub(amount))
	paidAt := now
	t.LastPaymentAt = &paidAt

	previous, err := t.RecomputeStatus(now)
	if err != nil {
		t.AmountDue = previousDue
		return err
	}

	t.Touch(now)
	t.IncrementVersion()

	t.AddDomainEvent(NewRentPaymentAppliedEvent(t, amount, previousDue))
	if previous != t.Status {
		t.AddDomainEvent(NewRentStatusChangedEvent(t, previous))
	}
	return nil
}

// ReversePayment undoes a payment by adding amount back to the balance.
// The balance may end above RentAmount when payments are removed out of order.
func (t *Tenant) ReversePayment(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "reversal amount must be positive")
	}

	previousDue := t.AmountDue
	t.AmountDue = t.AmountDue.Add(amount)

	previous, err := t.RecomputeStatus(now)
	if err != nil {
		t.AmountDue = previousDue
		return err
	}

	t.Touch(now)
	t.IncrementVersion()

	t.AddDomainEvent(NewRentPaymentReversedEvent(t, amount, previousDue))
	if previous != t.Status {
		t.AddDomainEvent(NewRentStatusChangedEvent(t, previous))
	}
	return nil
}

// Rollover opens a new billing cycle for a fully paid tenant, charging a full
// month again. Tenants in any other status, and tenants with no rent to
// charge, are left alone and false is returned.
func (t *Tenant) Rollover(asOf time.Time) bool {
	if t.Status != RentStatusPaid || !t.RentAmount.IsPositive() {
		return false
	}

	previous := t.Status
	t.AmountDue = t.RentAmount
	t.Status = RentStatusUnpaid
	t.CycleStart = DateOf(asOf)
	t.Touch(asOf)
	t.IncrementVersion()

	t.AddDomainEvent(NewRentRolledOverEvent(t))
	t.AddDomainEvent(NewRentStatusChangedEvent(t, previous))
	return true
}

// UpdateContact changes the descriptive fields that carry no balance semantics
func (t *Tenant) UpdateContact(name, phone, unitNumber string, now time.Time) error {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	unitNumber = strings.TrimSpace(unitNumber)
	if name == "" || phone == "" || unitNumber == "" {
		return shared.NewDomainError(shared.CodeInvalidArgument, "name, phone and apartment number are required")
	}
	if len(name) > 100 {
		return shared.NewDomainError(shared.CodeInvalidArgument, "tenant name cannot exceed 100 characters")
	}
	t.Name = name
	t.Phone = phone
	t.UnitNumber = unitNumber
	t.Touch(now)
	t.IncrementVersion()
	return nil
}

// ChangeRent sets a new monthly rent. The outstanding balance is left as is;
// only the status is re-derived against the new rent.
func (t *Tenant) ChangeRent(rentAmount decimal.Decimal, now time.Time) error {
	if rentAmount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidArgument, "rent amount cannot be negative")
	}
	t.RentAmount = rentAmount.Round(2)
	previous, err := t.RecomputeStatus(now)
	if err != nil {
		return err
	}
	t.Touch(now)
	t.IncrementVersion()
	if previous != t.Status {
		t.AddDomainEvent(NewRentStatusChangedEvent(t, previous))
	}
	return nil
}

// ChangeDueDay moves the day-of-month rent is due
func (t *Tenant) ChangeDueDay(dueDay int, now time.Time) error {
	if err := ValidateDueDay(dueDay); err != nil {
		return err
	}
	t.DueDay = dueDay
	previous, err := t.RecomputeStatus(now)
	if err != nil {
		return err
	}
	t.Touch(now)
	t.IncrementVersion()
	if previous != t.Status {
		t.AddDomainEvent(NewRentStatusChangedEvent(t, previous))
	}
	return nil
}

// Clone returns a detached copy without pending events, suitable for
// handing to callers as a snapshot.
func (t *Tenant) Clone() *Tenant {
	c := *t
	c.ClearDomainEvents()
	if t.LastPaymentAt != nil {
		at := *t.LastPaymentAt
		c.LastPaymentAt = &at
	}
	return &c
}

// String is used in log lines and history descriptions
func (t *Tenant) String() string {
	return fmt.Sprintf("%s (apartment %s)", t.Name, t.UnitNumber)
}

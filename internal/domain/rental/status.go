package rental

import (
	"fmt"
	"strings"
	"time"

	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RentStatus is where a tenant stands in the current billing cycle
type RentStatus string

const (
	RentStatusPaid    RentStatus = "Paid"
	RentStatusUnpaid  RentStatus = "Unpaid"
	RentStatusPartial RentStatus = "Partial"
	RentStatusOverdue RentStatus = "Overdue"
)

// AllRentStatuses returns every status in display order
func AllRentStatuses() []RentStatus {
	return []RentStatus{
		RentStatusPaid,
		RentStatusUnpaid,
		RentStatusPartial,
		RentStatusOverdue,
	}
}

// IsValid checks if the status is a known value
func (s RentStatus) IsValid() bool {
	switch s {
	case RentStatusPaid, RentStatusUnpaid, RentStatusPartial, RentStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation
func (s RentStatus) String() string {
	return string(s)
}

// Outstanding reports whether the tenant still owes money in this status
func (s RentStatus) Outstanding() bool {
	return s == RentStatusUnpaid || s == RentStatusPartial || s == RentStatusOverdue
}

// ParseRentStatus parses a status case-insensitively
func ParseRentStatus(value string) (RentStatus, error) {
	for _, s := range AllRentStatuses() {
		if strings.EqualFold(string(s), strings.TrimSpace(value)) {
			return s, nil
		}
	}
	return "", shared.NewDomainError(shared.CodeInvalidArgument, fmt.Sprintf("unknown rent status %q", value))
}

// DeriveStatus computes a tenant's status from its balance and due date.
//
// Rules, in order: nothing owed is Paid; owing the full rent or more is
// Unpaid; anything in between is Partial. A non-Paid result becomes Overdue
// once today is past nextDueDate. Only calendar dates are compared.
//
// current is accepted so callers can pass the stored value, but it never
// affects the result: the same balance and dates always give the same status.
func DeriveStatus(amountDue, rentAmount decimal.Decimal, nextDueDate, today time.Time, current RentStatus) RentStatus {
	var status RentStatus
	switch {
	case amountDue.LessThanOrEqual(decimal.Zero):
		return RentStatusPaid
	case amountDue.GreaterThanOrEqual(rentAmount):
		status = RentStatusUnpaid
	default:
		status = RentStatusPartial
	}

	if calendarKey(today) > calendarKey(nextDueDate) {
		return RentStatusOverdue
	}
	return status
}

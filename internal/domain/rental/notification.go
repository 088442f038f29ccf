package rental

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notifier delivers a text message to a phone number. ok=false with a detail
// is a delivery failure reported by the provider; err is reserved for the
// notifier being unable to attempt delivery at all.
type Notifier interface {
	Notify(ctx context.Context, phone, message string) (ok bool, detail string, err error)
}

// MessageKind names the reason a message was sent
type MessageKind string

const (
	MessageKindRentReminder        MessageKind = "rent_reminder"
	MessageKindBalanceReminder     MessageKind = "payment_reminder"
	MessageKindPaymentConfirmation MessageKind = "payment_confirmation"
	MessageKindCustom              MessageKind = "custom"
)

// RentReminderMessage asks a tenant to pay the coming month's rent
func RentReminderMessage(t *Tenant) string {
	return fmt.Sprintf(
		"Hello %s, this is a friendly reminder that your rent for apartment %s (%s) is due on the %s. "+
			"Please make your payment as soon as possible. Thank you!",
		t.Name, t.UnitNumber, FormatAmount(t.RentAmount), ordinal(t.DueDay))
}

// BalanceReminderMessage asks a tenant to settle an outstanding balance
func BalanceReminderMessage(t *Tenant) string {
	return fmt.Sprintf(
		"Hello %s, you have an outstanding balance of %s for apartment %s. "+
			"Please make your payment as soon as possible. Thank you!",
		t.Name, FormatAmount(t.AmountDue), t.UnitNumber)
}

// PaymentConfirmationMessage thanks a tenant for a payment
func PaymentConfirmationMessage(name, unitNumber string, amount, remaining decimal.Decimal) string {
	msg := fmt.Sprintf("Hello %s, we have received your rent payment of %s for apartment %s.",
		name, FormatAmount(amount), unitNumber)
	if remaining.IsPositive() {
		return msg + fmt.Sprintf(" Your remaining balance is %s. Thank you!", FormatAmount(remaining))
	}
	return msg + " Thank you for your timely payment!"
}

// NormalizePhone converts a local number to international form using the
// given country calling code (digits only, e.g. "254").
//
//	0712345678    -> +254712345678
//	254712345678  -> +254712345678
//	712345678     -> +254712345678
//	+254712345678 -> +254712345678
func NormalizePhone(phone, countryCode string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
	countryCode = strings.TrimPrefix(countryCode, "+")

	switch {
	case cleaned == "":
		return ""
	case strings.HasPrefix(cleaned, "+"):
		return cleaned
	case strings.HasPrefix(cleaned, "0"):
		return "+" + countryCode + cleaned[1:]
	case countryCode != "" && strings.HasPrefix(cleaned, countryCode):
		return "+" + cleaned
	default:
		return "+" + countryCode + cleaned
	}
}

func ordinal(day int) string {
	suffix := "th"
	if day%100 < 11 || day%100 > 13 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", day, suffix)
}

// SMSOutcome is the result of one delivery attempt
type SMSOutcome string

const (
	SMSOutcomeSuccess SMSOutcome = "success"
	SMSOutcomeFailure SMSOutcome = "failure"
)

// SMSLog records one notification attempt, successful or not
type SMSLog struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Phone    string
	Kind     MessageKind
	Message  string
	Outcome  SMSOutcome
	Detail   string
	SentAt   time.Time
}

// NewSMSLog creates a log entry for an attempt
func NewSMSLog(tenantID uuid.UUID, phone string, kind MessageKind, message string, ok bool, detail string, at time.Time) *SMSLog {
	outcome := SMSOutcomeFailure
	if ok {
		outcome = SMSOutcomeSuccess
	}
	return &SMSLog{
		ID:       uuid.New(),
		TenantID: tenantID,
		Phone:    phone,
		Kind:     kind,
		Message:  message,
		Outcome:  outcome,
		Detail:   detail,
		SentAt:   at,
	}
}

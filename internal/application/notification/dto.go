package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
)

// DeliveryResult is the outcome of one message attempt
type DeliveryResult struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Phone    string    `json:"phone"`
	Kind     string    `json:"kind"`
	OK       bool      `json:"ok"`
	Detail   string    `json:"detail,omitempty"`
}

// BulkResult summarises a batch of reminders
type BulkResult struct {
	Attempted int              `json:"attempted"`
	Sent      int              `json:"sent"`
	Failed    int              `json:"failed"`
	Results   []DeliveryResult `json:"results"`
}

func (r *BulkResult) add(result DeliveryResult) {
	r.Attempted++
	if result.OK {
		r.Sent++
	} else {
		r.Failed++
	}
	r.Results = append(r.Results, result)
}

// PaymentConfirmation carries what a confirmation message needs
type PaymentConfirmation struct {
	TenantID   uuid.UUID
	Name       string
	Phone      string
	UnitNumber string
	Amount     decimal.Decimal
	Remaining  decimal.Decimal
}

// BulkReminderRequest selects tenants for a reminder batch
type BulkReminderRequest struct {
	Statuses []string `json:"statuses" binding:"omitempty,dive,oneof=Unpaid Partial Overdue"`
}

// CustomMessageRequest is free text for one tenant
type CustomMessageRequest struct {
	Message string `json:"message" binding:"required,max=480"`
}

// SMSLogResponse is one logged attempt
type SMSLogResponse struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Phone    string    `json:"phone"`
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	Outcome  string    `json:"outcome"`
	Detail   string    `json:"detail,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

// ToSMSLogResponse converts a domain SMS log
func ToSMSLogResponse(e rental.SMSLog) SMSLogResponse {
	return SMSLogResponse{
		ID:       e.ID,
		TenantID: e.TenantID,
		Phone:    e.Phone,
		Kind:     string(e.Kind),
		Message:  e.Message,
		Outcome:  string(e.Outcome),
		Detail:   e.Detail,
		SentAt:   e.SentAt,
	}
}

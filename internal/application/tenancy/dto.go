package tenancy

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Tenant DTOs
// =============================================================================

// CreateTenantRequest represents a request to add a tenant
type CreateTenantRequest struct {
	Name       string          `json:"name" binding:"required,min=1,max=100"`
	Phone      string          `json:"phone" binding:"required,min=1,max=20"`
	UnitNumber string          `json:"unit_number" binding:"required,min=1,max=20"`
	RentAmount decimal.Decimal `json:"rent_amount" binding:"gte=0"`
	DueDay     int             `json:"due_day" binding:"required,min=1,max=31"`
}

// UpdateTenantRequest represents a partial update; nil fields are left unchanged
type UpdateTenantRequest struct {
	Name       *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Phone      *string          `json:"phone" binding:"omitempty,min=1,max=20"`
	UnitNumber *string          `json:"unit_number" binding:"omitempty,min=1,max=20"`
	RentAmount *decimal.Decimal `json:"rent_amount" binding:"omitempty,gte=0"`
	DueDay     *int             `json:"due_day" binding:"omitempty,min=1,max=31"`
	Actor      string           `json:"-"`
}

// HasChanges reports whether the request touches any field
func (r UpdateTenantRequest) HasChanges() bool {
	return r.Name != nil || r.Phone != nil || r.UnitNumber != nil || r.RentAmount != nil || r.DueDay != nil
}

// TenantListFilter represents list query parameters
type TenantListFilter struct {
	Search   string   `form:"search"`
	Statuses []string `form:"status"`
	Page     int      `form:"page" binding:"omitempty,min=1"`
	PageSize int      `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string   `form:"order_by"`
	OrderDir string   `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	UnitNumber    string          `json:"unit_number"`
	RentAmount    decimal.Decimal `json:"rent_amount"`
	DueDay        int             `json:"due_day"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	Status        string          `json:"status"`
	LastPaymentAt *time.Time      `json:"last_payment_at,omitempty"`
	CycleStart    string          `json:"cycle_start"`
	CurrentDue    string          `json:"current_due_date"`
	DaysOverdue   int             `json:"days_overdue"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToTenantResponse converts a domain Tenant to a TenantResponse as seen on today
func ToTenantResponse(t *rental.Tenant, today time.Time) TenantResponse {
	resp := TenantResponse{
		ID:            t.ID,
		Name:          t.Name,
		Phone:         t.Phone,
		UnitNumber:    t.UnitNumber,
		RentAmount:    t.RentAmount,
		DueDay:        t.DueDay,
		AmountDue:     t.AmountDue,
		Status:        string(t.Status),
		LastPaymentAt: t.LastPaymentAt,
		CycleStart:    t.CycleStart.Format(dateLayout),
		DaysOverdue:   t.DaysOverdue(today),
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if due, err := t.CurrentDueDate(); err == nil {
		resp.CurrentDue = due.Format(dateLayout)
	}
	return resp
}

// NextDueDateResponse answers when rent is next due
type NextDueDateResponse struct {
	TenantID    uuid.UUID `json:"tenant_id"`
	DueDay      int       `json:"due_day"`
	AsOf        string    `json:"as_of"`
	NextDueDate string    `json:"next_due_date"`
}

// TenantHistoryResponse represents one audit entry
type TenantHistoryResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	OldValue    string    `json:"old_value,omitempty"`
	NewValue    string    `json:"new_value,omitempty"`
	ChangedBy   string    `json:"changed_by"`
	ChangedAt   time.Time `json:"changed_at"`
}

// ToTenantHistoryResponses converts history entries
func ToTenantHistoryResponses(entries []rental.TenantHistory) []TenantHistoryResponse {
	out := make([]TenantHistoryResponse, len(entries))
	for i, h := range entries {
		out[i] = TenantHistoryResponse{
			ID:          h.ID,
			TenantID:    h.TenantID,
			Action:      string(h.Action),
			Description: h.Description,
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			ChangedBy:   h.ChangedBy,
			ChangedAt:   h.ChangedAt,
		}
	}
	return out
}

// =============================================================================
// Payment DTOs
// =============================================================================

// RecordPaymentRequest represents a payment against a tenant's rent
type RecordPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"gt=0"`
	Type           string          `json:"payment_type" binding:"omitempty,oneof=Full Partial Advance"`
	Status         string          `json:"status" binding:"omitempty,oneof=Paid Pending"`
	Notes          string          `json:"notes" binding:"max=500"`
	IdempotencyKey string          `json:"-"` // Idempotency-Key header
}

// PaymentListFilter represents payment list query parameters
type PaymentListFilter struct {
	TenantID *uuid.UUID `form:"-"`
	Status   string     `form:"status" binding:"omitempty,oneof=Paid Pending"`
	Type     string     `form:"payment_type" binding:"omitempty,oneof=Full Partial Advance"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"payment_type"`
	Status    string          `json:"status"`
	PaidAt    time.Time       `json:"paid_at"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain Payment to a PaymentResponse
func ToPaymentResponse(p *rental.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Amount:    p.Amount,
		Type:      string(p.Type),
		Status:    string(p.Status),
		PaidAt:    p.PaidAt,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []rental.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// PaymentHistoryResponse represents one payment audit entry
type PaymentHistoryResponse struct {
	ID          uuid.UUID `json:"id"`
	PaymentID   uuid.UUID `json:"payment_id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	OldValue    string    `json:"old_value,omitempty"`
	NewValue    string    `json:"new_value,omitempty"`
	ChangedBy   string    `json:"changed_by"`
	ChangedAt   time.Time `json:"changed_at"`
}

// PaymentResultResponse is returned after recording a payment
type PaymentResultResponse struct {
	Payment PaymentResponse `json:"payment"`
	Tenant  TenantResponse  `json:"tenant"`
}

const dateLayout = "2006-01-02"

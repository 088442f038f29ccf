package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/tenancy"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
)

// IdempotencyKeyHeader makes payment recording safe to retry
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentRecorder is the payment use-case surface the handler needs
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, tenantID uuid.UUID, req tenancy.RecordPaymentRequest) (*tenancy.PaymentResultResponse, error)
	MarkRentPaid(ctx context.Context, tenantID uuid.UUID, idempotencyKey string) (*tenancy.PaymentResultResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*tenancy.PaymentResponse, error)
	List(ctx context.Context, filter tenancy.PaymentListFilter) (shared.Paginated[tenancy.PaymentResponse], error)
	History(ctx context.Context, paymentID uuid.UUID) ([]tenancy.PaymentHistoryResponse, error)
}

// ClearOldPaymentsRequest archives payments older than Days
type ClearOldPaymentsRequest struct {
	Days  int    `json:"days" binding:"required,min=1,max=3650"`
	Actor string `json:"actor" binding:"max=100"`
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	payments PaymentRecorder
	archiver Archiver
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentRecorder, archiver Archiver) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		archiver: archiver,
	}
}

// Record handles POST /tenants/:id/payments. A repeated Idempotency-Key
// answers 409 DUPLICATE_REQUEST.
func (h *PaymentHandler) Record(c *gin.Context) {
	tenantID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tenancy.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)

	result, err := h.payments.RecordPayment(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// MarkPaid handles POST /tenants/:id/mark-paid
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	tenantID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.payments.MarkRentPaid(c.Request.Context(), tenantID, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListForTenant handles GET /tenants/:id/payments
func (h *PaymentHandler) ListForTenant(c *gin.Context) {
	tenantID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	h.list(c, &tenantID)
}

// List handles GET /payments
//
// Query: tenant_id, status, payment_type, from, to (YYYY-MM-DD), page, page_size
func (h *PaymentHandler) List(c *gin.Context) {
	var tenantID *uuid.UUID
	if raw := c.Query("tenant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid tenant_id: must be a UUID")
			return
		}
		tenantID = &id
	}
	h.list(c, tenantID)
}

func (h *PaymentHandler) list(c *gin.Context, tenantID *uuid.UUID) {
	var filter tenancy.PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}
	filter.TenantID = tenantID

	page, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.payments.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// History handles GET /payments/:id/history
func (h *PaymentHandler) History(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.payments.History(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Delete handles DELETE /payments/:id. A received payment's amount goes
// back onto the tenant's balance.
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.archiver.ArchiveAndDelete(c.Request.Context(), rental.PaymentRef(id), actorFrom(c), c.Query("reason")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": id, "archived": true})
}

// BulkDelete handles POST /payments/bulk-delete
func (h *PaymentHandler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	refs := make([]rental.EntityRef, len(req.IDs))
	for i, id := range req.IDs {
		refs[i] = rental.PaymentRef(id)
	}
	h.Success(c, h.archiver.ArchiveAndDeleteMany(c.Request.Context(), refs, actorOr(req.Actor), req.Reason))
}

// ClearOld handles POST /payments/clear-old
func (h *PaymentHandler) ClearOld(c *gin.Context) {
	var req ClearOldPaymentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.archiver.ClearPaymentsOlderThan(c.Request.Context(), req.Days, actorOr(req.Actor))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

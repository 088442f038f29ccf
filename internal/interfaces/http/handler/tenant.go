package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/ledger"
	"github.com/rentledger/backend/internal/application/tenancy"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
)

// TenantManager is the tenant use-case surface the handler needs
type TenantManager interface {
	Create(ctx context.Context, req tenancy.CreateTenantRequest) (*tenancy.TenantResponse, error)
	Update(ctx context.Context, id uuid.UUID, req tenancy.UpdateTenantRequest) (*tenancy.TenantResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*tenancy.TenantResponse, error)
	List(ctx context.Context, filter tenancy.TenantListFilter) (shared.Paginated[tenancy.TenantResponse], error)
	NextDueDate(ctx context.Context, id uuid.UUID, asOf time.Time) (*tenancy.NextDueDateResponse, error)
	History(ctx context.Context, id uuid.UUID, filter shared.Filter) ([]tenancy.TenantHistoryResponse, error)
}

// Archiver deletes live records through the archive
type Archiver interface {
	ArchiveAndDelete(ctx context.Context, ref rental.EntityRef, actor, reason string) error
	ArchiveAndDeleteMany(ctx context.Context, refs []rental.EntityRef, actor, reason string) *ledger.BulkArchiveResult
	ClearPaymentsOlderThan(ctx context.Context, days int, actor string) (*ledger.BulkArchiveResult, error)
}

// BulkDeleteRequest lists records to archive and delete
type BulkDeleteRequest struct {
	IDs    []uuid.UUID `json:"ids" binding:"required,min=1,max=500"`
	Actor  string      `json:"actor" binding:"max=100"`
	Reason string      `json:"reason" binding:"max=500"`
}

// PageQuery is the page/page_size pair of list endpoints without filters
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// TenantHandler handles tenant endpoints
type TenantHandler struct {
	BaseHandler
	tenants  TenantManager
	archiver Archiver
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenants TenantManager, archiver Archiver) *TenantHandler {
	return &TenantHandler{
		tenants:  tenants,
		archiver: archiver,
	}
}

// Create handles POST /tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var req tenancy.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	tenant, err := h.tenants.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tenant)
}

// List handles GET /tenants
//
// Query: search, status (repeatable), page, page_size, order_by, order_dir
func (h *TenantHandler) List(c *gin.Context) {
	var filter tenancy.TenantListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.tenants.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	tenant, err := h.tenants.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Update handles PUT /tenants/:id. Only the fields present in the body change.
func (h *TenantHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tenancy.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.Actor = actorFrom(c)

	tenant, err := h.tenants.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Delete handles DELETE /tenants/:id. The tenant and its payments are
// archived before removal; actor and reason come from the query string.
func (h *TenantHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.archiver.ArchiveAndDelete(c.Request.Context(), rental.TenantRef(id), actorFrom(c), c.Query("reason")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": id, "archived": true})
}

// BulkDelete handles POST /tenants/bulk-delete
func (h *TenantHandler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	refs := make([]rental.EntityRef, len(req.IDs))
	for i, id := range req.IDs {
		refs[i] = rental.TenantRef(id)
	}
	h.Success(c, h.archiver.ArchiveAndDeleteMany(c.Request.Context(), refs, actorOr(req.Actor), req.Reason))
}

// NextDueDate handles GET /tenants/:id/next-due-date?as_of=YYYY-MM-DD
func (h *TenantHandler) NextDueDate(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	asOf, ok := h.parseDateQuery(c, "as_of")
	if !ok {
		return
	}

	due, err := h.tenants.NextDueDate(c.Request.Context(), id, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, due)
}

// History handles GET /tenants/:id/history
func (h *TenantHandler) History(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var query PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	entries, err := h.tenants.History(c.Request.Context(), id, shared.Filter{Page: query.Page, PageSize: query.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

func actorOr(actor string) string {
	if actor == "" {
		return DefaultActor
	}
	return actor
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter; missing
// yields the zero time
func (h *BaseHandler) parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		h.BadRequest(c, "Invalid "+name+": expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

const dateLayout = "2006-01-02"

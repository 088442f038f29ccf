package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentledger/backend/internal/application/ledger"
)

// CycleRunner runs the billing cycle batch jobs on demand
type CycleRunner interface {
	RolloverAll(ctx context.Context, asOf time.Time) (*ledger.RolloverReport, error)
}

// StatusRefresher recomputes every tenant's status
type StatusRefresher interface {
	RefreshAll(ctx context.Context, today time.Time) (*ledger.StatusRefreshReport, error)
}

// BillingHandler exposes the monthly rollover and status refresh
type BillingHandler struct {
	BaseHandler
	rollover  CycleRunner
	refresher StatusRefresher
	now       func() time.Time
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(rollover CycleRunner, refresher StatusRefresher) *BillingHandler {
	return &BillingHandler{
		rollover:  rollover,
		refresher: refresher,
		now:       time.Now,
	}
}

// Rollover handles POST /billing/rollover?confirm=true[&as_of=YYYY-MM-DD].
// Every Paid tenant is charged a new month, so the call must be confirmed.
func (h *BillingHandler) Rollover(c *gin.Context) {
	if confirmed, _ := strconv.ParseBool(c.Query("confirm")); !confirmed {
		h.BadRequest(c, "Rollover resets every paid tenant's balance; repeat with confirm=true")
		return
	}
	asOf, ok := h.parseDateQuery(c, "as_of")
	if !ok {
		return
	}
	if asOf.IsZero() {
		asOf = h.now()
	}

	report, err := h.rollover.RolloverAll(c.Request.Context(), asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// RefreshStatus handles POST /billing/refresh-status
func (h *BillingHandler) RefreshStatus(c *gin.Context) {
	report, err := h.refresher.RefreshAll(c.Request.Context(), h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentledger/backend/internal/application/analytics"
)

// DefaultTrendDays is the window of GET /analytics/trends without ?days
const DefaultTrendDays = 30

// AnalyticsReader is the read-only reporting surface
type AnalyticsReader interface {
	MonthlyIncome(ctx context.Context, year, month int) (*analytics.MonthlyIncome, error)
	YearlyIncome(ctx context.Context, year int) (*analytics.YearlyIncome, error)
	TenantSummary(ctx context.Context) (*analytics.TenantSummary, error)
	PaymentTrends(ctx context.Context, days int, today time.Time) (*analytics.PaymentTrends, error)
	OverdueTenants(ctx context.Context, today time.Time) ([]analytics.OverdueTenant, error)
	NotificationStats(ctx context.Context) (*analytics.NotificationStats, error)
}

// MonthQuery selects a calendar month; zero values mean the current one
type MonthQuery struct {
	Year  int `form:"year" binding:"omitempty,min=1"`
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
}

// TrendQuery selects the trend window
type TrendQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=366"`
}

// AnalyticsHandler serves income, collection and notification reports
type AnalyticsHandler struct {
	BaseHandler
	reports AnalyticsReader
	now     func() time.Time
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(reports AnalyticsReader) *AnalyticsHandler {
	return &AnalyticsHandler{
		reports: reports,
		now:     time.Now,
	}
}

// Monthly handles GET /analytics/monthly?year=&month=
func (h *AnalyticsHandler) Monthly(c *gin.Context) {
	var q MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	now := h.now()
	if q.Year == 0 {
		q.Year = now.Year()
	}
	if q.Month == 0 {
		q.Month = int(now.Month())
	}

	income, err := h.reports.MonthlyIncome(c.Request.Context(), q.Year, q.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, income)
}

// Yearly handles GET /analytics/yearly?year=
func (h *AnalyticsHandler) Yearly(c *gin.Context) {
	var q MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	if q.Year == 0 {
		q.Year = h.now().Year()
	}

	income, err := h.reports.YearlyIncome(c.Request.Context(), q.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, income)
}

// Tenants handles GET /analytics/tenants
func (h *AnalyticsHandler) Tenants(c *gin.Context) {
	summary, err := h.reports.TenantSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Trends handles GET /analytics/trends?days=
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	var q TrendQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	if q.Days == 0 {
		q.Days = DefaultTrendDays
	}

	trends, err := h.reports.PaymentTrends(c.Request.Context(), q.Days, h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trends)
}

// Overdue handles GET /analytics/overdue
func (h *AnalyticsHandler) Overdue(c *gin.Context) {
	overdue, err := h.reports.OverdueTenants(c.Request.Context(), h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overdue)
}

// Notifications handles GET /analytics/notifications
func (h *AnalyticsHandler) Notifications(c *gin.Context) {
	stats, err := h.reports.NotificationStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

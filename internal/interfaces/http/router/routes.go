package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"github.com/rentledger/backend/internal/infrastructure/logger"
	"github.com/rentledger/backend/internal/interfaces/http/handler"
	"github.com/rentledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Tenants       *handler.TenantHandler
	Payments      *handler.PaymentHandler
	Billing       *handler.BillingHandler
	Analytics     *handler.AnalyticsHandler
	Notifications *handler.NotificationHandler
	Health        *handler.HealthHandler
}

// EngineConfig selects the optional parts of the middleware stack
type EngineConfig struct {
	HTTP        config.HTTPConfig
	Tracing     middleware.TracingConfig
	ServiceName string
}

// NewEngine builds the gin engine with the middleware stack and every
// route. Middleware order:
//  1. RequestID
//  2. Tracing (when enabled) and span attributes
//  3. Recovery
//  4. Request logging
//  5. Security headers, CORS
//  6. Body limit
func NewEngine(cfg EngineConfig, h Handlers, log *zap.Logger) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	if cfg.Tracing.Enabled {
		engine.Use(middleware.TracingWithConfig(cfg.Tracing), middleware.SpanAttributes(), middleware.SpanErrorMarker())
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", h.Health.Health)

	engine.NoRoute(notFound)

	mount(engine.Group(APIPrefix),
		tenantRoutes(h),
		paymentRoutes(h),
		billingRoutes(h),
		analyticsRoutes(h),
		notificationRoutes(h),
	)

	return engine
}

func tenantRoutes(h Handlers) *resource {
	g := newResource("/tenants")
	g.post("", h.Tenants.Create)
	g.get("", h.Tenants.List)
	g.post("/bulk-delete", h.Tenants.BulkDelete)
	g.get("/:id", h.Tenants.Get)
	g.put("/:id", h.Tenants.Update)
	g.delete("/:id", h.Tenants.Delete)
	g.get("/:id/next-due-date", h.Tenants.NextDueDate)
	g.get("/:id/history", h.Tenants.History)

	g.post("/:id/payments", h.Payments.Record)
	g.get("/:id/payments", h.Payments.ListForTenant)
	g.post("/:id/mark-paid", h.Payments.MarkPaid)

	g.post("/:id/remind", h.Notifications.Remind)
	g.get("/:id/notifications", h.Notifications.History)
	return g
}

func paymentRoutes(h Handlers) *resource {
	g := newResource("/payments")
	g.get("", h.Payments.List)
	g.post("/bulk-delete", h.Payments.BulkDelete)
	g.post("/clear-old", h.Payments.ClearOld)
	g.get("/:id", h.Payments.Get)
	g.get("/:id/history", h.Payments.History)
	g.delete("/:id", h.Payments.Delete)
	return g
}

func billingRoutes(h Handlers) *resource {
	return newResource("/billing").
		post("/rollover", h.Billing.Rollover).
		post("/refresh-status", h.Billing.RefreshStatus)
}

func analyticsRoutes(h Handlers) *resource {
	return newResource("/analytics").
		get("/monthly", h.Analytics.Monthly).
		get("/yearly", h.Analytics.Yearly).
		get("/tenants", h.Analytics.Tenants).
		get("/trends", h.Analytics.Trends).
		get("/overdue", h.Analytics.Overdue).
		get("/notifications", h.Analytics.Notifications)
}

func notificationRoutes(h Handlers) *resource {
	return newResource("/notifications").
		post("/reminders", h.Notifications.BulkReminders)
}

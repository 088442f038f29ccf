// Package bootstrap assembles the application services shared by the
// server and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/rentledger/backend/internal/application/analytics"
	"github.com/rentledger/backend/internal/application/ledger"
	"github.com/rentledger/backend/internal/application/notification"
	"github.com/rentledger/backend/internal/application/tenancy"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/cache"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"github.com/rentledger/backend/internal/infrastructure/event"
	"github.com/rentledger/backend/internal/infrastructure/logger"
	notifyinfra "github.com/rentledger/backend/internal/infrastructure/notification"
	"github.com/rentledger/backend/internal/infrastructure/persistence"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Services is the wired application layer
type Services struct {
	Ledger        *ledger.LedgerService
	Rollover      *ledger.RolloverService
	StatusRefresh *ledger.StatusRefreshService
	Archive       *ledger.ArchiveService
	Tenants       *tenancy.TenantService
	Payments      *tenancy.PaymentService
	Analytics     *analytics.AnalyticsService
	Notifications *notification.NotificationService

	EventBus    *event.InMemoryEventBus
	Idempotency shared.IdempotencyStore
}

// Close releases the idempotency store and stops the event bus
func (s *Services) Close(ctx context.Context) error {
	var firstErr error
	if err := s.EventBus.Stop(ctx); err != nil {
		firstErr = err
	}
	if err := s.Idempotency.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// TracerConfig maps application config onto the tracer provider's config
func TracerConfig(cfg *config.Config, version string) telemetry.Config {
	return telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}
}

// OpenDatabase connects to the configured database with the zap-backed GORM
// logger and, when enabled, otelgorm tracing.
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.DBLevel),
		logger.WithSlowThreshold(cfg.Log.SlowThreshold))

	opts := []persistence.Option{persistence.WithLogger(gormLog)}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		tracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		if cfg.Database.Driver == config.DriverSQLite {
			tracingCfg.DBSystem = "sqlite"
		}
		opts = append(opts, persistence.WithTracing(telemetry.NewDBTracingPlugin(tracingCfg, log)))
	}
	return persistence.NewDatabase(&cfg.Database, opts...)
}

// NewServices wires repositories, the event bus and the idempotency store
// into the application services. Amounts and dates are computed in loc.
func NewServices(ctx context.Context, cfg *config.Config, db *persistence.Database, loc *time.Location, log *zap.Logger) (*Services, error) {
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	historyRepo := persistence.NewGormHistoryRepository(db.DB)
	smsLogRepo := persistence.NewGormSMSLogRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create idempotency store: %w", err)
	}
	idemConfig := shared.IdempotencyConfig{TTL: cfg.Idempotency.TTL}

	notifier, err := notifyinfra.NewNotifier(cfg.SMS, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	eventBus := event.NewInMemoryEventBus(log)

	ledgerService := ledger.NewLedgerService(txScope, eventBus, log)
	notificationService := notification.NewNotificationService(tenantRepo, smsLogRepo, notifier, cfg.SMS.DefaultCountryCode, log)

	// Payment recorded -> confirmation text, at most once per event
	confirmations := event.NewIdempotentHandler(
		notification.NewPaymentConfirmationHandler(notificationService, log),
		store, idemConfig, log)
	eventBus.Subscribe(confirmations)
	log.Info("Event handlers registered",
		zap.Strings("payment_confirmation_events", confirmations.EventTypes()))

	if err := eventBus.Start(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to start event bus: %w", err)
	}

	return &Services{
		Ledger:        ledgerService,
		Rollover:      ledger.NewRolloverService(tenantRepo, txScope, eventBus, log),
		StatusRefresh: ledger.NewStatusRefreshService(tenantRepo, ledgerService, log),
		Archive:       ledger.NewArchiveService(paymentRepo, txScope, eventBus, log),
		Tenants:       tenancy.NewTenantService(tenantRepo, historyRepo, txScope, eventBus, log),
		Payments: tenancy.NewPaymentService(tenantRepo, paymentRepo, historyRepo, ledgerService, txScope, log,
			tenancy.WithIdempotencyStore(store, idemConfig),
			tenancy.WithEventPublisher(eventBus)),
		Analytics:     analytics.NewAnalyticsService(tenantRepo, paymentRepo, smsLogRepo, loc, log),
		Notifications: notificationService,
		EventBus:      eventBus,
		Idempotency:   store,
	}, nil
}

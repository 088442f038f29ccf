package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/ledger"
	"github.com/rentledger/backend/internal/application/tenancy"
	"github.com/rentledger/backend/internal/bootstrap"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"github.com/rentledger/backend/internal/interfaces/http/handler"
	"github.com/rentledger/backend/internal/interfaces/http/router"
	"github.com/rentledger/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiFixture struct {
	db       *TestDB
	services *bootstrap.Services
	client   *testutil.APIClient
	events   *testutil.EventRecorder
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	cfg := &config.Config{
		App:         config.AppConfig{Name: "rentledger-test"},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20},
	}
	log := zap.NewNop()

	db := testDB.Database
	services, err := bootstrap.NewServices(context.Background(), cfg, db, time.UTC, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = services.Close(context.Background()) })

	events := testutil.NewEventRecorder()
	services.EventBus.Subscribe(events,
		rental.EventTypePaymentRecorded, rental.EventTypeRentRolledOver, rental.EventTypeTenantArchived)

	engine := router.NewEngine(router.EngineConfig{HTTP: cfg.HTTP}, router.Handlers{
		Tenants:       handler.NewTenantHandler(services.Tenants, services.Archive),
		Payments:      handler.NewPaymentHandler(services.Payments, services.Archive),
		Billing:       handler.NewBillingHandler(services.Rollover, services.StatusRefresh),
		Analytics:     handler.NewAnalyticsHandler(services.Analytics),
		Notifications: handler.NewNotificationHandler(services.Notifications),
		Health:        handler.NewHealthHandler(db),
	}, log)

	return &apiFixture{
		db:       testDB,
		services: services,
		client:   testutil.NewAPIClient(t, engine, "/api/v1"),
		events:   events,
	}
}

func (f *apiFixture) createTenant(t *testing.T, name string, rent int64) tenancy.TenantResponse {
	t.Helper()
	var tenant tenancy.TenantResponse
	f.client.Do(http.MethodPost, "/tenants", map[string]any{
		"name":        name,
		"phone":       "0712345678",
		"unit_number": "A" + name[:1],
		"rent_amount": rent,
		"due_day":     5,
	}).RequireOK(t, http.StatusCreated).Decode(t, &tenant)
	return tenant
}

func TestLedgerAPI_PaymentLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	tenant := f.createTenant(t, "Alice", 1000)
	assert.Equal(t, string(rental.RentStatusUnpaid), tenant.Status)
	assert.True(t, tenant.AmountDue.Equal(decimal.NewFromInt(1000)))

	t.Run("partial payment", func(t *testing.T) {
		var result tenancy.PaymentResultResponse
		f.client.Do(http.MethodPost, "/tenants/"+tenant.ID.String()+"/payments",
			map[string]any{"amount": 400}, "Idempotency-Key", "pay-1").
			RequireOK(t, http.StatusCreated).Decode(t, &result)

		assert.Equal(t, string(rental.PaymentTypePartial), result.Payment.Type)
		assert.Equal(t, string(rental.RentStatusPartial), result.Tenant.Status)
		assert.True(t, result.Tenant.AmountDue.Equal(decimal.NewFromInt(600)))
	})

	t.Run("replayed idempotency key is rejected", func(t *testing.T) {
		f.client.Do(http.MethodPost, "/tenants/"+tenant.ID.String()+"/payments",
			map[string]any{"amount": 400}, "Idempotency-Key", "pay-1").
			AssertError(t, http.StatusConflict, "DUPLICATE_REQUEST")
		assert.Equal(t, int64(1), f.db.Count("payments", "tenant_id = ?", tenant.ID))
	})

	t.Run("mark paid settles the rest", func(t *testing.T) {
		var result tenancy.PaymentResultResponse
		f.client.Do(http.MethodPost, "/tenants/"+tenant.ID.String()+"/mark-paid", nil).
			RequireOK(t, http.StatusCreated).Decode(t, &result)

		assert.True(t, result.Payment.Amount.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, string(rental.RentStatusPaid), result.Tenant.Status)
		assert.True(t, result.Tenant.AmountDue.IsZero())
	})

	t.Run("payment events reach subscribers", func(t *testing.T) {
		assert.True(t, f.events.WaitForCount(rental.EventTypePaymentRecorded, 2, 2*time.Second))
	})

	t.Run("rollover charges paid tenants once", func(t *testing.T) {
		f.client.Do(http.MethodPost, "/billing/rollover", nil).AssertError(t, http.StatusBadRequest, "BAD_REQUEST")

		var report ledger.RolloverReport
		f.client.Do(http.MethodPost, "/billing/rollover?confirm=true", nil).
			RequireOK(t, http.StatusOK).Decode(t, &report)
		assert.Equal(t, 1, report.Count)

		f.client.Do(http.MethodPost, "/billing/rollover?confirm=true", nil).
			RequireOK(t, http.StatusOK).Decode(t, &report)
		assert.Equal(t, 0, report.Count, "a second rollover must not charge Unpaid tenants again")

		var got tenancy.TenantResponse
		f.client.Do(http.MethodGet, "/tenants/"+tenant.ID.String(), nil).RequireOK(t, http.StatusOK).Decode(t, &got)
		assert.Equal(t, string(rental.RentStatusUnpaid), got.Status)
		assert.True(t, got.AmountDue.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("history is recorded", func(t *testing.T) {
		var history []tenancy.TenantHistoryResponse
		f.client.Do(http.MethodGet, "/tenants/"+tenant.ID.String()+"/history?page_size=100", nil).
			RequireOK(t, http.StatusOK).Decode(t, &history)
		assert.NotEmpty(t, history)
	})
}

func TestLedgerAPI_DeletePaymentRestoresBalance(t *testing.T) {
	f := newAPIFixture(t)
	tenant := f.createTenant(t, "Bob", 800)

	var result tenancy.PaymentResultResponse
	f.client.Do(http.MethodPost, "/tenants/"+tenant.ID.String()+"/payments", map[string]any{"amount": 300}).
		RequireOK(t, http.StatusCreated).Decode(t, &result)

	f.client.Do(http.MethodDelete, "/payments/"+result.Payment.ID.String()+"?actor=ops&reason=entered+twice", nil).
		RequireOK(t, http.StatusOK)

	var got tenancy.TenantResponse
	f.client.Do(http.MethodGet, "/tenants/"+tenant.ID.String(), nil).RequireOK(t, http.StatusOK).Decode(t, &got)
	assert.True(t, got.AmountDue.Equal(decimal.NewFromInt(800)))
	assert.Equal(t, int64(1), f.db.Count("archived_payments", "original_id = ?", result.Payment.ID))
	assert.Equal(t, int64(0), f.db.Count("payments", "id = ?", result.Payment.ID))

	// the audit trail outlives the payment
	var history []tenancy.PaymentHistoryResponse
	f.client.Do(http.MethodGet, "/payments/"+result.Payment.ID.String()+"/history", nil).
		RequireOK(t, http.StatusOK).Decode(t, &history)
	assert.GreaterOrEqual(t, len(history), 2)
}

func TestLedgerAPI_DeleteTenantArchivesEverything(t *testing.T) {
	f := newAPIFixture(t)
	tenant := f.createTenant(t, "Carol", 500)
	for i := 0; i < 3; i++ {
		f.client.Do(http.MethodPost, "/tenants/"+tenant.ID.String()+"/payments", map[string]any{"amount": 100}).
			RequireOK(t, http.StatusCreated)
	}

	f.client.Do(http.MethodDelete, "/tenants/"+tenant.ID.String(), nil).RequireOK(t, http.StatusOK)

	assert.Equal(t, int64(1), f.db.Count("archived_tenants", "original_id = ?", tenant.ID))
	assert.Equal(t, int64(3), f.db.Count("archived_payments", "tenant_id = ?", tenant.ID))
	assert.Equal(t, int64(0), f.db.Count("payments", "tenant_id = ?", tenant.ID))
	f.client.Do(http.MethodGet, "/tenants/"+tenant.ID.String(), nil).AssertError(t, http.StatusNotFound, "NOT_FOUND")
}

func TestLedgerAPI_ConcurrentPayments(t *testing.T) {
	f := newAPIFixture(t)
	tenant := f.createTenant(t, "Dan", 1000)

	const workers = 10
	var wg sync.WaitGroup
	codes := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := f.client.Do(http.MethodPost, "/tenants/"+tenant.ID.String()+"/payments",
				map[string]any{"amount": 100}, "Idempotency-Key", fmt.Sprintf("concurrent-%d", i))
			codes[i] = resp.Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusCreated, code)
	}

	var got tenancy.TenantResponse
	f.client.Do(http.MethodGet, "/tenants/"+tenant.ID.String(), nil).RequireOK(t, http.StatusOK).Decode(t, &got)
	assert.True(t, got.AmountDue.IsZero(), "every payment must be applied exactly once, got %s", got.AmountDue)
	assert.Equal(t, string(rental.RentStatusPaid), got.Status)
	assert.Equal(t, int64(workers), f.db.Count("payments", "tenant_id = ?", tenant.ID))
}

func TestLedgerAPI_Validation(t *testing.T) {
	f := newAPIFixture(t)

	f.client.Do(http.MethodPost, "/tenants", map[string]any{"name": "Eve", "due_day": 40}).
		AssertError(t, http.StatusBadRequest, "VALIDATION_ERROR")
	f.client.Do(http.MethodGet, "/tenants/"+uuid.NewString(), nil).AssertError(t, http.StatusNotFound, "NOT_FOUND")
	f.client.Do(http.MethodGet, "/tenants/not-a-uuid", nil).AssertError(t, http.StatusBadRequest, "BAD_REQUEST")

	tenant := f.createTenant(t, "Eve", 700)
	f.client.Do(http.MethodPost, "/tenants/"+tenant.ID.String()+"/payments", map[string]any{"amount": -5}).
		AssertError(t, http.StatusBadRequest, "VALIDATION_ERROR")
}

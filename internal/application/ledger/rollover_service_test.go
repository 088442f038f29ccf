package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPaidTenant(t *testing.T, rent int64) *rental.Tenant {
	t.Helper()
	tenant := newTenant(t, rent, 5)
	require.NoError(t, tenant.ApplyPayment(decimal.NewFromInt(rent), testNow))
	tenant.PullDomainEvents()
	return tenant
}

func TestRolloverService_RolloverAll(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rolls over paid tenants and isolates failures", func(t *testing.T) {
		m := newMockSet()
		svc := NewRolloverService(m.tenants, m.scope, m.events, zap.NewNop())

		ok1 := newPaidTenant(t, 15000)
		ok2 := newPaidTenant(t, 12000)
		broken := newPaidTenant(t, 9000)

		m.tenants.On("FindByStatuses", ctx, []rental.RentStatus{rental.RentStatusPaid}).
			Return([]rental.Tenant{*ok1, *broken, *ok2}, nil)
		m.tenants.On("FindByIDForUpdate", ctx, ok1.ID).Return(ok1, nil)
		m.tenants.On("FindByIDForUpdate", ctx, ok2.ID).Return(ok2, nil)
		m.tenants.On("FindByIDForUpdate", ctx, broken.ID).Return(broken, nil)
		m.tenants.On("SaveWithLock", ctx, ok1).Return(nil)
		m.tenants.On("SaveWithLock", ctx, ok2).Return(nil)
		m.tenants.On("SaveWithLock", ctx, broken).Return(errors.New("connection reset"))
		m.history.On("AppendTenant", ctx, mock.Anything).Return(nil)
		m.events.On("Publish", ctx, mock.Anything).Return(nil)

		report, err := svc.RolloverAll(ctx, asOf)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 2, report.Count)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, broken.ID, report.Failures[0].TenantID)

		for _, tenant := range []*rental.Tenant{ok1, ok2} {
			assert.Equal(t, rental.RentStatusUnpaid, tenant.Status)
			assert.True(t, tenant.AmountDue.Equal(tenant.RentAmount))
			assert.Equal(t, rental.DateOf(asOf), tenant.CycleStart)
		}
		m.events.AssertNumberOfCalls(t, "Publish", 2)
	})

	t.Run("tenant no longer paid is skipped", func(t *testing.T) {
		m := newMockSet()
		svc := NewRolloverService(m.tenants, m.scope, m.events, zap.NewNop())

		listed := newPaidTenant(t, 15000)
		locked := listed.Clone()
		require.NoError(t, locked.ReversePayment(decimal.NewFromInt(5000), testNow))

		m.tenants.On("FindByStatuses", ctx, []rental.RentStatus{rental.RentStatusPaid}).
			Return([]rental.Tenant{*listed}, nil)
		m.tenants.On("FindByIDForUpdate", ctx, listed.ID).Return(locked, nil)

		report, err := svc.RolloverAll(ctx, asOf)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Count)
		assert.Equal(t, 1, report.Skipped)
		m.tenants.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("no paid tenants is a no-op", func(t *testing.T) {
		m := newMockSet()
		svc := NewRolloverService(m.tenants, m.scope, m.events, zap.NewNop())

		m.tenants.On("FindByStatuses", ctx, []rental.RentStatus{rental.RentStatusPaid}).
			Return([]rental.Tenant{}, nil)

		report, err := svc.RolloverAll(ctx, asOf)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Total)
		assert.Equal(t, 0, report.Count)
		assert.Empty(t, report.Failures)
	})

	t.Run("listing failure aborts", func(t *testing.T) {
		m := newMockSet()
		svc := NewRolloverService(m.tenants, m.scope, m.events, zap.NewNop())

		m.tenants.On("FindByStatuses", ctx, []rental.RentStatus{rental.RentStatusPaid}).
			Return(nil, errors.New("db down"))

		report, err := svc.RolloverAll(ctx, asOf)
		assert.Error(t, err)
		assert.Nil(t, report)
	})
}

// stubRefresher is a StatusRefresher returning canned results per tenant
type stubRefresher struct {
	changed map[uuid.UUID]bool
	failing map[uuid.UUID]error
}

func (s *stubRefresher) RefreshStatus(_ context.Context, tenantID uuid.UUID, _ time.Time) (bool, error) {
	if err, ok := s.failing[tenantID]; ok {
		return false, err
	}
	return s.changed[tenantID], nil
}

func TestStatusRefreshService_RefreshAll(t *testing.T) {
	ctx := context.Background()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	m := newMockSet()
	m.tenants.On("ListIDs", ctx).Return([]uuid.UUID{a, b, c}, nil)

	refresher := &stubRefresher{
		changed: map[uuid.UUID]bool{a: true, b: false},
		failing: map[uuid.UUID]error{c: errors.New("locked")},
	}
	svc := NewStatusRefreshService(m.tenants, refresher, zap.NewNop())

	report, err := svc.RefreshAll(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Changed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, c, report.Failures[0].TenantID)
}

func TestStatusRefreshService_ListFailure(t *testing.T) {
	ctx := context.Background()
	m := newMockSet()
	m.tenants.On("ListIDs", ctx).Return(nil, errors.New("db down"))

	svc := NewStatusRefreshService(m.tenants, &stubRefresher{}, zap.NewNop())
	_, err := svc.RefreshAll(ctx, testNow)
	assert.Error(t, err)
}

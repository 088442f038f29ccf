package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockTenantReader struct {
	mock.Mock
}

func (m *MockTenantReader) CountByStatus(ctx context.Context) (map[rental.RentStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[rental.RentStatus]int64), args.Error(1)
}

func (m *MockTenantReader) Totals(ctx context.Context) (rental.TenantTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(rental.TenantTotals), args.Error(1)
}

func (m *MockTenantReader) FindByStatuses(ctx context.Context, statuses ...rental.RentStatus) ([]rental.Tenant, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rental.Tenant), args.Error(1)
}

type MockIncomeReader struct {
	mock.Mock
}

func (m *MockIncomeReader) SumReceivedBetween(ctx context.Context, from, to time.Time) (rental.IncomeSummary, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(rental.IncomeSummary), args.Error(1)
}

func (m *MockIncomeReader) FindReceivedBetween(ctx context.Context, from, to time.Time) ([]rental.Payment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rental.Payment), args.Error(1)
}

type MockSMSStatsReader struct {
	mock.Mock
}

func (m *MockSMSStatsReader) Stats(ctx context.Context) (rental.SMSStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(rental.SMSStats), args.Error(1)
}

func newService() (*AnalyticsService, *MockTenantReader, *MockIncomeReader, *MockSMSStatsReader) {
	tenants := new(MockTenantReader)
	payments := new(MockIncomeReader)
	sms := new(MockSMSStatsReader)
	return NewAnalyticsService(tenants, payments, sms, nil, zap.NewNop()), tenants, payments, sms
}

func TestAnalyticsService_MonthlyIncome(t *testing.T) {
	ctx := context.Background()

	t.Run("sums the calendar month", func(t *testing.T) {
		svc, _, payments, _ := newService()
		from := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
		payments.On("SumReceivedBetween", ctx, from, to).
			Return(rental.IncomeSummary{Total: decimal.NewFromInt(42000), Count: 3}, nil)

		result, err := svc.MonthlyIncome(ctx, 2025, 12)
		require.NoError(t, err)
		assert.Equal(t, "December", result.MonthName)
		assert.True(t, decimal.NewFromInt(42000).Equal(result.Total))
		assert.Equal(t, int64(3), result.PaymentCount)
		payments.AssertExpectations(t)
	})

	t.Run("month out of range", func(t *testing.T) {
		svc, _, payments, _ := newService()
		for _, month := range []int{0, 13, -1} {
			_, err := svc.MonthlyIncome(ctx, 2025, month)
			assert.ErrorIs(t, err, shared.ErrInvalidArgument)
		}
		payments.AssertNotCalled(t, "SumReceivedBetween", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAnalyticsService_YearlyIncome(t *testing.T) {
	ctx := context.Background()
	svc, _, payments, _ := newService()

	march := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	payments.On("SumReceivedBetween", ctx, march, march.AddDate(0, 1, 0)).
		Return(rental.IncomeSummary{Total: decimal.NewFromInt(15000), Count: 1}, nil).Once()
	payments.On("SumReceivedBetween", ctx, mock.Anything, mock.Anything).
		Return(rental.IncomeSummary{Total: decimal.NewFromInt(1000), Count: 1}, nil)

	result, err := svc.YearlyIncome(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, result.Months, 12)
	assert.Equal(t, 1, result.Months[0].Month)
	assert.True(t, decimal.NewFromInt(15000).Equal(result.Months[2].Total))
	assert.True(t, decimal.NewFromInt(26000).Equal(result.Total))
}

func TestAnalyticsService_TenantSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("collection rate", func(t *testing.T) {
		svc, tenants, _, _ := newService()
		tenants.On("CountByStatus", ctx).Return(map[rental.RentStatus]int64{
			rental.RentStatusPaid:    1,
			rental.RentStatusUnpaid:  1,
			rental.RentStatusPartial: 1,
		}, nil)
		tenants.On("Totals", ctx).Return(rental.TenantTotals{
			RentRoll:    decimal.NewFromInt(45000),
			Outstanding: decimal.NewFromInt(20000),
		}, nil)

		summary, err := svc.TenantSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), summary.TotalTenants)
		assert.Equal(t, int64(0), summary.OverdueTenants)
		assert.Equal(t, int64(1), summary.ByStatus["Paid"])
		assert.Equal(t, "33.33", summary.CollectionRate.StringFixed(2))
		assert.True(t, decimal.NewFromInt(20000).Equal(summary.TotalOutstanding))
	})

	t.Run("no tenants", func(t *testing.T) {
		svc, tenants, _, _ := newService()
		tenants.On("CountByStatus", ctx).Return(map[rental.RentStatus]int64{}, nil)
		tenants.On("Totals", ctx).Return(rental.TenantTotals{}, nil)

		summary, err := svc.TenantSummary(ctx)
		require.NoError(t, err)
		assert.True(t, summary.CollectionRate.IsZero())
	})

	t.Run("repository error", func(t *testing.T) {
		svc, tenants, _, _ := newService()
		tenants.On("CountByStatus", ctx).Return(nil, errors.New("db down"))

		_, err := svc.TenantSummary(ctx)
		assert.EqualError(t, err, "db down")
	})
}

func TestAnalyticsService_PaymentTrends(t *testing.T) {
	ctx := context.Background()
	svc, _, payments, _ := newService()

	today := time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)
	from := time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)
	payments.On("FindReceivedBetween", ctx, from, to).Return([]rental.Payment{
		{Amount: decimal.NewFromInt(5000), PaidAt: time.Date(2025, time.March, 8, 9, 0, 0, 0, time.UTC)},
		{Amount: decimal.NewFromInt(2500), PaidAt: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)},
		{Amount: decimal.NewFromInt(2500), PaidAt: time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)},
	}, nil)

	trends, err := svc.PaymentTrends(ctx, 3, today)
	require.NoError(t, err)
	require.Len(t, trends.Days, 3)
	assert.Equal(t, "2025-03-08", trends.From)
	assert.Equal(t, "2025-03-10", trends.To)

	assert.Equal(t, 1, trends.Days[0].Count)
	assert.True(t, trends.Days[1].Total.IsZero(), "days without payments are zero-filled")
	assert.Equal(t, 2, trends.Days[2].Count)
	assert.True(t, decimal.NewFromInt(5000).Equal(trends.Days[2].Total))
	assert.True(t, decimal.NewFromInt(10000).Equal(trends.Total))

	_, err = svc.PaymentTrends(ctx, 0, today)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestAnalyticsService_OverdueTenants(t *testing.T) {
	ctx := context.Background()
	svc, tenants, _, _ := newService()

	overdue := func(name string, cycleStart time.Time) rental.Tenant {
		return rental.Tenant{
			BaseAggregateRoot: shared.NewBaseAggregateRootAt(cycleStart),
			Name:              name,
			UnitNumber:        name + "-1",
			RentAmount:        decimal.NewFromInt(15000),
			AmountDue:         decimal.NewFromInt(15000),
			DueDay:            5,
			Status:            rental.RentStatusOverdue,
			CycleStart:        cycleStart,
		}
	}
	recent := overdue("Recent", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	old := overdue("Old", time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	tenants.On("FindByStatuses", ctx, []rental.RentStatus{rental.RentStatusOverdue}).
		Return([]rental.Tenant{recent, old}, nil)

	today := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	result, err := svc.OverdueTenants(ctx, today)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "Old", result[0].Name)
	assert.Equal(t, "2025-02-05", result[0].DueDate)
	assert.Equal(t, 33, result[0].DaysOverdue)
	assert.Equal(t, "Recent", result[1].Name)
	assert.Equal(t, 5, result[1].DaysOverdue)
	assert.NotEqual(t, uuid.Nil, result[1].TenantID)
}

func TestAnalyticsService_NotificationStats(t *testing.T) {
	ctx := context.Background()
	svc, _, _, sms := newService()
	sms.On("Stats", ctx).Return(rental.SMSStats{Total: 8, Successful: 6, Failed: 2}, nil)

	stats, err := svc.NotificationStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Failed)
	assert.Equal(t, "75.00", stats.SuccessRate.StringFixed(2))
}

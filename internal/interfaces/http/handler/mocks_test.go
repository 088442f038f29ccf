package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/analytics"
	"github.com/rentledger/backend/internal/application/ledger"
	"github.com/rentledger/backend/internal/application/notification"
	"github.com/rentledger/backend/internal/application/tenancy"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockTenantManager implements TenantManager for testing
type MockTenantManager struct {
	mock.Mock
}

func (m *MockTenantManager) Create(ctx context.Context, req tenancy.CreateTenantRequest) (*tenancy.TenantResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.TenantResponse), args.Error(1)
}

func (m *MockTenantManager) Update(ctx context.Context, id uuid.UUID, req tenancy.UpdateTenantRequest) (*tenancy.TenantResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.TenantResponse), args.Error(1)
}

func (m *MockTenantManager) Get(ctx context.Context, id uuid.UUID) (*tenancy.TenantResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.TenantResponse), args.Error(1)
}

func (m *MockTenantManager) List(ctx context.Context, filter tenancy.TenantListFilter) (shared.Paginated[tenancy.TenantResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[tenancy.TenantResponse]), args.Error(1)
}

func (m *MockTenantManager) NextDueDate(ctx context.Context, id uuid.UUID, asOf time.Time) (*tenancy.NextDueDateResponse, error) {
	args := m.Called(ctx, id, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.NextDueDateResponse), args.Error(1)
}

func (m *MockTenantManager) History(ctx context.Context, id uuid.UUID, filter shared.Filter) ([]tenancy.TenantHistoryResponse, error) {
	args := m.Called(ctx, id, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tenancy.TenantHistoryResponse), args.Error(1)
}

// MockArchiver implements Archiver for testing
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) ArchiveAndDelete(ctx context.Context, ref rental.EntityRef, actor, reason string) error {
	args := m.Called(ctx, ref, actor, reason)
	return args.Error(0)
}

func (m *MockArchiver) ArchiveAndDeleteMany(ctx context.Context, refs []rental.EntityRef, actor, reason string) *ledger.BulkArchiveResult {
	args := m.Called(ctx, refs, actor, reason)
	return args.Get(0).(*ledger.BulkArchiveResult)
}

func (m *MockArchiver) ClearPaymentsOlderThan(ctx context.Context, days int, actor string) (*ledger.BulkArchiveResult, error) {
	args := m.Called(ctx, days, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.BulkArchiveResult), args.Error(1)
}

// MockPaymentRecorder implements PaymentRecorder for testing
type MockPaymentRecorder struct {
	mock.Mock
}

func (m *MockPaymentRecorder) RecordPayment(ctx context.Context, tenantID uuid.UUID, req tenancy.RecordPaymentRequest) (*tenancy.PaymentResultResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.PaymentResultResponse), args.Error(1)
}

func (m *MockPaymentRecorder) MarkRentPaid(ctx context.Context, tenantID uuid.UUID, idempotencyKey string) (*tenancy.PaymentResultResponse, error) {
	args := m.Called(ctx, tenantID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.PaymentResultResponse), args.Error(1)
}

func (m *MockPaymentRecorder) Get(ctx context.Context, id uuid.UUID) (*tenancy.PaymentResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenancy.PaymentResponse), args.Error(1)
}

func (m *MockPaymentRecorder) List(ctx context.Context, filter tenancy.PaymentListFilter) (shared.Paginated[tenancy.PaymentResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[tenancy.PaymentResponse]), args.Error(1)
}

func (m *MockPaymentRecorder) History(ctx context.Context, paymentID uuid.UUID) ([]tenancy.PaymentHistoryResponse, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tenancy.PaymentHistoryResponse), args.Error(1)
}

// MockCycleRunner implements CycleRunner and StatusRefresher for testing
type MockCycleRunner struct {
	mock.Mock
}

func (m *MockCycleRunner) RolloverAll(ctx context.Context, asOf time.Time) (*ledger.RolloverReport, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.RolloverReport), args.Error(1)
}

func (m *MockCycleRunner) RefreshAll(ctx context.Context, today time.Time) (*ledger.StatusRefreshReport, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.StatusRefreshReport), args.Error(1)
}

// MockAnalyticsReader implements AnalyticsReader for testing
type MockAnalyticsReader struct {
	mock.Mock
}

func (m *MockAnalyticsReader) MonthlyIncome(ctx context.Context, year, month int) (*analytics.MonthlyIncome, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.MonthlyIncome), args.Error(1)
}

func (m *MockAnalyticsReader) YearlyIncome(ctx context.Context, year int) (*analytics.YearlyIncome, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.YearlyIncome), args.Error(1)
}

func (m *MockAnalyticsReader) TenantSummary(ctx context.Context) (*analytics.TenantSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.TenantSummary), args.Error(1)
}

func (m *MockAnalyticsReader) PaymentTrends(ctx context.Context, days int, today time.Time) (*analytics.PaymentTrends, error) {
	args := m.Called(ctx, days, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.PaymentTrends), args.Error(1)
}

func (m *MockAnalyticsReader) OverdueTenants(ctx context.Context, today time.Time) ([]analytics.OverdueTenant, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.OverdueTenant), args.Error(1)
}

func (m *MockAnalyticsReader) NotificationStats(ctx context.Context) (*analytics.NotificationStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.NotificationStats), args.Error(1)
}

// MockMessenger implements Messenger for testing
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendRentReminder(ctx context.Context, tenantID uuid.UUID) (*notification.DeliveryResult, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.DeliveryResult), args.Error(1)
}

func (m *MockMessenger) SendBalanceReminder(ctx context.Context, tenantID uuid.UUID) (*notification.DeliveryResult, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.DeliveryResult), args.Error(1)
}

func (m *MockMessenger) SendCustomMessage(ctx context.Context, tenantID uuid.UUID, message string) (*notification.DeliveryResult, error) {
	args := m.Called(ctx, tenantID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.DeliveryResult), args.Error(1)
}

func (m *MockMessenger) SendBulkReminders(ctx context.Context, statuses []rental.RentStatus) (*notification.BulkResult, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.BulkResult), args.Error(1)
}

func (m *MockMessenger) History(ctx context.Context, tenantID uuid.UUID, limit int) ([]notification.SMSLogResponse, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.SMSLogResponse), args.Error(1)
}

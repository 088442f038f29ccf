package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockTenantRepository is a mock implementation of rental.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*rental.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context, filter rental.TenantFilter) ([]rental.Tenant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]rental.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByStatuses(ctx context.Context, statuses ...rental.RentStatus) ([]rental.Tenant, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rental.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockTenantRepository) Count(ctx context.Context, filter rental.TenantFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantRepository) CountByStatus(ctx context.Context) (map[rental.RentStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[rental.RentStatus]int64), args.Error(1)
}

func (m *MockTenantRepository) Totals(ctx context.Context) (rental.TenantTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(rental.TenantTotals), args.Error(1)
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *rental.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) SaveWithLock(ctx context.Context, tenant *rental.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of rental.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]rental.Payment, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rental.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter rental.PaymentFilter) ([]rental.Payment, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]rental.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Count(ctx context.Context, filter rental.PaymentFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) FindPaidAtBefore(ctx context.Context, cutoff time.Time) ([]rental.Payment, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rental.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindReceivedBetween(ctx context.Context, from, to time.Time) ([]rental.Payment, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]rental.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumReceivedBetween(ctx context.Context, from, to time.Time) (rental.IncomeSummary, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(rental.IncomeSummary), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *rental.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

// MockArchiveRepository is a mock implementation of rental.ArchiveRepository
type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) SaveTenant(ctx context.Context, archived *rental.ArchivedTenant) error {
	args := m.Called(ctx, archived)
	return args.Error(0)
}

func (m *MockArchiveRepository) SavePayment(ctx context.Context, archived *rental.ArchivedPayment) error {
	args := m.Called(ctx, archived)
	return args.Error(0)
}

func (m *MockArchiveRepository) FindTenants(ctx context.Context, filter rental.ArchiveFilter) ([]rental.ArchivedTenant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]rental.ArchivedTenant), args.Error(1)
}

func (m *MockArchiveRepository) FindPayments(ctx context.Context, filter rental.ArchiveFilter) ([]rental.ArchivedPayment, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]rental.ArchivedPayment), args.Error(1)
}

func (m *MockArchiveRepository) CountTenants(ctx context.Context, filter rental.ArchiveFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockArchiveRepository) CountPayments(ctx context.Context, filter rental.ArchiveFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockHistoryRepository is a mock implementation of rental.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) AppendTenant(ctx context.Context, entry *rental.TenantHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) AppendPayment(ctx context.Context, entry *rental.PaymentHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]rental.TenantHistory, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]rental.TenantHistory), args.Error(1)
}

func (m *MockHistoryRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]rental.PaymentHistory, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).([]rental.PaymentHistory), args.Error(1)
}

// MockRemover is a mock implementation of rental.LiveRecordRemover
type MockRemover struct {
	mock.Mock
}

func (m *MockRemover) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRemover) DeletePayment(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// mockSet bundles the mocks behind a NoOpTransactionScope
type mockSet struct {
	tenants  *MockTenantRepository
	payments *MockPaymentRepository
	archive  *MockArchiveRepository
	history  *MockHistoryRepository
	remover  *MockRemover
	events   *MockEventPublisher
	scope    *NoOpTransactionScope
}

func newMockSet() *mockSet {
	m := &mockSet{
		tenants:  new(MockTenantRepository),
		payments: new(MockPaymentRepository),
		archive:  new(MockArchiveRepository),
		history:  new(MockHistoryRepository),
		remover:  new(MockRemover),
		events:   new(MockEventPublisher),
	}
	m.scope = NewNoOpTransactionScope(m.tenants, m.payments, m.archive, m.history, m.remover)
	return m
}

func (m *mockSet) assertExpectations(t mock.TestingT) {
	m.tenants.AssertExpectations(t)
	m.payments.AssertExpectations(t)
	m.archive.AssertExpectations(t)
	m.history.AssertExpectations(t)
	m.remover.AssertExpectations(t)
	m.events.AssertExpectations(t)
}

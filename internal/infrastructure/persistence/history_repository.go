package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormHistoryRepository implements rental.HistoryRepository using GORM
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// AppendTenant appends a tenant history entry
func (r *GormHistoryRepository) AppendTenant(ctx context.Context, entry *rental.TenantHistory) error {
	return r.db.WithContext(ctx).Create(models.TenantHistoryModelFromDomain(entry)).Error
}

// AppendPayment appends a payment history entry
func (r *GormHistoryRepository) AppendPayment(ctx context.Context, entry *rental.PaymentHistory) error {
	return r.db.WithContext(ctx).Create(models.PaymentHistoryModelFromDomain(entry)).Error
}

// FindByTenant lists a tenant's history, newest first
func (r *GormHistoryRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]rental.TenantHistory, error) {
	filter = filter.Normalize()

	var historyModels []models.TenantHistoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("changed_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&historyModels).Error; err != nil {
		return nil, err
	}

	entries := make([]rental.TenantHistory, len(historyModels))
	for i := range historyModels {
		entries[i] = *historyModels[i].ToDomain()
	}
	return entries, nil
}

// FindByPayment lists a payment's history, newest first
func (r *GormHistoryRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]rental.PaymentHistory, error) {
	var historyModels []models.PaymentHistoryModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("changed_at DESC").
		Find(&historyModels).Error; err != nil {
		return nil, err
	}

	entries := make([]rental.PaymentHistory, len(historyModels))
	for i := range historyModels {
		entries[i] = *historyModels[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormHistoryRepository implements rental.HistoryRepository
var _ rental.HistoryRepository = (*GormHistoryRepository)(nil)

package persistence

import (
	"context"

	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormArchiveRepository implements rental.ArchiveRepository using GORM.
// Snapshots are only ever inserted.
type GormArchiveRepository struct {
	db *gorm.DB
}

// NewGormArchiveRepository creates a new GormArchiveRepository
func NewGormArchiveRepository(db *gorm.DB) *GormArchiveRepository {
	return &GormArchiveRepository{db: db}
}

// SaveTenant inserts a tenant snapshot
func (r *GormArchiveRepository) SaveTenant(ctx context.Context, archived *rental.ArchivedTenant) error {
	return r.db.WithContext(ctx).Create(models.ArchivedTenantModelFromDomain(archived)).Error
}

// SavePayment inserts a payment snapshot
func (r *GormArchiveRepository) SavePayment(ctx context.Context, archived *rental.ArchivedPayment) error {
	return r.db.WithContext(ctx).Create(models.ArchivedPaymentModelFromDomain(archived)).Error
}

// FindTenants lists archived tenants, newest first
func (r *GormArchiveRepository) FindTenants(ctx context.Context, filter rental.ArchiveFilter) ([]rental.ArchivedTenant, error) {
	filter.Filter = filter.Filter.Normalize()

	var archivedModels []models.ArchivedTenantModel
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ArchivedTenantModel{}), filter, false).
		Order(archiveSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&archivedModels).Error; err != nil {
		return nil, err
	}

	archived := make([]rental.ArchivedTenant, len(archivedModels))
	for i := range archivedModels {
		archived[i] = *archivedModels[i].ToDomain()
	}
	return archived, nil
}

// FindPayments lists archived payments, newest first
func (r *GormArchiveRepository) FindPayments(ctx context.Context, filter rental.ArchiveFilter) ([]rental.ArchivedPayment, error) {
	filter.Filter = filter.Filter.Normalize()

	var archivedModels []models.ArchivedPaymentModel
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ArchivedPaymentModel{}), filter, true).
		Order(archiveSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&archivedModels).Error; err != nil {
		return nil, err
	}

	archived := make([]rental.ArchivedPayment, len(archivedModels))
	for i := range archivedModels {
		archived[i] = *archivedModels[i].ToDomain()
	}
	return archived, nil
}

// CountTenants counts archived tenants matching the filter
func (r *GormArchiveRepository) CountTenants(ctx context.Context, filter rental.ArchiveFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ArchivedTenantModel{}), filter, false).
		Count(&count).Error
	return count, err
}

// CountPayments counts archived payments matching the filter
func (r *GormArchiveRepository) CountPayments(ctx context.Context, filter rental.ArchiveFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ArchivedPaymentModel{}), filter, true).
		Count(&count).Error
	return count, err
}

func (r *GormArchiveRepository) applyFilter(query *gorm.DB, filter rental.ArchiveFilter, payments bool) *gorm.DB {
	if filter.OriginalID != nil {
		query = query.Where("original_id = ?", *filter.OriginalID)
	}
	if payments && filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	return query
}

// Ensure GormArchiveRepository implements rental.ArchiveRepository
var _ rental.ArchiveRepository = (*GormArchiveRepository)(nil)

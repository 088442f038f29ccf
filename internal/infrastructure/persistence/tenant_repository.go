package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTenantRepository implements rental.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a tenant and takes a row lock (SELECT ... FOR UPDATE)
func (r *GormTenantRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*rental.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds tenants matching the filter
func (r *GormTenantRepository) FindAll(ctx context.Context, filter rental.TenantFilter) ([]rental.Tenant, error) {
	filter.Filter = filter.Filter.Normalize()

	var tenantModels []models.TenantModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TenantModel{}), filter).
		Order(tenantSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)

	if err := query.Find(&tenantModels).Error; err != nil {
		return nil, err
	}
	return tenantsToDomain(tenantModels), nil
}

// FindByStatuses finds every tenant in any of the given statuses, oldest first
func (r *GormTenantRepository) FindByStatuses(ctx context.Context, statuses ...rental.RentStatus) ([]rental.Tenant, error) {
	if len(statuses) == 0 {
		return []rental.Tenant{}, nil
	}

	var tenantModels []models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC, id ASC").
		Find(&tenantModels).Error; err != nil {
		return nil, err
	}
	return tenantsToDomain(tenantModels), nil
}

// ListIDs returns every tenant ID, oldest first
func (r *GormTenantRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Order("created_at ASC, id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Count counts tenants matching the filter
func (r *GormTenantRepository) Count(ctx context.Context, filter rental.TenantFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.TenantModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts tenants per status. Every status is present in the result.
func (r *GormTenantRepository) CountByStatus(ctx context.Context) (map[rental.RentStatus]int64, error) {
	var rows []struct {
		Status rental.RentStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[rental.RentStatus]int64, len(rental.AllRentStatuses()))
	for _, status := range rental.AllRentStatuses() {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Totals sums rent and outstanding balances across all tenants
func (r *GormTenantRepository) Totals(ctx context.Context) (rental.TenantTotals, error) {
	var result struct {
		RentRoll    decimal.Decimal
		Outstanding decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Select("COALESCE(SUM(rent_amount), 0) as rent_roll, COALESCE(SUM(amount_due), 0) as outstanding").
		Scan(&result).Error; err != nil {
		return rental.TenantTotals{}, err
	}
	return rental.TenantTotals{RentRoll: result.RentRoll, Outstanding: result.Outstanding}, nil
}

// Create inserts a new tenant
func (r *GormTenantRepository) Create(ctx context.Context, tenant *rental.Tenant) error {
	return r.db.WithContext(ctx).Create(models.TenantModelFromDomain(tenant)).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormTenantRepository) SaveWithLock(ctx context.Context, tenant *rental.Tenant) error {
	result := r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Where("id = ? AND version = ?", tenant.ID, tenant.Version-1).
		Updates(map[string]any{
			"name":            tenant.Name,
			"phone":           tenant.Phone,
			"unit_number":     tenant.UnitNumber,
			"rent_amount":     tenant.RentAmount,
			"due_day":         tenant.DueDay,
			"amount_due":      tenant.AmountDue,
			"status":          tenant.Status,
			"last_payment_at": tenant.LastPaymentAt,
			"cycle_start":     tenant.CycleStart,
			"version":         tenant.Version,
			"updated_at":      tenant.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Tenant was modified by another transaction")
	}
	return nil
}

// applyFilter applies search and status filters without pagination
func (r *GormTenantRepository) applyFilter(query *gorm.DB, filter rental.TenantFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(unit_number) LIKE ? OR phone LIKE ?",
			pattern, pattern, pattern)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	return query
}

func tenantsToDomain(tenantModels []models.TenantModel) []rental.Tenant {
	tenants := make([]rental.Tenant, len(tenantModels))
	for i := range tenantModels {
		tenants[i] = *tenantModels[i].ToDomain()
	}
	return tenants
}

// Ensure GormTenantRepository implements rental.TenantRepository
var _ rental.TenantRepository = (*GormTenantRepository)(nil)

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements rental.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenant finds every payment of a tenant, oldest first
func (r *GormPaymentRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]rental.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("paid_at ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(paymentModels), nil
}

// FindAll finds payments matching the filter
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter rental.PaymentFilter) ([]rental.Payment, error) {
	filter.Filter = filter.Filter.Normalize()

	var paymentModels []models.PaymentModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PaymentModel{}), filter).
		Order(paymentSort.order(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(paymentModels), nil
}

// Count counts payments matching the filter
func (r *GormPaymentRepository) Count(ctx context.Context, filter rental.PaymentFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PaymentModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindPaidAtBefore finds payments made before cutoff, oldest first
func (r *GormPaymentRepository) FindPaidAtBefore(ctx context.Context, cutoff time.Time) ([]rental.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("paid_at < ?", cutoff).
		Order("paid_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(paymentModels), nil
}

// FindReceivedBetween finds received payments with paid_at in [from, to)
func (r *GormPaymentRepository) FindReceivedBetween(ctx context.Context, from, to time.Time) ([]rental.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.received(ctx, from, to).
		Order("paid_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(paymentModels), nil
}

// SumReceivedBetween sums received payments with paid_at in [from, to)
func (r *GormPaymentRepository) SumReceivedBetween(ctx context.Context, from, to time.Time) (rental.IncomeSummary, error) {
	var result struct {
		Total decimal.Decimal
		Count int64
	}
	if err := r.received(ctx, from, to).
		Select("COALESCE(SUM(amount), 0) as total, COUNT(*) as count").
		Scan(&result).Error; err != nil {
		return rental.IncomeSummary{}, err
	}
	return rental.IncomeSummary{Total: result.Total, Count: result.Count}, nil
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *rental.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

func (r *GormPaymentRepository) received(ctx context.Context, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("status = ? AND paid_at >= ? AND paid_at < ?", rental.PaymentStatusPaid, from, to)
}

// applyFilter applies filters without pagination
func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter rental.PaymentFilter) *gorm.DB {
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("payment_type = ?", *filter.Type)
	}
	if filter.From != nil {
		query = query.Where("paid_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("paid_at < ?", *filter.To)
	}
	return query
}

func paymentsToDomain(paymentModels []models.PaymentModel) []rental.Payment {
	payments := make([]rental.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments
}

// Ensure GormPaymentRepository implements rental.PaymentRepository
var _ rental.PaymentRepository = (*GormPaymentRepository)(nil)

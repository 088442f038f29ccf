package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSMSLogRepository implements rental.SMSLogRepository using GORM
type GormSMSLogRepository struct {
	db *gorm.DB
}

// NewGormSMSLogRepository creates a new GormSMSLogRepository
func NewGormSMSLogRepository(db *gorm.DB) *GormSMSLogRepository {
	return &GormSMSLogRepository{db: db}
}

// Create appends an attempt
func (r *GormSMSLogRepository) Create(ctx context.Context, entry *rental.SMSLog) error {
	return r.db.WithContext(ctx).Create(models.SMSLogModelFromDomain(entry)).Error
}

// FindByTenant lists a tenant's attempts, newest first. limit <= 0 means 50.
func (r *GormSMSLogRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]rental.SMSLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var logModels []models.SMSLogModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	logs := make([]rental.SMSLog, len(logModels))
	for i := range logModels {
		logs[i] = *logModels[i].ToDomain()
	}
	return logs, nil
}

// Stats counts attempts by outcome
func (r *GormSMSLogRepository) Stats(ctx context.Context) (rental.SMSStats, error) {
	var rows []struct {
		Status rental.SMSOutcome
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.SMSLogModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return rental.SMSStats{}, err
	}

	var stats rental.SMSStats
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case rental.SMSOutcomeSuccess:
			stats.Successful += row.Count
		case rental.SMSOutcomeFailure:
			stats.Failed += row.Count
		}
	}
	return stats, nil
}

// Ensure GormSMSLogRepository implements rental.SMSLogRepository
var _ rental.SMSLogRepository = (*GormSMSLogRepository)(nil)

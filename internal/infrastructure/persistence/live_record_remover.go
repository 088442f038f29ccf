package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// gormLiveRecordRemover deletes live rows. It is only constructed by the
// ledger transaction scope, next to the archive writes it must follow.
type gormLiveRecordRemover struct {
	db *gorm.DB
}

// DeleteTenant removes a tenant row
func (r *gormLiveRecordRemover) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TenantModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeletePayment removes a payment row
func (r *gormLiveRecordRemover) DeletePayment(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ rental.LiveRecordRemover = (*gormLiveRecordRemover)(nil)

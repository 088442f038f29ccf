package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
)

// TenantHistoryModel is one row of the tenant audit trail. TenantID carries
// no foreign key so entries survive the tenant's deletion.
type TenantHistoryModel struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	TenantName  string              `gorm:"type:varchar(100);not null"`
	UnitNumber  string              `gorm:"column:unit_number;type:varchar(20)"`
	Action      rental.TenantAction `gorm:"type:varchar(30);not null;index"`
	Description string              `gorm:"type:text;not null"`
	OldValue    string              `gorm:"type:text"`
	NewValue    string              `gorm:"type:text"`
	ChangedBy   string              `gorm:"type:varchar(100);not null"`
	ChangedAt   time.Time           `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (TenantHistoryModel) TableName() string {
	return "tenant_histories"
}

// ToDomain converts the persistence model to a domain TenantHistory.
func (m *TenantHistoryModel) ToDomain() *rental.TenantHistory {
	return &rental.TenantHistory{
		ID:          m.ID,
		TenantID:    m.TenantID,
		TenantName:  m.TenantName,
		UnitNumber:  m.UnitNumber,
		Action:      m.Action,
		Description: m.Description,
		OldValue:    m.OldValue,
		NewValue:    m.NewValue,
		ChangedBy:   m.ChangedBy,
		ChangedAt:   m.ChangedAt,
	}
}

// TenantHistoryModelFromDomain creates a persistence model from a domain TenantHistory.
func TenantHistoryModelFromDomain(h *rental.TenantHistory) *TenantHistoryModel {
	return &TenantHistoryModel{
		ID:          h.ID,
		TenantID:    h.TenantID,
		TenantName:  h.TenantName,
		UnitNumber:  h.UnitNumber,
		Action:      h.Action,
		Description: h.Description,
		OldValue:    h.OldValue,
		NewValue:    h.NewValue,
		ChangedBy:   h.ChangedBy,
		ChangedAt:   h.ChangedAt,
	}
}

// PaymentHistoryModel is one row of the payment audit trail.
type PaymentHistoryModel struct {
	ID            uuid.UUID            `gorm:"type:uuid;primary_key"`
	PaymentID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	TenantID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	TenantName    string               `gorm:"type:varchar(100);not null"`
	UnitNumber    string               `gorm:"column:unit_number;type:varchar(20)"`
	PaymentAmount decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Action        rental.PaymentAction `gorm:"type:varchar(30);not null"`
	Description   string               `gorm:"type:text;not null"`
	OldValue      string               `gorm:"type:text"`
	NewValue      string               `gorm:"type:text"`
	ChangedBy     string               `gorm:"type:varchar(100);not null"`
	ChangedAt     time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PaymentHistoryModel) TableName() string {
	return "payment_histories"
}

// ToDomain converts the persistence model to a domain PaymentHistory.
func (m *PaymentHistoryModel) ToDomain() *rental.PaymentHistory {
	return &rental.PaymentHistory{
		ID:            m.ID,
		PaymentID:     m.PaymentID,
		TenantID:      m.TenantID,
		TenantName:    m.TenantName,
		UnitNumber:    m.UnitNumber,
		PaymentAmount: m.PaymentAmount,
		Action:        m.Action,
		Description:   m.Description,
		OldValue:      m.OldValue,
		NewValue:      m.NewValue,
		ChangedBy:     m.ChangedBy,
		ChangedAt:     m.ChangedAt,
	}
}

// PaymentHistoryModelFromDomain creates a persistence model from a domain PaymentHistory.
func PaymentHistoryModelFromDomain(h *rental.PaymentHistory) *PaymentHistoryModel {
	return &PaymentHistoryModel{
		ID:            h.ID,
		PaymentID:     h.PaymentID,
		TenantID:      h.TenantID,
		TenantName:    h.TenantName,
		UnitNumber:    h.UnitNumber,
		PaymentAmount: h.PaymentAmount,
		Action:        h.Action,
		Description:   h.Description,
		OldValue:      h.OldValue,
		NewValue:      h.NewValue,
		ChangedBy:     h.ChangedBy,
		ChangedAt:     h.ChangedAt,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
)

// ArchivedTenantModel stores a deleted tenant. Rows are insert-only.
type ArchivedTenantModel struct {
	ID                uuid.UUID         `gorm:"type:uuid;primary_key"`
	OriginalID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Name              string            `gorm:"type:varchar(100);not null"`
	Phone             string            `gorm:"type:varchar(20);not null"`
	UnitNumber        string            `gorm:"column:unit_number;type:varchar(20);not null"`
	RentAmount        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	DueDay            int               `gorm:"not null"`
	AmountDue         decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Status            rental.RentStatus `gorm:"type:varchar(20);not null"`
	LastPaymentAt     *time.Time
	CycleStart        time.Time `gorm:"not null"`
	Version           int       `gorm:"not null"`
	OriginalCreatedAt time.Time `gorm:"not null"`
	OriginalUpdatedAt time.Time `gorm:"not null"`
	ArchivedAt        time.Time `gorm:"not null;index"`
	ArchivedBy        string    `gorm:"type:varchar(100);not null"`
	ArchiveReason     string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (ArchivedTenantModel) TableName() string {
	return "archived_tenants"
}

// ToDomain converts the persistence model to a domain ArchivedTenant.
func (m *ArchivedTenantModel) ToDomain() *rental.ArchivedTenant {
	return &rental.ArchivedTenant{
		ID:                m.ID,
		OriginalID:        m.OriginalID,
		Name:              m.Name,
		Phone:             m.Phone,
		UnitNumber:        m.UnitNumber,
		RentAmount:        m.RentAmount,
		DueDay:            m.DueDay,
		AmountDue:         m.AmountDue,
		Status:            m.Status,
		LastPaymentAt:     m.LastPaymentAt,
		CycleStart:        m.CycleStart,
		Version:           m.Version,
		OriginalCreatedAt: m.OriginalCreatedAt,
		OriginalUpdatedAt: m.OriginalUpdatedAt,
		ArchivedAt:        m.ArchivedAt,
		ArchivedBy:        m.ArchivedBy,
		ArchiveReason:     m.ArchiveReason,
	}
}

// ArchivedTenantModelFromDomain creates a persistence model from a domain ArchivedTenant.
func ArchivedTenantModelFromDomain(a *rental.ArchivedTenant) *ArchivedTenantModel {
	return &ArchivedTenantModel{
		ID:                a.ID,
		OriginalID:        a.OriginalID,
		Name:              a.Name,
		Phone:             a.Phone,
		UnitNumber:        a.UnitNumber,
		RentAmount:        a.RentAmount,
		DueDay:            a.DueDay,
		AmountDue:         a.AmountDue,
		Status:            a.Status,
		LastPaymentAt:     a.LastPaymentAt,
		CycleStart:        a.CycleStart,
		Version:           a.Version,
		OriginalCreatedAt: a.OriginalCreatedAt,
		OriginalUpdatedAt: a.OriginalUpdatedAt,
		ArchivedAt:        a.ArchivedAt,
		ArchivedBy:        a.ArchivedBy,
		ArchiveReason:     a.ArchiveReason,
	}
}

// ArchivedPaymentModel stores a deleted payment. Rows are insert-only.
type ArchivedPaymentModel struct {
	ID                uuid.UUID            `gorm:"type:uuid;primary_key"`
	OriginalID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	TenantID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	TenantName        string               `gorm:"type:varchar(100);not null"`
	TenantUnitNumber  string               `gorm:"column:tenant_unit_number;type:varchar(20);not null"`
	Amount            decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Type              rental.PaymentType   `gorm:"column:payment_type;type:varchar(20);not null"`
	Status            rental.PaymentStatus `gorm:"type:varchar(20);not null"`
	PaidAt            time.Time            `gorm:"not null"`
	Notes             string               `gorm:"type:text"`
	OriginalCreatedAt time.Time            `gorm:"not null"`
	ArchivedAt        time.Time            `gorm:"not null;index"`
	ArchivedBy        string               `gorm:"type:varchar(100);not null"`
	ArchiveReason     string               `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (ArchivedPaymentModel) TableName() string {
	return "archived_payments"
}

// ToDomain converts the persistence model to a domain ArchivedPayment.
func (m *ArchivedPaymentModel) ToDomain() *rental.ArchivedPayment {
	return &rental.ArchivedPayment{
		ID:                m.ID,
		OriginalID:        m.OriginalID,
		TenantID:          m.TenantID,
		TenantName:        m.TenantName,
		TenantUnitNumber:  m.TenantUnitNumber,
		Amount:            m.Amount,
		Type:              m.Type,
		Status:            m.Status,
		PaidAt:            m.PaidAt,
		Notes:             m.Notes,
		OriginalCreatedAt: m.OriginalCreatedAt,
		ArchivedAt:        m.ArchivedAt,
		ArchivedBy:        m.ArchivedBy,
		ArchiveReason:     m.ArchiveReason,
	}
}

// ArchivedPaymentModelFromDomain creates a persistence model from a domain ArchivedPayment.
func ArchivedPaymentModelFromDomain(a *rental.ArchivedPayment) *ArchivedPaymentModel {
	return &ArchivedPaymentModel{
		ID:                a.ID,
		OriginalID:        a.OriginalID,
		TenantID:          a.TenantID,
		TenantName:        a.TenantName,
		TenantUnitNumber:  a.TenantUnitNumber,
		Amount:            a.Amount,
		Type:              a.Type,
		Status:            a.Status,
		PaidAt:            a.PaidAt,
		Notes:             a.Notes,
		OriginalCreatedAt: a.OriginalCreatedAt,
		ArchivedAt:        a.ArchivedAt,
		ArchivedBy:        a.ArchivedBy,
		ArchiveReason:     a.ArchiveReason,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
)

// TenantModel is the persistence model for the Tenant aggregate.
type TenantModel struct {
	AggregateModel
	Name          string            `gorm:"type:varchar(100);not null"`
	Phone         string            `gorm:"type:varchar(20);not null;index"`
	UnitNumber    string            `gorm:"column:unit_number;type:varchar(20);not null;index"`
	RentAmount    decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	DueDay        int               `gorm:"not null;default:1"`
	AmountDue     decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	Status        rental.RentStatus `gorm:"type:varchar(20);not null;default:'Unpaid';index"`
	LastPaymentAt *time.Time        `gorm:"column:last_payment_at"`
	CycleStart    time.Time         `gorm:"column:cycle_start;not null"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant.
func (m *TenantModel) ToDomain() *rental.Tenant {
	return &rental.Tenant{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Phone:             m.Phone,
		UnitNumber:        m.UnitNumber,
		RentAmount:        m.RentAmount,
		DueDay:            m.DueDay,
		AmountDue:         m.AmountDue,
		Status:            m.Status,
		LastPaymentAt:     m.LastPaymentAt,
		CycleStart:        m.CycleStart,
	}
}

// FromDomain populates the persistence model from a domain Tenant.
func (m *TenantModel) FromDomain(t *rental.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.Phone = t.Phone
	m.UnitNumber = t.UnitNumber
	m.RentAmount = t.RentAmount
	m.DueDay = t.DueDay
	m.AmountDue = t.AmountDue
	m.Status = t.Status
	m.LastPaymentAt = t.LastPaymentAt
	m.CycleStart = t.CycleStart
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant.
func TenantModelFromDomain(t *rental.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

// PaymentModel is the persistence model for a Payment.
type PaymentModel struct {
	BaseModel
	TenantID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Type     rental.PaymentType   `gorm:"column:payment_type;type:varchar(20);not null;default:'Full'"`
	Status   rental.PaymentStatus `gorm:"type:varchar(20);not null;default:'Paid';index"`
	PaidAt   time.Time            `gorm:"not null;index"`
	Notes    string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *rental.Payment {
	return &rental.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Amount:     m.Amount,
		Type:       m.Type,
		Status:     m.Status,
		PaidAt:     m.PaidAt,
		Notes:      m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *rental.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.TenantID = p.TenantID
	m.Amount = p.Amount
	m.Type = p.Type
	m.Status = p.Status
	m.PaidAt = p.PaidAt
	m.Notes = p.Notes
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *rental.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

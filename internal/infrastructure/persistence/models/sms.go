package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
)

// SMSLogModel records one notification attempt
type SMSLogModel struct {
	ID       uuid.UUID          `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Phone    string             `gorm:"type:varchar(20);not null"`
	Kind     rental.MessageKind `gorm:"column:message_type;type:varchar(30);not null"`
	Message  string             `gorm:"type:text;not null"`
	Outcome  rental.SMSOutcome  `gorm:"column:status;type:varchar(20);not null;index"`
	Detail   string             `gorm:"column:response;type:text"`
	SentAt   time.Time          `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SMSLogModel) TableName() string {
	return "sms_logs"
}

// ToDomain converts the persistence model to a domain SMSLog.
func (m *SMSLogModel) ToDomain() *rental.SMSLog {
	return &rental.SMSLog{
		ID:       m.ID,
		TenantID: m.TenantID,
		Phone:    m.Phone,
		Kind:     m.Kind,
		Message:  m.Message,
		Outcome:  m.Outcome,
		Detail:   m.Detail,
		SentAt:   m.SentAt,
	}
}

// SMSLogModelFromDomain creates a persistence model from a domain SMSLog.
func SMSLogModelFromDomain(l *rental.SMSLog) *SMSLogModel {
	return &SMSLogModel{
		ID:       l.ID,
		TenantID: l.TenantID,
		Phone:    l.Phone,
		Kind:     l.Kind,
		Message:  l.Message,
		Outcome:  l.Outcome,
		Detail:   l.Detail,
		SentAt:   l.SentAt,
	}
}

// AllModels lists every model, in creation order, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&TenantModel{},
		&PaymentModel{},
		&ArchivedTenantModel{},
		&ArchivedPaymentModel{},
		&TenantHistoryModel{},
		&PaymentHistoryModel{},
		&SMSLogModel{},
	}
}

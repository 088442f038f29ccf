package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultHistoryLimit is the number of SMS log rows returned when no limit is given
const DefaultHistoryLimit = 50

// TenantFinder is the slice of the tenant repository notifications need
type TenantFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*rental.Tenant, error)
	FindByStatuses(ctx context.Context, statuses ...rental.RentStatus) ([]rental.Tenant, error)
}

// SMSLogStore records delivery attempts
type SMSLogStore interface {
	Create(ctx context.Context, entry *rental.SMSLog) error
	FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]rental.SMSLog, error)
}

// NotificationService sends text messages to tenants. Every attempt is
// logged; a provider failure is reported in the DeliveryResult and never
// returned as an error.
type NotificationService struct {
	tenants     TenantFinder
	logs        SMSLogStore
	notifier    rental.Notifier
	countryCode string
	logger      *zap.Logger
	now         func() time.Time
}

// NewNotificationService creates a new NotificationService. countryCode is
// the calling code used to normalise local phone numbers.
func NewNotificationService(tenants TenantFinder, logs SMSLogStore, notifier rental.Notifier, countryCode string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		tenants:     tenants,
		logs:        logs,
		notifier:    notifier,
		countryCode: countryCode,
		logger:      logger,
		now:         time.Now,
	}
}

// SendRentReminder reminds a tenant that rent is coming due
func (s *NotificationService) SendRentReminder(ctx context.Context, tenantID uuid.UUID) (*DeliveryResult, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	result := s.deliver(ctx, tenant.ID, tenant.Phone, rental.MessageKindRentReminder, rental.RentReminderMessage(tenant))
	return &result, nil
}

// SendBalanceReminder asks a tenant to settle what they still owe
func (s *NotificationService) SendBalanceReminder(ctx context.Context, tenantID uuid.UUID) (*DeliveryResult, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.AmountDue.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "tenant has no outstanding balance")
	}
	result := s.deliver(ctx, tenant.ID, tenant.Phone, rental.MessageKindBalanceReminder, rental.BalanceReminderMessage(tenant))
	return &result, nil
}

// SendPaymentConfirmation thanks a tenant for a payment of amount,
// quoting their current balance.
func (s *NotificationService) SendPaymentConfirmation(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) (*DeliveryResult, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	result := s.Confirm(ctx, PaymentConfirmation{
		TenantID:   tenant.ID,
		Name:       tenant.Name,
		Phone:      tenant.Phone,
		UnitNumber: tenant.UnitNumber,
		Amount:     amount,
		Remaining:  tenant.AmountDue,
	})
	return &result, nil
}

// Confirm sends a payment confirmation from already-known details
func (s *NotificationService) Confirm(ctx context.Context, c PaymentConfirmation) DeliveryResult {
	message := rental.PaymentConfirmationMessage(c.Name, c.UnitNumber, c.Amount, c.Remaining)
	return s.deliver(ctx, c.TenantID, c.Phone, rental.MessageKindPaymentConfirmation, message)
}

// SendCustomMessage sends free text to a tenant
func (s *NotificationService) SendCustomMessage(ctx context.Context, tenantID uuid.UUID, message string) (*DeliveryResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "message cannot be empty")
	}
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	result := s.deliver(ctx, tenant.ID, tenant.Phone, rental.MessageKindCustom, message)
	return &result, nil
}

// SendBulkReminders reminds every tenant in the given statuses (Unpaid,
// Partial and Overdue when none are given). Unpaid tenants get a rent
// reminder and the others a balance reminder.
func (s *NotificationService) SendBulkReminders(ctx context.Context, statuses []rental.RentStatus) (*BulkResult, error) {
	if len(statuses) == 0 {
		statuses = []rental.RentStatus{rental.RentStatusUnpaid, rental.RentStatusPartial, rental.RentStatusOverdue}
	}
	for _, status := range statuses {
		if !status.Outstanding() {
			return nil, shared.NewDomainError(shared.CodeInvalidArgument, "reminders can only target tenants who owe rent")
		}
	}

	tenants, err := s.tenants.FindByStatuses(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return s.remindAll(ctx, tenants), nil
}

// SendUpcomingReminders sends a rent reminder to every tenant still owing
// money whose open cycle falls due exactly daysBefore days after today.
func (s *NotificationService) SendUpcomingReminders(ctx context.Context, today time.Time, daysBefore int) (*BulkResult, error) {
	if daysBefore < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "days before cannot be negative")
	}
	tenants, err := s.tenants.FindByStatuses(ctx, rental.RentStatusUnpaid, rental.RentStatusPartial)
	if err != nil {
		return nil, err
	}

	target := today.AddDate(0, 0, daysBefore)
	due := make([]rental.Tenant, 0, len(tenants))
	for i := range tenants {
		date, err := tenants[i].CurrentDueDate()
		if err != nil || !rental.SameDay(date, target) {
			continue
		}
		due = append(due, tenants[i])
	}
	return s.remindAll(ctx, due), nil
}

// History returns a tenant's most recent delivery attempts
func (s *NotificationService) History(ctx context.Context, tenantID uuid.UUID, limit int) ([]SMSLogResponse, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	entries, err := s.logs.FindByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SMSLogResponse, len(entries))
	for i, e := range entries {
		out[i] = ToSMSLogResponse(e)
	}
	return out, nil
}

func (s *NotificationService) remindAll(ctx context.Context, tenants []rental.Tenant) *BulkResult {
	report := &BulkResult{Results: make([]DeliveryResult, 0, len(tenants))}
	for i := range tenants {
		if ctx.Err() != nil {
			break
		}
		t := &tenants[i]
		kind, message := rental.MessageKindRentReminder, rental.RentReminderMessage(t)
		if t.Status != rental.RentStatusUnpaid {
			kind, message = rental.MessageKindBalanceReminder, rental.BalanceReminderMessage(t)
		}
		result := s.deliver(ctx, t.ID, t.Phone, kind, message)
		report.add(result)
	}

	s.logger.Info("Reminders sent",
		zap.Int("attempted", report.Attempted),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed))
	return report
}

// deliver makes one attempt and logs it
func (s *NotificationService) deliver(ctx context.Context, tenantID uuid.UUID, phone string, kind rental.MessageKind, message string) DeliveryResult {
	normalized := rental.NormalizePhone(phone, s.countryCode)

	var (
		ok     bool
		detail string
	)
	if normalized == "" {
		detail = "tenant has no phone number"
	} else {
		var err error
		ok, detail, err = s.notifier.Notify(ctx, normalized, message)
		if err != nil {
			ok, detail = false, err.Error()
		}
	}

	if !ok {
		s.logger.Warn("SMS delivery failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("kind", string(kind)),
			zap.String("detail", detail))
	}

	entry := rental.NewSMSLog(tenantID, normalized, kind, message, ok, detail, s.now())
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to record SMS attempt",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}

	return DeliveryResult{
		TenantID: tenantID,
		Phone:    normalized,
		Kind:     string(kind),
		OK:       ok,
		Detail:   detail,
	}
}

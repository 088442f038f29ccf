package rental

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SystemActor is recorded when no person is attributed to a change
const SystemActor = "System"

// Default archive reasons
const (
	ReasonTenantDeleted  = "Tenant deleted"
	ReasonPaymentDeleted = "Payment deleted"
)

// EntityKind names the kinds of live records that can be archived
type EntityKind string

const (
	EntityKindTenant  EntityKind = "tenant"
	EntityKindPayment EntityKind = "payment"
)

// EntityRef points at a live record to archive and delete
type EntityRef struct {
	Kind EntityKind
	ID   uuid.UUID
}

// TenantRef references a tenant
func TenantRef(id uuid.UUID) EntityRef {
	return EntityRef{Kind: EntityKindTenant, ID: id}
}

// PaymentRef references a payment
func PaymentRef(id uuid.UUID) EntityRef {
	return EntityRef{Kind: EntityKindPayment, ID: id}
}

// Validate checks that the reference can be resolved
func (r EntityRef) Validate() error {
	if r.Kind != EntityKindTenant && r.Kind != EntityKindPayment {
		return shared.NewDomainError(shared.CodeInvalidArgument, fmt.Sprintf("unknown entity kind %q", r.Kind))
	}
	if r.ID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidArgument, "entity id is required")
	}
	return nil
}

func (r EntityRef) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}

// ArchiveMetadata says who archived a record, why, and when
type ArchiveMetadata struct {
	Actor  string
	Reason string
	At     time.Time
}

// NewArchiveMetadata fills in the system actor and default reason when blank
func NewArchiveMetadata(actor, reason, defaultReason string, at time.Time) ArchiveMetadata {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = SystemActor
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultReason
	}
	return ArchiveMetadata{Actor: actor, Reason: reason, At: at}
}

// ArchivedTenant is an immutable copy of a deleted tenant
type ArchivedTenant struct {
	ID                uuid.UUID
	OriginalID        uuid.UUID
	Name              string
	Phone             string
	UnitNumber        string
	RentAmount        decimal.Decimal
	DueDay            int
	AmountDue         decimal.Decimal
	Status            RentStatus
	LastPaymentAt     *time.Time
	CycleStart        time.Time
	Version           int
	OriginalCreatedAt time.Time
	OriginalUpdatedAt time.Time
	ArchivedAt        time.Time
	ArchivedBy        string
	ArchiveReason     string
}

// NewArchivedTenant snapshots every field of t
func NewArchivedTenant(t *Tenant, meta ArchiveMetadata) *ArchivedTenant {
	var lastPayment *time.Time
	if t.LastPaymentAt != nil {
		at := *t.LastPaymentAt
		lastPayment = &at
	}
	return &ArchivedTenant{
		ID:                uuid.New(),
		OriginalID:        t.ID,
		Name:              t.Name,
		Phone:             t.Phone,
		UnitNumber:        t.UnitNumber,
		RentAmount:        t.RentAmount,
		DueDay:            t.DueDay,
		AmountDue:         t.AmountDue,
		Status:            t.Status,
		LastPaymentAt:     lastPayment,
		CycleStart:        t.CycleStart,
		Version:           t.Version,
		OriginalCreatedAt: t.CreatedAt,
		OriginalUpdatedAt: t.UpdatedAt,
		ArchivedAt:        meta.At,
		ArchivedBy:        meta.Actor,
		ArchiveReason:     meta.Reason,
	}
}

// ArchivedPayment is an immutable copy of a deleted payment. The owner's name
// and unit are copied so the record stays readable once the tenant is gone.
type ArchivedPayment struct {
	ID                uuid.UUID
	OriginalID        uuid.UUID
	TenantID          uuid.UUID
	TenantName        string
	TenantUnitNumber  string
	Amount            decimal.Decimal
	Type              PaymentType
	Status            PaymentStatus
	PaidAt            time.Time
	Notes             string
	OriginalCreatedAt time.Time
	ArchivedAt        time.Time
	ArchivedBy        string
	ArchiveReason     string
}

// NewArchivedPayment snapshots every field of p along with its owner's name
func NewArchivedPayment(p *Payment, owner *Tenant, meta ArchiveMetadata) *ArchivedPayment {
	return &ArchivedPayment{
		ID:                uuid.New(),
		OriginalID:        p.ID,
		TenantID:          p.TenantID,
		TenantName:        owner.Name,
		TenantUnitNumber:  owner.UnitNumber,
		Amount:            p.Amount,
		Type:              p.Type,
		Status:            p.Status,
		PaidAt:            p.PaidAt,
		Notes:             p.Notes,
		OriginalCreatedAt: p.CreatedAt,
		ArchivedAt:        meta.At,
		ArchivedBy:        meta.Actor,
		ArchiveReason:     meta.Reason,
	}
}

// TenantArchivedEvent is raised after a tenant and its payments were archived and removed
type TenantArchivedEvent struct {
	shared.BaseDomainEvent
	TenantID         uuid.UUID `json:"tenant_id"`
	Name             string    `json:"name"`
	ArchivedPayments int       `json:"archived_payments"`
	ArchivedBy       string    `json:"archived_by"`
	Reason           string    `json:"reason"`
}

// NewTenantArchivedEvent creates a new TenantArchivedEvent
func NewTenantArchivedEvent(a *ArchivedTenant, payments int) *TenantArchivedEvent {
	return &TenantArchivedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeTenantArchived, AggregateTypeTenant, a.OriginalID),
		TenantID:         a.OriginalID,
		Name:             a.Name,
		ArchivedPayments: payments,
		ArchivedBy:       a.ArchivedBy,
		Reason:           a.ArchiveReason,
	}
}

// PaymentArchivedEvent is raised after a single payment was archived and removed
type PaymentArchivedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	Amount     decimal.Decimal `json:"amount"`
	ArchivedBy string          `json:"archived_by"`
}

// NewPaymentArchivedEvent creates a new PaymentArchivedEvent
func NewPaymentArchivedEvent(a *ArchivedPayment) *PaymentArchivedEvent {
	return &PaymentArchivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentArchived, "Payment", a.OriginalID),
		PaymentID:       a.OriginalID,
		TenantID:        a.TenantID,
		Amount:          a.Amount,
		ArchivedBy:      a.ArchivedBy,
	}
}

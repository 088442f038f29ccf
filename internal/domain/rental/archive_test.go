package rental

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArchiveMetadata(t *testing.T) {
	at := date(2024, time.May, 1)

	meta := NewArchiveMetadata("", " ", ReasonTenantDeleted, at)
	assert.Equal(t, SystemActor, meta.Actor)
	assert.Equal(t, ReasonTenantDeleted, meta.Reason)
	assert.Equal(t, at, meta.At)

	meta = NewArchiveMetadata("landlord", "moved out", ReasonTenantDeleted, at)
	assert.Equal(t, "landlord", meta.Actor)
	assert.Equal(t, "moved out", meta.Reason)
}

func TestNewArchivedTenant_CopiesEveryField(t *testing.T) {
	tenant := newTestTenant(t, 15000, 5, date(2024, time.March, 10))
	require.NoError(t, tenant.ApplyPayment(decimal.NewFromInt(4000), date(2024, time.March, 11)))
	meta := NewArchiveMetadata("landlord", "moved out", ReasonTenantDeleted, date(2024, time.May, 1))

	archived := NewArchivedTenant(tenant, meta)

	assert.NotEqual(t, tenant.ID, archived.ID)
	assert.Equal(t, tenant.ID, archived.OriginalID)
	assert.Equal(t, tenant.Name, archived.Name)
	assert.Equal(t, tenant.Phone, archived.Phone)
	assert.Equal(t, tenant.UnitNumber, archived.UnitNumber)
	assert.True(t, tenant.RentAmount.Equal(archived.RentAmount))
	assert.True(t, tenant.AmountDue.Equal(archived.AmountDue))
	assert.Equal(t, tenant.DueDay, archived.DueDay)
	assert.Equal(t, tenant.Status, archived.Status)
	assert.Equal(t, tenant.CycleStart, archived.CycleStart)
	assert.Equal(t, tenant.Version, archived.Version)
	assert.Equal(t, tenant.CreatedAt, archived.OriginalCreatedAt)
	assert.Equal(t, tenant.UpdatedAt, archived.OriginalUpdatedAt)
	assert.Equal(t, "landlord", archived.ArchivedBy)
	assert.Equal(t, "moved out", archived.ArchiveReason)
	assert.Equal(t, meta.At, archived.ArchivedAt)

	require.NotNil(t, archived.LastPaymentAt)
	*tenant.LastPaymentAt = date(2030, time.January, 1)
	assert.Equal(t, date(2024, time.March, 11), *archived.LastPaymentAt)
}

func TestNewArchivedPayment_KeepsOwnerDetails(t *testing.T) {
	tenant := newTestTenant(t, 15000, 5, date(2024, time.March, 10))
	payment, err := NewPayment(tenant.ID, decimal.NewFromInt(2500), PaymentTypePartial, PaymentStatusPaid, "mpesa", date(2024, time.March, 12))
	require.NoError(t, err)

	archived := NewArchivedPayment(payment, tenant, NewArchiveMetadata("", "", ReasonPaymentDeleted, date(2024, time.May, 1)))

	assert.Equal(t, payment.ID, archived.OriginalID)
	assert.Equal(t, tenant.ID, archived.TenantID)
	assert.Equal(t, "Jane Wanjiku", archived.TenantName)
	assert.Equal(t, "A4", archived.TenantUnitNumber)
	assert.True(t, archived.Amount.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, PaymentTypePartial, archived.Type)
	assert.Equal(t, PaymentStatusPaid, archived.Status)
	assert.Equal(t, payment.PaidAt, archived.PaidAt)
	assert.Equal(t, "mpesa", archived.Notes)
	assert.Equal(t, SystemActor, archived.ArchivedBy)
	assert.Equal(t, ReasonPaymentDeleted, archived.ArchiveReason)
}

func TestEntityRef_Validate(t *testing.T) {
	assert.NoError(t, TenantRef(uuid.New()).Validate())
	assert.NoError(t, PaymentRef(uuid.New()).Validate())
	assert.Error(t, TenantRef(uuid.Nil).Validate())
	assert.Error(t, EntityRef{Kind: "lease", ID: uuid.New()}.Validate())
}

func TestDeletionHistory(t *testing.T) {
	tenant := newTestTenant(t, 15000, 5, date(2024, time.March, 10))
	payment, err := NewPayment(tenant.ID, decimal.NewFromInt(15000), "", "", "", date(2024, time.March, 12))
	require.NoError(t, err)
	meta := NewArchiveMetadata("caretaker", "", ReasonTenantDeleted, date(2024, time.May, 1))

	th := TenantDeletedHistory(tenant, meta)
	assert.Equal(t, TenantActionDeleted, th.Action)
	assert.Equal(t, "Tenant Jane Wanjiku was deleted from apartment A4", th.Description)
	assert.Equal(t, "caretaker", th.ChangedBy)
	assert.Equal(t, tenant.ID, th.TenantID)

	ph := PaymentDeletedHistory(payment, tenant, meta)
	assert.Equal(t, PaymentActionDeleted, ph.Action)
	assert.Equal(t, "Payment of KSh 15,000.00 was deleted for Jane Wanjiku", ph.Description)
	assert.Equal(t, payment.ID, ph.PaymentID)
}

func TestStatusChangedHistory_Actions(t *testing.T) {
	tenant := newTestTenant(t, 15000, 5, date(2024, time.March, 10))
	at := date(2024, time.March, 11)

	tenant.Status = RentStatusPaid
	assert.Equal(t, TenantActionRentPaid, StatusChangedHistory(tenant, RentStatusPartial, false, at).Action)

	tenant.Status = RentStatusUnpaid
	assert.Equal(t, TenantActionRentUnpaid, StatusChangedHistory(tenant, RentStatusPaid, true, at).Action)

	tenant.Status = RentStatusOverdue
	h := StatusChangedHistory(tenant, RentStatusPartial, false, at)
	assert.Equal(t, TenantActionStatusChanged, h.Action)
	assert.Equal(t, "Partial", h.OldValue)
	assert.Equal(t, "Overdue", h.NewValue)
}

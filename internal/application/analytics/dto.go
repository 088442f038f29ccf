package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlyIncome is money received in one calendar month
type MonthlyIncome struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	MonthName    string          `json:"month_name"`
	Total        decimal.Decimal `json:"total"`
	PaymentCount int64           `json:"payment_count"`
}

// YearlyIncome is money received per month across one year
type YearlyIncome struct {
	Year   int             `json:"year"`
	Months []MonthlyIncome `json:"months"`
	Total  decimal.Decimal `json:"total"`
}

// TenantSummary describes the tenant book as a whole
type TenantSummary struct {
	TotalTenants     int64            `json:"total_tenants"`
	ByStatus         map[string]int64 `json:"by_status"`
	PaidTenants      int64            `json:"paid_tenants"`
	UnpaidTenants    int64            `json:"unpaid_tenants"`
	PartialTenants   int64            `json:"partial_tenants"`
	OverdueTenants   int64            `json:"overdue_tenants"`
	TotalRentRoll    decimal.Decimal  `json:"total_rent_roll"`
	TotalOutstanding decimal.Decimal  `json:"total_outstanding"`
	CollectionRate   decimal.Decimal  `json:"collection_rate"`
}

// DailyTotal is money received on one day
type DailyTotal struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// PaymentTrends is a zero-filled day-by-day series
type PaymentTrends struct {
	From  string          `json:"from"`
	To    string          `json:"to"`
	Days  []DailyTotal    `json:"days"`
	Total decimal.Decimal `json:"total"`
}

// OverdueTenant is one tenant past its due date with money owed
type OverdueTenant struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	UnitNumber  string          `json:"unit_number"`
	AmountDue   decimal.Decimal `json:"amount_due"`
	DueDate     string          `json:"due_date"`
	DaysOverdue int             `json:"days_overdue"`
}

// NotificationStats summarises SMS delivery
type NotificationStats struct {
	Total       int64           `json:"total"`
	Successful  int64           `json:"successful"`
	Failed      int64           `json:"failed"`
	SuccessRate decimal.Decimal `json:"success_rate"`
}

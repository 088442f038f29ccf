package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// MaxTrendDays bounds PaymentTrends
const MaxTrendDays = 366

// TenantReader is the slice of the tenant repository analytics needs
type TenantReader interface {
	CountByStatus(ctx context.Context) (map[rental.RentStatus]int64, error)
	Totals(ctx context.Context) (rental.TenantTotals, error)
	FindByStatuses(ctx context.Context, statuses ...rental.RentStatus) ([]rental.Tenant, error)
}

// IncomeReader is the slice of the payment repository analytics needs
type IncomeReader interface {
	SumReceivedBetween(ctx context.Context, from, to time.Time) (rental.IncomeSummary, error)
	FindReceivedBetween(ctx context.Context, from, to time.Time) ([]rental.Payment, error)
}

// SMSStatsReader provides delivery counts
type SMSStatsReader interface {
	Stats(ctx context.Context) (rental.SMSStats, error)
}

// AnalyticsService aggregates ledger data for reporting. It never writes.
type AnalyticsService struct {
	tenants  TenantReader
	payments IncomeReader
	sms      SMSStatsReader
	logger   *zap.Logger
	location *time.Location
}

// NewAnalyticsService creates a new AnalyticsService. Month and day
// boundaries are computed in loc (UTC when nil).
func NewAnalyticsService(tenants TenantReader, payments IncomeReader, sms SMSStatsReader, loc *time.Location, logger *zap.Logger) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		tenants:  tenants,
		payments: payments,
		sms:      sms,
		logger:   logger,
		location: loc,
	}
}

// MonthlyIncome sums received payments in [monthStart, nextMonthStart)
func (s *AnalyticsService) MonthlyIncome(ctx context.Context, year, month int) (*MonthlyIncome, error) {
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "month must be between 1 and 12")
	}
	if year < 1 {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "year must be positive")
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.location)
	summary, err := s.payments.SumReceivedBetween(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	return &MonthlyIncome{
		Year:         year,
		Month:        month,
		MonthName:    time.Month(month).String(),
		Total:        summary.Total,
		PaymentCount: summary.Count,
	}, nil
}

// YearlyIncome returns twelve monthly totals and their sum
func (s *AnalyticsService) YearlyIncome(ctx context.Context, year int) (*YearlyIncome, error) {
	result := &YearlyIncome{
		Year:   year,
		Months: make([]MonthlyIncome, 0, 12),
		Total:  decimal.Zero,
	}
	for month := 1; month <= 12; month++ {
		m, err := s.MonthlyIncome(ctx, year, month)
		if err != nil {
			return nil, err
		}
		result.Months = append(result.Months, *m)
		result.Total = result.Total.Add(m.Total)
	}
	return result, nil
}

// TenantSummary counts tenants per status and sums the money owed. The
// collection rate is the share of tenants fully paid, as a percentage.
func (s *AnalyticsService) TenantSummary(ctx context.Context) (*TenantSummary, error) {
	counts, err := s.tenants.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.tenants.Totals(ctx)
	if err != nil {
		return nil, err
	}

	summary := &TenantSummary{
		ByStatus:         make(map[string]int64, len(counts)),
		PaidTenants:      counts[rental.RentStatusPaid],
		UnpaidTenants:    counts[rental.RentStatusUnpaid],
		PartialTenants:   counts[rental.RentStatusPartial],
		OverdueTenants:   counts[rental.RentStatusOverdue],
		TotalRentRoll:    totals.RentRoll,
		TotalOutstanding: totals.Outstanding,
		CollectionRate:   decimal.Zero,
	}
	for status, n := range counts {
		summary.ByStatus[string(status)] = n
		summary.TotalTenants += n
	}
	summary.CollectionRate = percentage(summary.PaidTenants, summary.TotalTenants)
	return summary, nil
}

// PaymentTrends returns received totals for each of the last days days
// ending today, with empty days reported as zero.
func (s *AnalyticsService) PaymentTrends(ctx context.Context, days int, today time.Time) (*PaymentTrends, error) {
	if days < 1 || days > MaxTrendDays {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "days must be between 1 and 366")
	}

	end := rental.DateOf(today.In(s.location)).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	payments, err := s.payments.FindReceivedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	series := make([]DailyTotal, days)
	index := make(map[string]int, days)
	for i := range series {
		key := start.AddDate(0, 0, i).Format(dateLayout)
		series[i] = DailyTotal{Date: key, Total: decimal.Zero}
		index[key] = i
	}

	total := decimal.Zero
	for _, p := range payments {
		i, ok := index[p.PaidAt.In(s.location).Format(dateLayout)]
		if !ok {
			continue
		}
		series[i].Total = series[i].Total.Add(p.Amount)
		series[i].Count++
		total = total.Add(p.Amount)
	}

	return &PaymentTrends{
		From:  start.Format(dateLayout),
		To:    end.AddDate(0, 0, -1).Format(dateLayout),
		Days:  series,
		Total: total,
	}, nil
}

// OverdueTenants lists Overdue tenants, most overdue first
func (s *AnalyticsService) OverdueTenants(ctx context.Context, today time.Time) ([]OverdueTenant, error) {
	tenants, err := s.tenants.FindByStatuses(ctx, rental.RentStatusOverdue)
	if err != nil {
		return nil, err
	}

	result := make([]OverdueTenant, 0, len(tenants))
	for i := range tenants {
		t := &tenants[i]
		due, err := t.CurrentDueDate()
		if err != nil {
			s.logger.Warn("Skipping tenant with invalid due day",
				zap.String("tenant_id", t.ID.String()),
				zap.Error(err))
			continue
		}
		result = append(result, OverdueTenant{
			TenantID:    t.ID,
			Name:        t.Name,
			Phone:       t.Phone,
			UnitNumber:  t.UnitNumber,
			AmountDue:   t.AmountDue,
			DueDate:     due.Format(dateLayout),
			DaysOverdue: t.DaysOverdue(today),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DaysOverdue > result[j].DaysOverdue
	})
	return result, nil
}

// NotificationStats summarises SMS attempts
func (s *AnalyticsService) NotificationStats(ctx context.Context) (*NotificationStats, error) {
	stats, err := s.sms.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &NotificationStats{
		Total:       stats.Total,
		Successful:  stats.Successful,
		Failed:      stats.Failed,
		SuccessRate: percentage(stats.Successful, stats.Total),
	}, nil
}

// percentage returns part/whole*100 rounded to 2dp, or 0 for an empty whole
func percentage(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(whole)).Round(2)
}

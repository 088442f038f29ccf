package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"go.uber.org/zap"
)

// StatusRefreshFailure describes a tenant whose status could not be refreshed
type StatusRefreshFailure struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Error    string    `json:"error"`
}

// StatusRefreshReport is the outcome of a status refresh batch
type StatusRefreshReport struct {
	Today    time.Time              `json:"today"`
	Total    int                    `json:"total"`
	Changed  int                    `json:"changed"`
	Failures []StatusRefreshFailure `json:"failures"`
}

// StatusRefresher re-derives one tenant's status
type StatusRefresher interface {
	RefreshStatus(ctx context.Context, tenantID uuid.UUID, today time.Time) (bool, error)
}

// StatusRefreshService recomputes every tenant's stored status so that
// crossing a due date turns outstanding balances Overdue even when no
// payment arrives.
type StatusRefreshService struct {
	tenants   rental.TenantRepository
	refresher StatusRefresher
	logger    *zap.Logger
}

// NewStatusRefreshService creates a new StatusRefreshService
func NewStatusRefreshService(tenants rental.TenantRepository, refresher StatusRefresher, logger *zap.Logger) *StatusRefreshService {
	return &StatusRefreshService{
		tenants:   tenants,
		refresher: refresher,
		logger:    logger,
	}
}

// RefreshAll refreshes every tenant, each in its own transaction
func (s *StatusRefreshService) RefreshAll(ctx context.Context, today time.Time) (*StatusRefreshReport, error) {
	ids, err := s.tenants.ListIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list tenants for status refresh", zap.Error(err))
		return nil, err
	}

	report := &StatusRefreshReport{
		Today:    today,
		Total:    len(ids),
		Failures: make([]StatusRefreshFailure, 0),
	}

	for _, id := range ids {
		changed, err := s.refresher.RefreshStatus(ctx, id, today)
		if err != nil {
			report.Failures = append(report.Failures, StatusRefreshFailure{TenantID: id, Error: err.Error()})
			s.logger.Warn("Failed to refresh tenant status",
				zap.String("tenant_id", id.String()),
				zap.Error(err))
			continue
		}
		if changed {
			report.Changed++
		}
	}

	s.logger.Info("Status refresh completed",
		zap.Int("total", report.Total),
		zap.Int("changed", report.Changed),
		zap.Int("failed", len(report.Failures)))

	return report, nil
}

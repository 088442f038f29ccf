package tenancy

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/ledger"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TenantService handles tenant onboarding, edits and lookups. Balance
// movements go through ledger.LedgerService and deletions through
// ledger.ArchiveService.
type TenantService struct {
	tenants rental.TenantRepository
	history rental.HistoryRepository
	txScope ledger.TransactionScope
	events  shared.EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewTenantService creates a new TenantService. events may be nil.
func NewTenantService(
	tenants rental.TenantRepository,
	history rental.HistoryRepository,
	txScope ledger.TransactionScope,
	events shared.EventPublisher,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenants: tenants,
		history: history,
		txScope: txScope,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// Create adds a tenant owing a full month of rent
func (s *TenantService) Create(ctx context.Context, req CreateTenantRequest) (*TenantResponse, error) {
	now := s.now()
	tenant, err := rental.NewTenant(req.Name, req.Phone, req.UnitNumber, req.RentAmount, req.DueDay, now)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		if err := repos.Tenants().Create(ctx, tenant); err != nil {
			return err
		}
		if err := repos.History().AppendTenant(ctx, rental.TenantCreatedHistory(tenant)); err != nil {
			return fmt.Errorf("failed to record tenant creation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("unit_number", tenant.UnitNumber))

	s.publish(ctx, tenant.PullDomainEvents())
	resp := ToTenantResponse(tenant, now)
	return &resp, nil
}

// Update applies a partial update under the optimistic lock. Each kind of
// change is saved and recorded as its own step within one transaction.
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, req UpdateTenantRequest) (*TenantResponse, error) {
	if !req.HasChanges() {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "no fields to update")
	}

	now := s.now()
	var (
		snapshot *rental.Tenant
		events   []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		tenant, err := repos.Tenants().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		actor := req.Actor
		if actor == "" {
			actor = rental.SystemActor
		}
		step := &updateStep{ctx: ctx, repos: repos, tenant: tenant, actor: actor, at: now}

		if req.Name != nil || req.Phone != nil || req.UnitNumber != nil {
			name, phone, unit := valueOr(req.Name, tenant.Name), valueOr(req.Phone, tenant.Phone), valueOr(req.UnitNumber, tenant.UnitNumber)
			if name != tenant.Name || phone != tenant.Phone || unit != tenant.UnitNumber {
				before := tenant.String()
				if err := tenant.UpdateContact(name, phone, unit, now); err != nil {
					return err
				}
				description := fmt.Sprintf("Tenant details for %s were updated", tenant.Name)
				if err := step.save(rental.TenantActionUpdated, description, before, tenant.String()); err != nil {
					return err
				}
			}
		}

		if req.RentAmount != nil && !req.RentAmount.Equal(tenant.RentAmount) {
			oldRent, oldStatus := tenant.RentAmount, tenant.Status
			if err := tenant.ChangeRent(*req.RentAmount, now); err != nil {
				return err
			}
			description := fmt.Sprintf("Rent for %s changed from %s to %s",
				tenant.Name, rental.FormatAmount(oldRent), rental.FormatAmount(tenant.RentAmount))
			if err := step.save(rental.TenantActionAmountChanged, description, oldRent.StringFixed(2), tenant.RentAmount.StringFixed(2)); err != nil {
				return err
			}
			if err := step.recordStatus(oldStatus); err != nil {
				return err
			}
		}

		if req.DueDay != nil && *req.DueDay != tenant.DueDay {
			oldDay, oldStatus := tenant.DueDay, tenant.Status
			if err := tenant.ChangeDueDay(*req.DueDay, now); err != nil {
				return err
			}
			description := fmt.Sprintf("Due day for %s changed from %d to %d", tenant.Name, oldDay, tenant.DueDay)
			if err := step.save(rental.TenantActionDueDateChanged, description, strconv.Itoa(oldDay), strconv.Itoa(tenant.DueDay)); err != nil {
				return err
			}
			if err := step.recordStatus(oldStatus); err != nil {
				return err
			}
		}

		events = tenant.PullDomainEvents()
		snapshot = tenant.Clone()
		return nil
	})
	if err != nil {
		s.logger.Warn("Failed to update tenant",
			zap.String("tenant_id", id.String()),
			zap.Error(err))
		return nil, err
	}

	s.publish(ctx, events)
	resp := ToTenantResponse(snapshot, now)
	return &resp, nil
}

// Get returns one tenant
func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	tenant, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTenantResponse(tenant, s.now())
	return &resp, nil
}

// List returns a page of tenants matching the filter
func (s *TenantService) List(ctx context.Context, filter TenantListFilter) (shared.Paginated[TenantResponse], error) {
	domainFilter := rental.TenantFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
	}
	for _, value := range filter.Statuses {
		status, err := rental.ParseRentStatus(value)
		if err != nil {
			return shared.Paginated[TenantResponse]{}, err
		}
		domainFilter.Statuses = append(domainFilter.Statuses, status)
	}

	tenants, err := s.tenants.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[TenantResponse]{}, err
	}
	total, err := s.tenants.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[TenantResponse]{}, err
	}

	now := s.now()
	items := make([]TenantResponse, len(tenants))
	for i := range tenants {
		items[i] = ToTenantResponse(&tenants[i], now)
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// NextDueDate returns the next due date for a tenant as of asOf
// (today when asOf is zero).
func (s *TenantService) NextDueDate(ctx context.Context, id uuid.UUID, asOf time.Time) (*NextDueDateResponse, error) {
	tenant, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	due, err := tenant.UpcomingDueDate(asOf)
	if err != nil {
		return nil, err
	}
	return &NextDueDateResponse{
		TenantID:    tenant.ID,
		DueDay:      tenant.DueDay,
		AsOf:        asOf.Format(dateLayout),
		NextDueDate: due.Format(dateLayout),
	}, nil
}

// History returns a tenant's audit trail, newest first. It also works for
// tenants that have since been deleted.
func (s *TenantService) History(ctx context.Context, id uuid.UUID, filter shared.Filter) ([]TenantHistoryResponse, error) {
	entries, err := s.history.FindByTenant(ctx, id, filter.Normalize())
	if err != nil {
		return nil, err
	}
	return ToTenantHistoryResponses(entries), nil
}

func (s *TenantService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish tenant events", zap.Error(err))
	}
}

// updateStep saves one mutation of a locked tenant and records it
type updateStep struct {
	ctx    context.Context
	repos  ledger.TransactionalRepositories
	tenant *rental.Tenant
	actor  string
	at     time.Time
}

func (u *updateStep) save(action rental.TenantAction, description, oldValue, newValue string) error {
	if err := u.repos.Tenants().SaveWithLock(u.ctx, u.tenant); err != nil {
		return err
	}
	entry := rental.NewTenantHistory(u.tenant, action, description, u.at).
		WithChange(oldValue, newValue).
		By(u.actor)
	if err := u.repos.History().AppendTenant(u.ctx, entry); err != nil {
		return fmt.Errorf("failed to record tenant %s: %w", action, err)
	}
	return nil
}

func (u *updateStep) recordStatus(previous rental.RentStatus) error {
	if previous == u.tenant.Status {
		return nil
	}
	entry := rental.StatusChangedHistory(u.tenant, previous, false, u.at).By(u.actor)
	if err := u.repos.History().AppendTenant(u.ctx, entry); err != nil {
		return fmt.Errorf("failed to record status change: %w", err)
	}
	return nil
}

func valueOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

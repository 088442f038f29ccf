package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/ledger"
	"github.com/rentledger/backend/internal/application/tenancy"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func tenantRouter(tenants *MockTenantManager, archiver *MockArchiver) http.Handler {
	h := NewTenantHandler(tenants, archiver)
	r := newTestRouter()
	r.POST("/tenants", h.Create)
	r.GET("/tenants", h.List)
	r.POST("/tenants/bulk-delete", h.BulkDelete)
	r.GET("/tenants/:id", h.Get)
	r.PUT("/tenants/:id", h.Update)
	r.DELETE("/tenants/:id", h.Delete)
	r.GET("/tenants/:id/next-due-date", h.NextDueDate)
	r.GET("/tenants/:id/history", h.History)
	return r
}

func sampleTenant(id uuid.UUID) *tenancy.TenantResponse {
	return &tenancy.TenantResponse{
		ID:         id,
		Name:       "Jane Wanjiku",
		Phone:      "0712345678",
		UnitNumber: "A1",
		RentAmount: decimal.NewFromInt(15000),
		DueDay:     5,
		AmountDue:  decimal.NewFromInt(15000),
		Status:     string(rental.RentStatusUnpaid),
	}
}

func TestTenantHandler_Create(t *testing.T) {
	t.Run("creates tenant", func(t *testing.T) {
		tenants := new(MockTenantManager)
		id := uuid.New()
		tenants.On("Create", mock.Anything, mock.MatchedBy(func(req tenancy.CreateTenantRequest) bool {
			return req.Name == "Jane Wanjiku" && req.UnitNumber == "A1" && req.DueDay == 5 &&
				req.RentAmount.Equal(decimal.NewFromInt(15000))
		})).Return(sampleTenant(id), nil)

		w := doRequest(tenantRouter(tenants, nil), http.MethodPost, "/tenants",
			`{"name":"Jane Wanjiku","phone":"0712345678","unit_number":"A1","rent_amount":"15000","due_day":5}`)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var got tenancy.TenantResponse
		decodeData(t, w, &got)
		assert.Equal(t, id, got.ID)
		assert.True(t, got.AmountDue.Equal(decimal.NewFromInt(15000)))
		tenants.AssertExpectations(t)
	})

	t.Run("rejects invalid body before the service", func(t *testing.T) {
		tenants := new(MockTenantManager)

		w := doRequest(tenantRouter(tenants, nil), http.MethodPost, "/tenants",
			`{"name":"","phone":"0712345678","unit_number":"A1","rent_amount":"-1","due_day":32}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		fields := map[string]bool{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = true
		}
		assert.True(t, fields["name"])
		assert.True(t, fields["rent_amount"])
		assert.True(t, fields["due_day"])
		tenants.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTenantHandler_List(t *testing.T) {
	tenants := new(MockTenantManager)
	page := shared.NewPaginated([]tenancy.TenantResponse{*sampleTenant(uuid.New())}, 21, 2, 10)
	tenants.On("List", mock.Anything, mock.MatchedBy(func(f tenancy.TenantListFilter) bool {
		return f.Search == "A1" && f.Page == 2 && f.PageSize == 10 &&
			assert.ObjectsAreEqual([]string{"Unpaid", "Overdue"}, f.Statuses)
	})).Return(page, nil)

	w := doRequest(tenantRouter(tenants, nil), http.MethodGet, "/tenants?search=A1&status=Unpaid&status=Overdue&page=2&page_size=10", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(21), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	tenants.AssertExpectations(t)
}

func TestTenantHandler_Get(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		tenants := new(MockTenantManager)
		id := uuid.New()
		tenants.On("Get", mock.Anything, id).Return(nil, shared.ErrNotFound)

		w := doRequest(tenantRouter(tenants, nil), http.MethodGet, "/tenants/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, shared.CodeNotFound, decodeResponse(t, w).Error.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := doRequest(tenantRouter(new(MockTenantManager), nil), http.MethodGet, "/tenants/42", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTenantHandler_Update(t *testing.T) {
	t.Run("partial update carries the actor", func(t *testing.T) {
		tenants := new(MockTenantManager)
		id := uuid.New()
		tenants.On("Update", mock.Anything, id, mock.MatchedBy(func(req tenancy.UpdateTenantRequest) bool {
			return req.Name == nil && req.DueDay != nil && *req.DueDay == 10 &&
				req.RentAmount != nil && req.RentAmount.Equal(decimal.NewFromInt(18000)) &&
				req.Actor == "caretaker"
		})).Return(sampleTenant(id), nil)

		w := doRequest(tenantRouter(tenants, nil), http.MethodPut, "/tenants/"+id.String()+"?actor=caretaker",
			`{"rent_amount":"18000","due_day":10}`)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		tenants.AssertExpectations(t)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		tenants := new(MockTenantManager)
		id := uuid.New()
		tenants.On("Update", mock.Anything, id, mock.Anything).Return(nil, shared.ErrConcurrencyConflict)

		w := doRequest(tenantRouter(tenants, nil), http.MethodPut, "/tenants/"+id.String(), `{"name":"New Name"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, shared.CodeConcurrencyConflict, decodeResponse(t, w).Error.Code)
	})
}

func TestTenantHandler_Delete(t *testing.T) {
	t.Run("archives with actor and reason", func(t *testing.T) {
		archiver := new(MockArchiver)
		id := uuid.New()
		archiver.On("ArchiveAndDelete", mock.Anything, rental.TenantRef(id), "admin", "moved out").Return(nil)

		w := doRequest(tenantRouter(nil, archiver), http.MethodDelete, "/tenants/"+id.String()+"?actor=admin&reason=moved+out", "")

		assert.Equal(t, http.StatusOK, w.Code)
		archiver.AssertExpectations(t)
	})

	t.Run("defaults actor", func(t *testing.T) {
		archiver := new(MockArchiver)
		id := uuid.New()
		archiver.On("ArchiveAndDelete", mock.Anything, rental.TenantRef(id), DefaultActor, "").Return(nil)

		w := doRequest(tenantRouter(nil, archiver), http.MethodDelete, "/tenants/"+id.String(), "")

		assert.Equal(t, http.StatusOK, w.Code)
		archiver.AssertExpectations(t)
	})

	t.Run("archive failure keeps the tenant", func(t *testing.T) {
		archiver := new(MockArchiver)
		id := uuid.New()
		archiver.On("ArchiveAndDelete", mock.Anything, rental.TenantRef(id), DefaultActor, "").
			Return(shared.WrapDomainError(shared.CodePersistenceFailure, "failed to archive tenant", assert.AnError))

		w := doRequest(tenantRouter(nil, archiver), http.MethodDelete, "/tenants/"+id.String(), "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, shared.CodePersistenceFailure, decodeResponse(t, w).Error.Code)
	})
}

func TestTenantHandler_BulkDelete(t *testing.T) {
	archiver := new(MockArchiver)
	a, b := uuid.New(), uuid.New()
	result := &ledger.BulkArchiveResult{
		Requested: 2,
		Archived:  1,
		Failures:  []ledger.ArchiveFailure{{Kind: rental.EntityKindTenant, ID: b, Error: "Resource not found"}},
	}
	archiver.On("ArchiveAndDeleteMany", mock.Anything,
		[]rental.EntityRef{rental.TenantRef(a), rental.TenantRef(b)}, DefaultActor, "cleanup").Return(result)

	w := doRequest(tenantRouter(nil, archiver), http.MethodPost, "/tenants/bulk-delete",
		`{"ids":["`+a.String()+`","`+b.String()+`"],"reason":"cleanup"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got ledger.BulkArchiveResult
	decodeData(t, w, &got)
	assert.Equal(t, 1, got.Archived)
	assert.Len(t, got.Failures, 1)

	w = doRequest(tenantRouter(nil, archiver), http.MethodPost, "/tenants/bulk-delete", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenantHandler_NextDueDate(t *testing.T) {
	tenants := new(MockTenantManager)
	id := uuid.New()
	asOf := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.Local)
	tenants.On("NextDueDate", mock.Anything, id, mock.MatchedBy(asOf.Equal)).Return(&tenancy.NextDueDateResponse{
		TenantID:    id,
		DueDay:      30,
		AsOf:        "2025-01-31",
		NextDueDate: "2025-03-01",
	}, nil)

	r := tenantRouter(tenants, nil)
	w := doRequest(r, http.MethodGet, "/tenants/"+id.String()+"/next-due-date?as_of=2025-01-31", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got tenancy.NextDueDateResponse
	decodeData(t, w, &got)
	assert.Equal(t, "2025-03-01", got.NextDueDate)

	w = doRequest(r, http.MethodGet, "/tenants/"+id.String()+"/next-due-date?as_of=31-01-2025", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenantHandler_History(t *testing.T) {
	tenants := new(MockTenantManager)
	id := uuid.New()
	tenants.On("History", mock.Anything, id, shared.Filter{Page: 1, PageSize: 5}).Return([]tenancy.TenantHistoryResponse{
		{TenantID: id, Action: string(rental.TenantActionCreated), ChangedBy: "System"},
	}, nil)

	w := doRequest(tenantRouter(tenants, nil), http.MethodGet, "/tenants/"+id.String()+"/history?page=1&page_size=5", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got []tenancy.TenantHistoryResponse
	decodeData(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "created", got[0].Action)
	tenants.AssertExpectations(t)
}

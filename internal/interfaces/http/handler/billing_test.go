package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.April, 1, 6, 0, 0, 0, time.Local)

func billingRouter(runner *MockCycleRunner) *gin.Engine {
	h := NewBillingHandler(runner, runner)
	h.now = func() time.Time { return fixedNow }
	r := newTestRouter()
	r.POST("/billing/rollover", h.Rollover)
	r.POST("/billing/refresh-status", h.RefreshStatus)
	return r
}

func TestBillingHandler_Rollover(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		runner := new(MockCycleRunner)

		w := doRequest(billingRouter(runner), http.MethodPost, "/billing/rollover", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeResponse(t, w).Error.Message, "confirm=true")
		runner.AssertNotCalled(t, "RolloverAll", mock.Anything, mock.Anything)
	})

	t.Run("runs as of now", func(t *testing.T) {
		runner := new(MockCycleRunner)
		runner.On("RolloverAll", mock.Anything, fixedNow).Return(&ledger.RolloverReport{
			AsOf: fixedNow, Total: 3, Count: 3, Failures: []ledger.RolloverFailure{},
		}, nil)

		w := doRequest(billingRouter(runner), http.MethodPost, "/billing/rollover?confirm=true", "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got ledger.RolloverReport
		decodeData(t, w, &got)
		assert.Equal(t, 3, got.Count)
		runner.AssertExpectations(t)
	})

	t.Run("explicit as_of", func(t *testing.T) {
		runner := new(MockCycleRunner)
		asOf := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local)
		runner.On("RolloverAll", mock.Anything, mock.MatchedBy(asOf.Equal)).Return(&ledger.RolloverReport{AsOf: asOf}, nil)

		w := doRequest(billingRouter(runner), http.MethodPost, "/billing/rollover?confirm=1&as_of=2025-03-01", "")

		assert.Equal(t, http.StatusOK, w.Code)
		runner.AssertExpectations(t)
	})
}

func TestBillingHandler_RefreshStatus(t *testing.T) {
	runner := new(MockCycleRunner)
	failed := uuid.New()
	runner.On("RefreshAll", mock.Anything, fixedNow).Return(&ledger.StatusRefreshReport{
		Today:    fixedNow,
		Total:    10,
		Changed:  2,
		Failures: []ledger.StatusRefreshFailure{{TenantID: failed, Error: "Resource was modified by another process"}},
	}, nil)

	w := doRequest(billingRouter(runner), http.MethodPost, "/billing/refresh-status", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got ledger.StatusRefreshReport
	decodeData(t, w, &got)
	assert.Equal(t, 2, got.Changed)
	require.Len(t, got.Failures, 1)
	assert.Equal(t, failed, got.Failures[0].TenantID)
}

package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient(t *testing.T) {
	r := gin.New()
	r.POST("/api/v1/echo", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		if c.GetHeader("X-Fail") != "" {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": gin.H{"code": "DUPLICATE_REQUEST", "message": "dup"}})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": body})
	})
	client := NewAPIClient(t, r, "/api/v1")

	resp := client.Do(http.MethodPost, "/echo", map[string]int{"n": 7}).RequireOK(t, http.StatusCreated)
	var got map[string]int
	resp.Decode(t, &got)
	assert.Equal(t, 7, got["n"])

	client.Do(http.MethodPost, "/echo", `{}`, "X-Fail", "1").AssertError(t, http.StatusConflict, "DUPLICATE_REQUEST")
}

func TestEventRecorder(t *testing.T) {
	rec := NewEventRecorder(rental.EventTypePaymentRecorded)
	assert.Equal(t, []string{rental.EventTypePaymentRecorded}, rec.EventTypes())

	payment, err := rental.NewPayment(uuid.New(), decimal.NewFromInt(500), rental.PaymentTypePartial,
		rental.PaymentStatusPaid, "", time.Now())
	require.NoError(t, err)

	go func() {
		_ = rec.Handle(context.Background(), rental.NewPaymentRecordedEvent(payment))
	}()

	assert.True(t, rec.WaitForCount(rental.EventTypePaymentRecorded, 1, time.Second))
	assert.Len(t, rec.Events(), 1)
	assert.Equal(t, 0, rec.Count(rental.EventTypeTenantCreated))
}

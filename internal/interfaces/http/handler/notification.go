package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/notification"
	"github.com/rentledger/backend/internal/domain/rental"
)

// Reminder kinds accepted by POST /tenants/:id/remind
const (
	RemindKindRent    = "rent"
	RemindKindBalance = "balance"
	RemindKindCustom  = "custom"
)

// Messenger sends tenant notifications
type Messenger interface {
	SendRentReminder(ctx context.Context, tenantID uuid.UUID) (*notification.DeliveryResult, error)
	SendBalanceReminder(ctx context.Context, tenantID uuid.UUID) (*notification.DeliveryResult, error)
	SendCustomMessage(ctx context.Context, tenantID uuid.UUID, message string) (*notification.DeliveryResult, error)
	SendBulkReminders(ctx context.Context, statuses []rental.RentStatus) (*notification.BulkResult, error)
	History(ctx context.Context, tenantID uuid.UUID, limit int) ([]notification.SMSLogResponse, error)
}

// RemindRequest picks the message sent to one tenant. Kind defaults to a
// rent reminder; custom needs a message.
type RemindRequest struct {
	Kind    string `json:"kind" binding:"omitempty,oneof=rent balance custom"`
	Message string `json:"message" binding:"required_if=Kind custom,max=480"`
}

// NotificationHandler handles reminder endpoints
type NotificationHandler struct {
	BaseHandler
	messenger Messenger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(messenger Messenger) *NotificationHandler {
	return &NotificationHandler{messenger: messenger}
}

// BulkReminders handles POST /notifications/reminders. An empty body
// reminds every tenant who owes rent.
func (h *NotificationHandler) BulkReminders(c *gin.Context) {
	var req notification.BulkReminderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.ValidationError(c, err)
			return
		}
	}

	statuses := make([]rental.RentStatus, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		status, err := rental.ParseRentStatus(raw)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		statuses = append(statuses, status)
	}

	result, err := h.messenger.SendBulkReminders(c.Request.Context(), statuses)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Remind handles POST /tenants/:id/remind. Delivery failures are reported in
// the result with ok=false, not as an HTTP error.
func (h *NotificationHandler) Remind(c *gin.Context) {
	tenantID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req RemindRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.ValidationError(c, err)
			return
		}
	}

	var (
		result *notification.DeliveryResult
		err    error
	)
	ctx := c.Request.Context()
	switch req.Kind {
	case RemindKindBalance:
		result, err = h.messenger.SendBalanceReminder(ctx, tenantID)
	case RemindKindCustom:
		result, err = h.messenger.SendCustomMessage(ctx, tenantID, req.Message)
	default:
		result, err = h.messenger.SendRentReminder(ctx, tenantID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// History handles GET /tenants/:id/notifications?limit=
func (h *NotificationHandler) History(c *gin.Context) {
	tenantID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var q struct {
		Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}

	logs, err := h.messenger.History(c.Request.Context(), tenantID, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}

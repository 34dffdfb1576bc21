package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appnotification "github.com/shelfsight/backend/internal/application/notification"
	"github.com/shelfsight/backend/internal/domain/notification"
	"github.com/shelfsight/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// NotificationHandler handles the user notification inbox and the live
// SSE stream
type NotificationHandler struct {
	BaseHandler
	dispatcher *appnotification.Dispatcher
	logger     *zap.Logger
	heartbeat  time.Duration
}

// NotificationHandlerOption configures the handler
type NotificationHandlerOption func(*NotificationHandler)

// WithNotificationLogger sets the logger for the handler
func WithNotificationLogger(logger *zap.Logger) NotificationHandlerOption {
	return func(h *NotificationHandler) {
		h.logger = logger
	}
}

// WithStreamHeartbeat sets the SSE heartbeat interval
func WithStreamHeartbeat(interval time.Duration) NotificationHandlerOption {
	return func(h *NotificationHandler) {
		h.heartbeat = interval
	}
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(dispatcher *appnotification.Dispatcher, opts ...NotificationHandlerOption) *NotificationHandler {
	h := &NotificationHandler{
		dispatcher: dispatcher,
		logger:     zap.NewNop(),
		heartbeat:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NotificationResponse is the API shape of a notification
type NotificationResponse struct {
	ID        string         `json:"id"`
	TenantID  *string        `json:"tenant_id,omitempty"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Read      bool           `json:"read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func toNotificationResponse(n *notification.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Type:      n.Type.String(),
		Title:     n.Title,
		Message:   n.Message,
		Metadata:  n.Metadata,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if n.TenantID != nil {
		tenantID := n.TenantID.String()
		resp.TenantID = &tenantID
	}
	return resp
}

// UnreadCountResponse carries the unread badge count
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// List returns the caller's notifications, newest first
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		h.Unauthorized(c, "User identification required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	filter := req.ToFilter()

	page, err := h.dispatcher.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]NotificationResponse, 0, len(page.Items))
	for _, n := range page.Items {
		items = append(items, toNotificationResponse(n))
	}

	h.SuccessWithMeta(c, items, page.Total, filter.Page, filter.PageSize)
}

// UnreadCount returns the caller's unread notification count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		h.Unauthorized(c, "User identification required")
		return
	}

	count, err := h.dispatcher.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, UnreadCountResponse{Count: count})
}

// MarkRead marks one notification as read. Re-marking is a no-op.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if _, ok := userFrom(c); !ok {
		h.Unauthorized(c, "User identification required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.dispatcher.MarkRead(c.Request.Context(), uuid.MustParse(req.ID)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// MarkAllRead marks every unread notification of the caller as read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		h.Unauthorized(c, "User identification required")
		return
	}

	if err := h.dispatcher.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// streamEvent is one server-sent event on the notification stream
type streamEvent struct {
	Event string
	Data  string
	ID    string
}

// Stream establishes a Server-Sent Events connection delivering the
// caller's notifications as they are emitted. The durable inbox is the
// source of truth; a dropped connection loses nothing, the client
// re-syncs from List on reconnect.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := userFrom(c)
	if !ok {
		h.Unauthorized(c, "User identification required")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	// Buffered so a slow client drops pushes instead of blocking the
	// dispatcher's fan-out
	const streamBufferSize = 100
	events := make(chan streamEvent, streamBufferSize)

	unsubscribe := h.dispatcher.Subscribe(userID, func(n *notification.Notification) {
		data, err := json.Marshal(toNotificationResponse(n))
		if err != nil {
			h.logger.Error("Failed to marshal stream event", zap.Error(err))
			return
		}
		select {
		case events <- streamEvent{Event: "notification", Data: string(data), ID: n.ID.String()}:
		default:
			h.logger.Warn("Stream buffer full, dropping notification",
				zap.String("user_id", userID.String()),
				zap.String("notification_id", n.ID.String()))
		}
	})
	defer unsubscribe()

	h.logger.Info("Notification stream connected",
		zap.String("user_id", userID.String()))

	writeEvent(c.Writer, streamEvent{
		Event: "connected",
		Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
	})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("Notification stream disconnected",
				zap.String("user_id", userID.String()))
			return
		case <-ticker.C:
			writeEvent(c.Writer, streamEvent{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
			c.Writer.Flush()
		case event := <-events:
			writeEvent(c.Writer, event)
			c.Writer.Flush()
		}
	}
}

// writeEvent writes one SSE event to the response writer
func writeEvent(w io.Writer, event streamEvent) {
	if event.Event != "" {
		fmt.Fprintf(w, "event: %s\n", event.Event)
	}
	if event.ID != "" {
		fmt.Fprintf(w, "id: %s\n", event.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", event.Data)
}

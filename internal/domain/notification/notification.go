package notification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/shared"
)

// Type classifies a notification for client-side rendering and filtering
type Type string

const (
	TypeProcessingComplete Type = "processing_complete"
	TypeTrainingComplete   Type = "training_complete"
	TypeQuotaWarning       Type = "quota_warning"
	TypeSystemAlert        Type = "system_alert"
)

// IsValid returns true if the notification type is a known value
func (t Type) IsValid() bool {
	switch t {
	case TypeProcessingComplete, TypeTrainingComplete, TypeQuotaWarning, TypeSystemAlert:
		return true
	}
	return false
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// Notification is one durable message for one user. Content is fixed
// at creation; only the read flag ever changes afterwards.
type Notification struct {
	shared.BaseEntity
	UserID   uuid.UUID
	TenantID *uuid.UUID
	Type     Type
	Title    string
	Message  string
	Metadata map[string]any
	Read     bool
	ReadAt   *time.Time
}

// NewNotification creates an unread notification
func NewNotification(userID uuid.UUID, tenantID *uuid.UUID, notifType Type, title, message string, metadata map[string]any) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !notifType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown notification type")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}

	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		TenantID:   tenantID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		Metadata:   metadata,
	}, nil
}

// MarkRead flips the read flag. Marking an already-read notification
// is a no-op, not an error.
func (n *Notification) MarkRead(now time.Time) {
	if n.Read {
		return
	}
	n.Read = true
	readAt := now.UTC()
	n.ReadAt = &readAt
	n.UpdatedAt = readAt
}

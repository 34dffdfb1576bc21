package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// NotificationModel is the persistence model for notifications.
// Metadata is an opaque JSONB payload the clients render from.
type NotificationModel struct {
	BaseModel
	UserID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_notification_user"`
	TenantID     *uuid.UUID        `gorm:"type:uuid;index"`
	Type         notification.Type `gorm:"type:varchar(30);not null"`
	Title        string            `gorm:"type:varchar(200);not null"`
	Message      string            `gorm:"type:text"`
	MetadataJSON string            `gorm:"column:metadata;type:jsonb;default:'{}'"`
	Read         bool              `gorm:"not null;default:false;index:idx_notification_user"`
	ReadAt       *time.Time
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	n := &notification.Notification{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		TenantID:   m.TenantID,
		Type:       m.Type,
		Title:      m.Title,
		Message:    m.Message,
		Read:       m.Read,
		ReadAt:     m.ReadAt,
	}

	if m.MetadataJSON != "" && m.MetadataJSON != "{}" {
		var metadata map[string]any
		if err := json.Unmarshal([]byte(m.MetadataJSON), &metadata); err != nil {
			modelLogger.Warn("failed to parse notification metadata JSON",
				zap.String("notification_id", m.ID.String()),
				zap.Error(err))
		} else {
			n.Metadata = metadata
		}
	}

	return n
}

// FromDomain populates the persistence model from a domain Notification
func (m *NotificationModel) FromDomain(n *notification.Notification) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.UserID = n.UserID
	m.TenantID = n.TenantID
	m.Type = n.Type
	m.Title = n.Title
	m.Message = n.Message
	m.Read = n.Read
	m.ReadAt = n.ReadAt

	if len(n.Metadata) > 0 {
		if jsonBytes, err := json.Marshal(n.Metadata); err == nil {
			m.MetadataJSON = string(jsonBytes)
		} else {
			m.MetadataJSON = "{}"
		}
	} else {
		m.MetadataJSON = "{}"
	}
}

// NotificationModelFromDomain creates a persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{}
	m.FromDomain(n)
	return m
}

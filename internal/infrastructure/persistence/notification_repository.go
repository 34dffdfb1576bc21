package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/notification"
	"github.com/shelfsight/backend/internal/domain/shared"
	"github.com/shelfsight/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Save persists a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	model := models.NotificationModelFromDomain(n)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds notifications for a user, newest first by default
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[*notification.Notification], error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.NotificationModel
	query := applyFilter(
		r.db.WithContext(ctx).Model(&models.NotificationModel{}).Where("user_id = ?", userID),
		filter,
		NotificationSortFields,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]*notification.Notification, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToDomain())
	}

	page, pageSize := normalizePage(filter)
	paginated := shared.NewPaginated(items, total, page, pageSize)
	return &paginated, nil
}

// CountUnread counts unread notifications for a user
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkAllRead marks every unread notification for a user as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]any{
			"read":       true,
			"read_at":    now,
			"updated_at": now,
		}).Error
}

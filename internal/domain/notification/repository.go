package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/shared"
)

// Repository persists notifications. List results are newest-first;
// the unread count is derived from the stored rows, never maintained
// as a separate counter.
type Repository interface {
	Save(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Notification], error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

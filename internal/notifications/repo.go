package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timele/timele-backend/pkg/db/models"
	"github.com/timele/timele-backend/pkg/enums"
)

// StatusEvent is one row of the derived order-status notification
// stream: history for the user's orders newer than their last viewing.
type StatusEvent struct {
	OrderID     int64             `gorm:"column:order_id" json:"order_id"`
	OrderNumber int64             `gorm:"column:order_number" json:"order_number"`
	Status      enums.OrderStatus `gorm:"column:status" json:"status"`
	ChangedAt   time.Time         `gorm:"column:changed_at" json:"changed_at"`
	ChangedBy   *string           `gorm:"column:changed_by" json:"changed_by,omitempty"`
	Note        *string           `gorm:"column:note" json:"note,omitempty"`
}

// Repository reads and advances notification state. It works directly
// on user rows because the preference columns live there.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindUserByExternalID(ctx context.Context, externalID uuid.UUID) (*models.User, error)
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.User, error)
	SaveReminderState(ctx context.Context, user *models.User) error
	StatusEventsSince(ctx context.Context, userInternalID int64, since *time.Time) ([]StatusEvent, error)
	MarkViewed(ctx context.Context, userInternalID int64, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindUserByExternalID(ctx context.Context, externalID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.User, error) {
	var users []models.User
	q := r.db.WithContext(ctx).
		Where("order_notifications_next_at <= ?", now.UTC()).
		Order("order_notifications_next_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&users).Error
	return users, err
}

func (r *repository) SaveReminderState(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("internal_id = ?", user.InternalID).
		Updates(map[string]any{
			"pending_order_notification":  user.PendingOrderNotification,
			"last_notification_sent_at":   user.LastNotificationSentAt,
			"order_notifications_next_at": user.OrderNotificationsNextAt,
		}).Error
}

func (r *repository) StatusEventsSince(ctx context.Context, userInternalID int64, since *time.Time) ([]StatusEvent, error) {
	q := r.db.WithContext(ctx).
		Table("order_status_history").
		Select(`order_status_history.order_id, orders.order_number, order_status_history.status,
			order_status_history.changed_at, order_status_history.changed_by, order_status_history.note`).
		Joins("JOIN orders ON orders.id = order_status_history.order_id").
		Where("orders.user_id = ?", userInternalID).
		Order("order_status_history.changed_at ASC, order_status_history.history_id ASC")
	if since != nil {
		q = q.Where("order_status_history.changed_at > ?", since.UTC())
	}

	var events []StatusEvent
	err := q.Scan(&events).Error
	return events, err
}

func (r *repository) MarkViewed(ctx context.Context, userInternalID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("internal_id = ?", userInternalID).
		Updates(map[string]any{
			"last_notifications_viewed_at": at.UTC(),
			"pending_order_notification":   false,
		}).Error
}

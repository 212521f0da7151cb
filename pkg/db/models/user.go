package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the canonical identity row. The numeric internal id is the
// primary key used by every foreign key; the UUID external id is the
// only identifier ever serialized past the edge.
type User struct {
	InternalID   int64     `gorm:"column:internal_id;primaryKey;autoIncrement"`
	ExternalID   uuid.UUID `gorm:"column:external_id;type:uuid;not null;uniqueIndex"`
	Email        string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	FirstName    string    `gorm:"column:first_name;not null"`
	LastName     string    `gorm:"column:last_name;not null"`
	PhoneNumber  *string   `gorm:"column:phone_number"`

	StreetAddress *string `gorm:"column:street_address"`
	City          *string `gorm:"column:city"`
	PostalCode    *string `gorm:"column:postal_code"`
	Country       *string `gorm:"column:country"`

	LastLoginAt               *time.Time `gorm:"column:last_login_at"`
	LastNotificationsViewedAt *time.Time `gorm:"column:last_notifications_viewed_at"`

	// Notification preferences, embedded per the schema.
	DaysBetweenOrderNotifications int        `gorm:"column:days_between_order_notifications;not null;default:7"`
	OrderNotificationsStartAt     time.Time  `gorm:"column:order_notifications_start_at;not null"`
	OrderNotificationsNextAt      time.Time  `gorm:"column:order_notifications_next_at;not null"`
	PendingOrderNotification      bool       `gorm:"column:pending_order_notification;not null;default:false"`
	OrderNotificationsViaEmail    bool       `gorm:"column:order_notifications_via_email;not null;default:false"`
	LastNotificationSentAt        *time.Time `gorm:"column:last_notification_sent_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

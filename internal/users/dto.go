package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/timele/timele-backend/pkg/db/models"
)

// RegisterInput carries a new user profile. Notification preference
// fields are optional; defaults apply when omitted.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string

	PhoneNumber   *string
	StreetAddress *string
	City          *string
	PostalCode    *string
	Country       *string

	DaysBetweenOrderNotifications *int
	OrderNotificationsStartAt     *time.Time
	OrderNotificationsViaEmail    *bool
}

// Patch is an explicit optional-field update record; nil means "not
// provided", which is distinct from a provided null.
type Patch struct {
	FirstName     *string
	LastName      *string
	PhoneNumber   *string
	StreetAddress *string
	City          *string
	PostalCode    *string
	Country       *string

	DaysBetweenOrderNotifications *int
	OrderNotificationsStartAt     *time.Time
	OrderNotificationsViaEmail    *bool
}

func (p Patch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.PhoneNumber == nil &&
		p.StreetAddress == nil && p.City == nil && p.PostalCode == nil && p.Country == nil &&
		p.DaysBetweenOrderNotifications == nil && p.OrderNotificationsStartAt == nil &&
		p.OrderNotificationsViaEmail == nil
}

// TouchesPreferences reports whether the patch changes any field that
// requires recomputing order_notifications_next_at.
func (p Patch) TouchesPreferences() bool {
	return p.DaysBetweenOrderNotifications != nil || p.OrderNotificationsStartAt != nil
}

// NotificationSettingsInput is the dedicated preference update payload.
type NotificationSettingsInput struct {
	DaysBetweenOrderNotifications *int
	OrderNotificationsStartAt     *time.Time
	OrderNotificationsViaEmail    *bool
}

// View is the external representation of a user; the internal numeric
// id never appears here.
type View struct {
	UserID        uuid.UUID `json:"user_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	EmailAddress  string    `json:"email_address"`
	PhoneNumber   *string   `json:"phone_number,omitempty"`
	StreetAddress *string   `json:"street_address,omitempty"`
	City          *string   `json:"city,omitempty"`
	PostalCode    *string   `json:"postal_code,omitempty"`
	Country       *string   `json:"country,omitempty"`

	LastLoginAt               *time.Time `json:"last_login_at,omitempty"`
	LastNotificationsViewedAt *time.Time `json:"last_notifications_viewed_at,omitempty"`

	DaysBetweenOrderNotifications int        `json:"days_between_order_notifications"`
	OrderNotificationsStartAt     time.Time  `json:"order_notifications_start_at"`
	OrderNotificationsNextAt      time.Time  `json:"order_notifications_next_at"`
	PendingOrderNotification      bool       `json:"pending_order_notification"`
	OrderNotificationsViaEmail    bool       `json:"order_notifications_via_email"`
	LastNotificationSentAt        *time.Time `json:"last_notification_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// LoginView is the login response: the full profile plus cart state.
type LoginView struct {
	View
	HasActiveCart bool `json:"has_active_cart"`
}

// NotificationSettingsView is the dedicated preference read shape.
type NotificationSettingsView struct {
	DaysBetweenOrderNotifications int        `json:"days_between_order_notifications"`
	OrderNotificationsStartAt     time.Time  `json:"order_notifications_start_at"`
	OrderNotificationsNextAt      time.Time  `json:"order_notifications_next_at"`
	PendingOrderNotification      bool       `json:"pending_order_notification"`
	OrderNotificationsViaEmail    bool       `json:"order_notifications_via_email"`
	LastNotificationSentAt        *time.Time `json:"last_notification_sent_at,omitempty"`
}

func viewFromModel(u *models.User) *View {
	return &View{
		UserID:                        u.ExternalID,
		FirstName:                     u.FirstName,
		LastName:                      u.LastName,
		EmailAddress:                  u.Email,
		PhoneNumber:                   u.PhoneNumber,
		StreetAddress:                 u.StreetAddress,
		City:                          u.City,
		PostalCode:                    u.PostalCode,
		Country:                       u.Country,
		LastLoginAt:                   u.LastLoginAt,
		LastNotificationsViewedAt:     u.LastNotificationsViewedAt,
		DaysBetweenOrderNotifications: u.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:     u.OrderNotificationsStartAt,
		OrderNotificationsNextAt:      u.OrderNotificationsNextAt,
		PendingOrderNotification:      u.PendingOrderNotification,
		OrderNotificationsViaEmail:    u.OrderNotificationsViaEmail,
		LastNotificationSentAt:        u.LastNotificationSentAt,
		CreatedAt:                     u.CreatedAt,
	}
}

func settingsFromModel(u *models.User) *NotificationSettingsView {
	return &NotificationSettingsView{
		DaysBetweenOrderNotifications: u.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:     u.OrderNotificationsStartAt,
		OrderNotificationsNextAt:      u.OrderNotificationsNextAt,
		PendingOrderNotification:      u.PendingOrderNotification,
		OrderNotificationsViaEmail:    u.OrderNotificationsViaEmail,
		LastNotificationSentAt:        u.LastNotificationSentAt,
	}
}

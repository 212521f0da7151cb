package gatewayclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/timele/timele-backend/internal/notifications"
	"github.com/timele/timele-backend/internal/users"
)

// RegisterPayload mirrors the gateway's registration body.
type RegisterPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`

	PhoneNumber   *string `json:"phone_number,omitempty"`
	StreetAddress *string `json:"street_address,omitempty"`
	City          *string `json:"city,omitempty"`
	PostalCode    *string `json:"postal_code,omitempty"`
	Country       *string `json:"country,omitempty"`

	DaysBetweenOrderNotifications *int       `json:"days_between_order_notifications,omitempty"`
	OrderNotificationsStartAt     *time.Time `json:"order_notifications_start_at,omitempty"`
	OrderNotificationsViaEmail    *bool      `json:"order_notifications_via_email,omitempty"`
}

// UpdateUserPayload carries the optional-field profile patch.
type UpdateUserPayload struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	PhoneNumber   *string `json:"phone_number,omitempty"`
	StreetAddress *string `json:"street_address,omitempty"`
	City          *string `json:"city,omitempty"`
	PostalCode    *string `json:"postal_code,omitempty"`
	Country       *string `json:"country,omitempty"`

	DaysBetweenOrderNotifications *int       `json:"days_between_order_notifications,omitempty"`
	OrderNotificationsStartAt     *time.Time `json:"order_notifications_start_at,omitempty"`
	OrderNotificationsViaEmail    *bool      `json:"order_notifications_via_email,omitempty"`
}

// NotificationSettingsPayload carries the dedicated preference update.
type NotificationSettingsPayload struct {
	DaysBetweenOrderNotifications *int       `json:"days_between_order_notifications,omitempty"`
	OrderNotificationsStartAt     *time.Time `json:"order_notifications_start_at,omitempty"`
	OrderNotificationsViaEmail    *bool      `json:"order_notifications_via_email,omitempty"`
}

func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*users.View, error) {
	var view users.View
	if err := c.do(ctx, http.MethodPost, "/users/register", nil, payload, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*users.LoginView, error) {
	body := map[string]string{"email": email, "password": password}
	var view users.LoginView
	if err := c.do(ctx, http.MethodPost, "/users/login", nil, body, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) GetUser(ctx context.Context, userID uuid.UUID) (*users.View, error) {
	var view users.View
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%s", userID), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID uuid.UUID, payload UpdateUserPayload) (*users.View, error) {
	var view users.View
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%s", userID), nil, payload, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID uuid.UUID, password string) error {
	body := map[string]string{"password": password}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%s", userID), nil, body, nil)
}

func (c *Client) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%s/password", userID), nil, body, nil)
}

func (c *Client) ChangeEmail(ctx context.Context, userID uuid.UUID, currentPassword, newEmail string) (*users.View, error) {
	body := map[string]string{"current_password": currentPassword, "new_email": newEmail}
	var view users.View
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%s/email", userID), nil, body, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) GetNotificationSettings(ctx context.Context, userID uuid.UUID) (*users.NotificationSettingsView, error) {
	var view users.NotificationSettingsView
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%s/notification-settings", userID), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) UpdateNotificationSettings(ctx context.Context, userID uuid.UUID, payload NotificationSettingsPayload) (*users.NotificationSettingsView, error) {
	var view users.NotificationSettingsView
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%s/notification-settings", userID), nil, payload, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) ListNotifications(ctx context.Context, userID uuid.UUID) (*notifications.ListResult, error) {
	var result notifications.ListResult
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%s/notifications", userID), nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) MarkNotificationsViewed(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	var out struct {
		LastNotificationsViewedAt time.Time `json:"last_notifications_viewed_at"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%s/notifications/viewed", userID), nil, nil, &out); err != nil {
		return time.Time{}, err
	}
	return out.LastNotificationsViewedAt, nil
}

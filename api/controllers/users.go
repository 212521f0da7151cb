package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timele/timele-backend/api/dto"
	"github.com/timele/timele-backend/api/responses"
	"github.com/timele/timele-backend/api/validators"
	"github.com/timele/timele-backend/internal/gatewayclient"
	"github.com/timele/timele-backend/internal/users"
	"github.com/timele/timele-backend/pkg/logger"
)

// UsersController fronts identity and notification endpoints. It holds
// no state; every call is a pass-through to the data gateway plus
// representation translation.
type UsersController struct {
	Gateway *gatewayclient.Client
	Logger  *logger.Logger
}

type registerBody struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	Password     string `json:"password" validate:"required"`

	PhoneNumber   *string `json:"phoneNumber"`
	StreetAddress *string `json:"streetAddress"`
	City          *string `json:"city"`
	PostalCode    *string `json:"postalCode"`
	Country       *string `json:"country"`

	DaysBetweenOrderNotifications   *int      `json:"daysBetweenOrderNotifications" validate:"omitempty,min=1,max=365"`
	OrderNotificationsStartDateTime *dto.Time `json:"orderNotificationsStartDateTime"`
	OrderNotificationsViaEmail      *bool     `json:"orderNotificationsViaEmail"`
}

type loginBody struct {
	EmailAddress string `json:"emailAddress" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

type updateUserBody struct {
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	PhoneNumber   *string `json:"phoneNumber"`
	StreetAddress *string `json:"streetAddress"`
	City          *string `json:"city"`
	PostalCode    *string `json:"postalCode"`
	Country       *string `json:"country"`

	DaysBetweenOrderNotifications   *int      `json:"daysBetweenOrderNotifications" validate:"omitempty,min=1,max=365"`
	OrderNotificationsStartDateTime *dto.Time `json:"orderNotificationsStartDateTime"`
	OrderNotificationsViaEmail      *bool     `json:"orderNotificationsViaEmail"`
}

type changePasswordBody struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type changeEmailBody struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewEmailAddress string `json:"newEmailAddress" validate:"required,email"`
}

type passwordBody struct {
	Password string `json:"password" validate:"required"`
}

type notificationSettingsBody struct {
	DaysBetweenOrderNotifications   *int      `json:"daysBetweenOrderNotifications" validate:"omitempty,min=1,max=365"`
	OrderNotificationsStartDateTime *dto.Time `json:"orderNotificationsStartDateTime"`
	OrderNotificationsViaEmail      *bool     `json:"orderNotificationsViaEmail"`
}

func (c *UsersController) Register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.Register(r.Context(), gatewayclient.RegisterPayload{
		FirstName:                     body.FirstName,
		LastName:                      body.LastName,
		Email:                         body.EmailAddress,
		Password:                      body.Password,
		PhoneNumber:                   body.PhoneNumber,
		StreetAddress:                 body.StreetAddress,
		City:                          body.City,
		PostalCode:                    body.PostalCode,
		Country:                       body.Country,
		DaysBetweenOrderNotifications: body.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:     body.OrderNotificationsStartDateTime.Ptr(),
		OrderNotificationsViaEmail:    body.OrderNotificationsViaEmail,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "User registered successfully", dto.UserFrom(view))
}

func (c *UsersController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.Login(r.Context(), body.EmailAddress, body.Password)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Login successful", dto.LoginFrom(view))
}

// Logout is a stateless placeholder; there is no server-side session.
func (c *UsersController) Logout(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, http.StatusOK, "Logged out", map[string]bool{"loggedOut": true})
}

func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.GetUser(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "User retrieved", dto.UserFrom(view))
}

func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	var body updateUserBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.UpdateUser(r.Context(), userID, gatewayclient.UpdateUserPayload{
		FirstName:                     body.FirstName,
		LastName:                      body.LastName,
		PhoneNumber:                   body.PhoneNumber,
		StreetAddress:                 body.StreetAddress,
		City:                          body.City,
		PostalCode:                    body.PostalCode,
		Country:                       body.Country,
		DaysBetweenOrderNotifications: body.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:     body.OrderNotificationsStartDateTime.Ptr(),
		OrderNotificationsViaEmail:    body.OrderNotificationsViaEmail,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "User updated", dto.UserFrom(view))
}

func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	var body passwordBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	if err := c.Gateway.DeleteUser(r.Context(), userID, body.Password); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "User deleted", map[string]bool{"deleted": true})
}

func (c *UsersController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	var body changePasswordBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	if err := c.Gateway.ChangePassword(r.Context(), userID, body.CurrentPassword, body.NewPassword); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Password changed", map[string]bool{"changed": true})
}

func (c *UsersController) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	var body changeEmailBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.ChangeEmail(r.Context(), userID, body.CurrentPassword, body.NewEmailAddress)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Email changed", dto.UserFrom(view))
}

func (c *UsersController) GetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.GetNotificationSettings(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Notification settings retrieved", dto.SettingsFrom(view))
}

func (c *UsersController) UpdateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	var body notificationSettingsBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.UpdateNotificationSettings(r.Context(), userID, gatewayclient.NotificationSettingsPayload{
		DaysBetweenOrderNotifications: body.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:     body.OrderNotificationsStartDateTime.Ptr(),
		OrderNotificationsViaEmail:    body.OrderNotificationsViaEmail,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Notification settings updated", dto.SettingsFrom(view))
}

func (c *UsersController) ListOrderStatusNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	result, err := c.Gateway.ListNotifications(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Notifications retrieved", dto.NotificationsFrom(result))
}

func (c *UsersController) MarkNotificationsViewed(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	viewedAt, err := c.Gateway.MarkNotificationsViewed(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Notifications marked as viewed", map[string]any{
		"lastNotificationsViewedAt": viewedAt,
	})
}

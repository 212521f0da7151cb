package gatewayapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/timele/timele-backend/api/validators"
	"github.com/timele/timele-backend/internal/notifications"
	"github.com/timele/timele-backend/internal/users"
	"github.com/timele/timele-backend/pkg/logger"
)

type usersHandler struct {
	svc   users.Service
	notif notifications.Service
	logg  *logger.Logger
}

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`

	PhoneNumber   *string `json:"phone_number"`
	StreetAddress *string `json:"street_address"`
	City          *string `json:"city"`
	PostalCode    *string `json:"postal_code"`
	Country       *string `json:"country"`

	DaysBetweenOrderNotifications *int       `json:"days_between_order_notifications" validate:"omitempty,min=1,max=365"`
	OrderNotificationsStartAt     *time.Time `json:"order_notifications_start_at"`
	OrderNotificationsViaEmail    *bool      `json:"order_notifications_via_email"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateUserRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	PhoneNumber   *string `json:"phone_number"`
	StreetAddress *string `json:"street_address"`
	City          *string `json:"city"`
	PostalCode    *string `json:"postal_code"`
	Country       *string `json:"country"`

	DaysBetweenOrderNotifications *int       `json:"days_between_order_notifications" validate:"omitempty,min=1,max=365"`
	OrderNotificationsStartAt     *time.Time `json:"order_notifications_start_at"`
	OrderNotificationsViaEmail    *bool      `json:"order_notifications_via_email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type changeEmailRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewEmail        string `json:"new_email" validate:"required,email"`
}

type deleteUserRequest struct {
	Password string `json:"password" validate:"required"`
}

type notificationSettingsRequest struct {
	DaysBetweenOrderNotifications *int       `json:"days_between_order_notifications" validate:"omitempty,min=1,max=365"`
	OrderNotificationsStartAt     *time.Time `json:"order_notifications_start_at"`
	OrderNotificationsViaEmail    *bool      `json:"order_notifications_via_email"`
}

func (h *usersHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.Register(r.Context(), users.RegisterInput{
		FirstName:                     req.FirstName,
		LastName:                      req.LastName,
		Email:                         req.Email,
		Password:                      req.Password,
		PhoneNumber:                   req.PhoneNumber,
		StreetAddress:                 req.StreetAddress,
		City:                          req.City,
		PostalCode:                    req.PostalCode,
		Country:                       req.Country,
		DaysBetweenOrderNotifications: req.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:     req.OrderNotificationsStartAt,
		OrderNotificationsViaEmail:    req.OrderNotificationsViaEmail,
	})
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *usersHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *usersHandler) get(w http.ResponseWriter, r *http.Request) {
	externalID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.Get(r.Context(), externalID)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *usersHandler) update(w http.ResponseWriter, r *http.Request) {
	externalID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req updateUserRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.Update(r.Context(), externalID, users.Patch{
		FirstName:                     req.FirstName,
		LastName:                      req.LastName,
		PhoneNumber:                   req.PhoneNumber,
		StreetAddress:                 req.StreetAddress,
		City:                          req.City,
		PostalCode:                    req.PostalCode,
		Country:                       req.Country,
		DaysBetweenOrderNotifications: req.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:     req.OrderNotificationsStartAt,
		OrderNotificationsViaEmail:    req.OrderNotificationsViaEmail,
	})
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *usersHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	externalID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req changePasswordRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), externalID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}

func (h *usersHandler) changeEmail(w http.ResponseWriter, r *http.Request) {
	externalID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req changeEmailRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.ChangeEmail(r.Context(), externalID, req.CurrentPassword, req.NewEmail)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *usersHandler) delete(w http.ResponseWriter, r *http.Request) {
	externalID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req deleteUserRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), externalID, req.Password); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *usersHandler) getNotificationSettings(w http.ResponseWriter, r *http.Request) {
	externalID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.GetNotificationSettings(r.Context(), externalID)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *usersHandler) updateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	externalID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req notificationSettingsRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.UpdateNotificationSettings(r.Context(), externalID, users.NotificationSettingsInput{
		DaysBetweenOrderNotifications: req.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:     req.OrderNotificationsStartAt,
		OrderNotificationsViaEmail:    req.OrderNotificationsViaEmail,
	})
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *usersHandler) listNotifications(w http.ResponseWriter, r *http.Request) {
	externalID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.notif.List(r.Context(), externalID)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *usersHandler) markNotificationsViewed(w http.ResponseWriter, r *http.Request) {
	externalID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	viewedAt, err := h.notif.MarkViewed(r.Context(), externalID)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"last_notifications_viewed_at": viewedAt})
}

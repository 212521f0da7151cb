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
	"github.com/timele/timele-backend/pkg/pagination"
)

// OrdersController fronts direct order creation, listing and the
// status state machine.
type OrdersController struct {
	Gateway *gatewayclient.Client
	Logger  *logger.Logger
}

type createOrderBody struct {
	UserID string         `json:"userId" validate:"required"`
	Items  []cartItemBody `json:"items" validate:"required,min=1,dive"`

	DeliveryName  *string `json:"deliveryName"`
	PhoneNumber   *string `json:"phoneNumber"`
	StreetAddress *string `json:"streetAddress"`
	City          *string `json:"city"`
	PostalCode    *string `json:"postalCode"`
	Country       *string `json:"country"`
}

type orderStatusBody struct {
	Status    string  `json:"status" validate:"required"`
	ChangedBy *string `json:"changedBy"`
	Note      *string `json:"note"`
}

func (c *OrdersController) Create(w http.ResponseWriter, r *http.Request) {
	var body createOrderBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	userID, err := users.ParseExternalID(body.UserID)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.CreateOrder(r.Context(), userID, gatewayclient.CreateOrderPayload{
		Items:         itemPayloads(body.Items),
		DeliveryName:  body.DeliveryName,
		PhoneNumber:   body.PhoneNumber,
		StreetAddress: body.StreetAddress,
		City:          body.City,
		PostalCode:    body.PostalCode,
		Country:       body.Country,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Order created", dto.OrderFrom(view))
}

func (c *OrdersController) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	result, err := c.Gateway.ListOrders(r.Context(), userID, limit, offset)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Orders retrieved", dto.OrdersFrom(result))
}

func (c *OrdersController) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.ParsePathInt(chi.URLParam(r, "order_id"), "order id")
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.GetOrder(r.Context(), orderID)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Order retrieved", dto.OrderFrom(view))
}

func (c *OrdersController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.ParsePathInt(chi.URLParam(r, "order_id"), "order id")
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	var body orderStatusBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.UpdateOrderStatus(r.Context(), orderID, gatewayclient.TransitionPayload{
		Status:    body.Status,
		ChangedBy: body.ChangedBy,
		Note:      body.Note,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Order status updated", dto.OrderFrom(view))
}

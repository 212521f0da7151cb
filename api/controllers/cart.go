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

// CartController fronts the single-active-cart endpoints.
type CartController struct {
	Gateway *gatewayclient.Client
	Logger  *logger.Logger
}

type cartItemBody struct {
	ProductID int `json:"productId" validate:"required,min=1"`
	Quantity  int `json:"quantity" validate:"required,min=1"`
}

type createCartBody struct {
	UserID string         `json:"userId" validate:"required"`
	Items  []cartItemBody `json:"items" validate:"dive"`
}

type replaceCartBody struct {
	Items []cartItemBody `json:"items" validate:"dive"`
}

type setQuantityBody struct {
	Quantity int `json:"quantity"`
}

func itemPayloads(items []cartItemBody) []gatewayclient.ItemPayload {
	payloads := make([]gatewayclient.ItemPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, gatewayclient.ItemPayload{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return payloads
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.GetCart(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Cart retrieved", dto.CartFrom(view))
}

func (c *CartController) Create(w http.ResponseWriter, r *http.Request) {
	var body createCartBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	userID, err := users.ParseExternalID(body.UserID)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.CreateCart(r.Context(), userID, itemPayloads(body.Items))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusCreated, "Cart created", dto.CartFrom(view))
}

func (c *CartController) Replace(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	var body replaceCartBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.ReplaceCart(r.Context(), userID, itemPayloads(body.Items))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Cart replaced", dto.CartFrom(view))
}

func (c *CartController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	if err := c.Gateway.DeleteCart(r.Context(), userID); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Cart deleted", map[string]bool{"deleted": true})
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	var body cartItemBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.AddCartItem(r.Context(), userID, gatewayclient.ItemPayload{
		ProductID: body.ProductID,
		Quantity:  body.Quantity,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Item added", dto.CartFrom(view))
}

func (c *CartController) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	productID, err := validators.ParsePathInt(chi.URLParam(r, "product_id"), "product id")
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	var body setQuantityBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.SetCartItemQuantity(r.Context(), userID, int(productID), body.Quantity)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Item updated", dto.CartFrom(view))
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	productID, err := validators.ParsePathInt(chi.URLParam(r, "product_id"), "product id")
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.RemoveCartItem(r.Context(), userID, int(productID))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Item removed", dto.CartFrom(view))
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.ClearCart(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Cart cleared", dto.CartFrom(view))
}

func (c *CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.Checkout(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Order created from cart", dto.OrderFrom(view))
}

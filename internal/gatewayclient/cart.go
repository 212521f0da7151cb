package gatewayclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/timele/timele-backend/internal/cart"
	"github.com/timele/timele-backend/internal/orders"
)

// ItemPayload is one cart or order line on the wire.
type ItemPayload struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type itemsBody struct {
	Items []ItemPayload `json:"items"`
}

func (c *Client) GetCart(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	var view cart.View
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/cart/user/%s", userID), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) CreateCart(ctx context.Context, userID uuid.UUID, items []ItemPayload) (*cart.View, error) {
	var view cart.View
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cart/user/%s", userID), nil, itemsBody{Items: items}, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) ReplaceCart(ctx context.Context, userID uuid.UUID, items []ItemPayload) (*cart.View, error) {
	var view cart.View
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/user/%s", userID), nil, itemsBody{Items: items}, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) DeleteCart(ctx context.Context, userID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/user/%s", userID), nil, nil, nil)
}

func (c *Client) AddCartItem(ctx context.Context, userID uuid.UUID, item ItemPayload) (*cart.View, error) {
	var view cart.View
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cart/user/%s/items", userID), nil, item, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) SetCartItemQuantity(ctx context.Context, userID uuid.UUID, productID, quantity int) (*cart.View, error) {
	body := map[string]int{"quantity": quantity}
	var view cart.View
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/user/%s/items/%d", userID, productID), nil, body, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, userID uuid.UUID, productID int) (*cart.View, error) {
	var view cart.View
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/user/%s/items/%d", userID, productID), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) ClearCart(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	var view cart.View
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cart/user/%s/clear", userID), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) Checkout(ctx context.Context, userID uuid.UUID) (*orders.View, error) {
	var view orders.View
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cart/user/%s/checkout", userID), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

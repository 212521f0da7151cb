package gatewayclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/timele/timele-backend/internal/orders"
)

// CreateOrderPayload is the direct order creation body.
type CreateOrderPayload struct {
	Items []ItemPayload `json:"items"`

	DeliveryName  *string `json:"delivery_name,omitempty"`
	PhoneNumber   *string `json:"phone_number,omitempty"`
	StreetAddress *string `json:"street_address,omitempty"`
	City          *string `json:"city,omitempty"`
	PostalCode    *string `json:"postal_code,omitempty"`
	Country       *string `json:"country,omitempty"`
}

// TransitionPayload requests one status-machine step.
type TransitionPayload struct {
	Status    string  `json:"status"`
	ChangedBy *string `json:"changed_by,omitempty"`
	Note      *string `json:"note,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, userID uuid.UUID, payload CreateOrderPayload) (*orders.View, error) {
	var view orders.View
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/user/%s", userID), nil, payload, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) (*orders.ListResult, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	var result orders.ListResult
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/user/%s", userID), query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID int64) (*orders.View, error) {
	var view orders.View
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, payload TransitionPayload) (*orders.View, error) {
	var view orders.View
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/status", orderID), nil, payload, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Package dto renders internal snake_case views onto the external
// camelCase contract. Translation is mechanical; no business rules
// live here.
package dto

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/timele/timele-backend/internal/cart"
	"github.com/timele/timele-backend/internal/catalog"
	"github.com/timele/timele-backend/internal/notifications"
	"github.com/timele/timele-backend/internal/orders"
	"github.com/timele/timele-backend/internal/users"
	"github.com/timele/timele-backend/pkg/pagination"
	"github.com/timele/timele-backend/pkg/types"
)

type Pagination struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"perPage"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

func PaginationFrom(p pagination.Page) Pagination {
	return Pagination{
		Total:   p.Total,
		Page:    p.Page,
		PerPage: p.PerPage,
		HasNext: p.HasNext,
		HasPrev: p.HasPrev,
	}
}

type Item struct {
	ProductID      int              `json:"productId"`
	ProductName    string           `json:"productName"`
	Quantity       int              `json:"quantity"`
	AddToCartOrder int              `json:"addToCartOrder"`
	Reordered      bool             `json:"reordered"`
	Description    *string          `json:"description,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	ImageURL       *string          `json:"imageUrl,omitempty"`
	AisleName      *string          `json:"aisleName,omitempty"`
	DepartmentName *string          `json:"departmentName,omitempty"`
}

func ItemsFrom(items []types.EnrichedItem) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, Item{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			AddToCartOrder: item.AddToCartOrder,
			Reordered:      item.Reordered,
			Description:    item.Description,
			Price:          item.Price,
			ImageURL:       item.ImageURL,
			AisleName:      item.AisleName,
			DepartmentName: item.DepartmentName,
		})
	}
	return out
}

type User struct {
	UserID        uuid.UUID `json:"userId"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	EmailAddress  string    `json:"emailAddress"`
	PhoneNumber   *string   `json:"phoneNumber,omitempty"`
	StreetAddress *string   `json:"streetAddress,omitempty"`
	City          *string   `json:"city,omitempty"`
	PostalCode    *string   `json:"postalCode,omitempty"`
	Country       *string   `json:"country,omitempty"`

	LastLoginAt               *time.Time `json:"lastLoginAt,omitempty"`
	LastNotificationsViewedAt *time.Time `json:"lastNotificationsViewedAt,omitempty"`

	DaysBetweenOrderNotifications       int        `json:"daysBetweenOrderNotifications"`
	OrderNotificationsStartDateTime     time.Time  `json:"orderNotificationsStartDateTime"`
	OrderNotificationsNextScheduledTime time.Time  `json:"orderNotificationsNextScheduledTime"`
	PendingOrderNotification            bool       `json:"pendingOrderNotification"`
	OrderNotificationsViaEmail          bool       `json:"orderNotificationsViaEmail"`
	LastNotificationSentAt              *time.Time `json:"lastNotificationSentAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func UserFrom(v *users.View) User {
	return User{
		UserID:                              v.UserID,
		FirstName:                           v.FirstName,
		LastName:                            v.LastName,
		EmailAddress:                        v.EmailAddress,
		PhoneNumber:                         v.PhoneNumber,
		StreetAddress:                       v.StreetAddress,
		City:                                v.City,
		PostalCode:                          v.PostalCode,
		Country:                             v.Country,
		LastLoginAt:                         v.LastLoginAt,
		LastNotificationsViewedAt:           v.LastNotificationsViewedAt,
		DaysBetweenOrderNotifications:       v.DaysBetweenOrderNotifications,
		OrderNotificationsStartDateTime:     v.OrderNotificationsStartAt,
		OrderNotificationsNextScheduledTime: v.OrderNotificationsNextAt,
		PendingOrderNotification:            v.PendingOrderNotification,
		OrderNotificationsViaEmail:          v.OrderNotificationsViaEmail,
		LastNotificationSentAt:              v.LastNotificationSentAt,
		CreatedAt:                           v.CreatedAt,
	}
}

type LoginUser struct {
	User
	HasActiveCart bool `json:"hasActiveCart"`
}

func LoginFrom(v *users.LoginView) LoginUser {
	return LoginUser{User: UserFrom(&v.View), HasActiveCart: v.HasActiveCart}
}

type NotificationSettings struct {
	DaysBetweenOrderNotifications       int        `json:"daysBetweenOrderNotifications"`
	OrderNotificationsStartDateTime     time.Time  `json:"orderNotificationsStartDateTime"`
	OrderNotificationsNextScheduledTime time.Time  `json:"orderNotificationsNextScheduledTime"`
	PendingOrderNotification            bool       `json:"pendingOrderNotification"`
	OrderNotificationsViaEmail          bool       `json:"orderNotificationsViaEmail"`
	LastNotificationSentAt              *time.Time `json:"lastNotificationSentAt,omitempty"`
}

func SettingsFrom(v *users.NotificationSettingsView) NotificationSettings {
	return NotificationSettings{
		DaysBetweenOrderNotifications:       v.DaysBetweenOrderNotifications,
		OrderNotificationsStartDateTime:     v.OrderNotificationsStartAt,
		OrderNotificationsNextScheduledTime: v.OrderNotificationsNextAt,
		PendingOrderNotification:            v.PendingOrderNotification,
		OrderNotificationsViaEmail:          v.OrderNotificationsViaEmail,
		LastNotificationSentAt:              v.LastNotificationSentAt,
	}
}

type Cart struct {
	CartID     string    `json:"cartId"`
	UserID     uuid.UUID `json:"userId"`
	Items      []Item    `json:"items"`
	TotalItems int       `json:"totalItems"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func CartFrom(v *cart.View) Cart {
	return Cart{
		CartID:     strconv.FormatInt(v.CartID, 10),
		UserID:     v.UserID,
		Items:      ItemsFrom(v.Items),
		TotalItems: v.TotalItems(),
		UpdatedAt:  v.UpdatedAt,
	}
}

type HistoryEntry struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy *string   `json:"changedBy,omitempty"`
	Note      *string   `json:"note,omitempty"`
}

type Order struct {
	OrderID     string          `json:"orderId"`
	UserID      *uuid.UUID      `json:"userId,omitempty"`
	OrderNumber int64           `json:"orderNumber"`
	Status      string          `json:"status"`
	TotalItems  int             `json:"totalItems"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`

	DeliveryName  *string `json:"deliveryName,omitempty"`
	PhoneNumber   *string `json:"phoneNumber,omitempty"`
	StreetAddress *string `json:"streetAddress,omitempty"`
	City          *string `json:"city,omitempty"`
	PostalCode    *string `json:"postalCode,omitempty"`
	Country       *string `json:"country,omitempty"`

	TrackingNumber *string `json:"trackingNumber,omitempty"`
	Carrier        *string `json:"carrier,omitempty"`
	TrackingURL    *string `json:"trackingUrl,omitempty"`

	Items         []Item         `json:"items"`
	StatusHistory []HistoryEntry `json:"statusHistory,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func OrderFrom(v *orders.View) Order {
	history := make([]HistoryEntry, 0, len(v.History))
	for _, entry := range v.History {
		history = append(history, HistoryEntry{
			Status:    string(entry.Status),
			ChangedAt: entry.ChangedAt,
			ChangedBy: entry.ChangedBy,
			Note:      entry.Note,
		})
	}
	if len(history) == 0 {
		history = nil
	}
	return Order{
		OrderID:        strconv.FormatInt(v.OrderID, 10),
		UserID:         v.UserID,
		OrderNumber:    v.OrderNumber,
		Status:         string(v.Status),
		TotalItems:     v.TotalItems,
		TotalPrice:     v.TotalPrice,
		DeliveryName:   v.DeliveryName,
		PhoneNumber:    v.PhoneNumber,
		StreetAddress:  v.StreetAddress,
		City:           v.City,
		PostalCode:     v.PostalCode,
		Country:        v.Country,
		TrackingNumber: v.TrackingNumber,
		Carrier:        v.Carrier,
		TrackingURL:    v.TrackingURL,
		Items:          ItemsFrom(v.Items),
		StatusHistory:  history,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

type OrderList struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

func OrdersFrom(result *orders.ListResult) OrderList {
	views := make([]Order, 0, len(result.Orders))
	for i := range result.Orders {
		views = append(views, OrderFrom(&result.Orders[i]))
	}
	return OrderList{Orders: views, Pagination: PaginationFrom(result.Page)}
}

type Product struct {
	ProductID      int              `json:"productId"`
	ProductName    string           `json:"productName"`
	AisleID        int              `json:"aisleId"`
	AisleName      string           `json:"aisleName"`
	DepartmentID   int              `json:"departmentId"`
	DepartmentName string           `json:"departmentName"`
	Description    *string          `json:"description,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	ImageURL       *string          `json:"imageUrl,omitempty"`
}

func ProductFrom(v *catalog.ProductView) Product {
	return Product{
		ProductID:      v.ProductID,
		ProductName:    v.ProductName,
		AisleID:        v.AisleID,
		AisleName:      v.AisleName,
		DepartmentID:   v.DepartmentID,
		DepartmentName: v.DepartmentName,
		Description:    v.Description,
		Price:          v.Price,
		ImageURL:       v.ImageURL,
	}
}

type ProductList struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

func ProductsFrom(result *catalog.ListResult) ProductList {
	views := make([]Product, 0, len(result.Products))
	for i := range result.Products {
		views = append(views, ProductFrom(&result.Products[i]))
	}
	return ProductList{Products: views, Pagination: PaginationFrom(result.Page)}
}

type NotificationEvent struct {
	OrderID     string    `json:"orderId"`
	OrderNumber int64     `json:"orderNumber"`
	Status      string    `json:"status"`
	ChangedAt   time.Time `json:"changedAt"`
	ChangedBy   *string   `json:"changedBy,omitempty"`
	Note        *string   `json:"note,omitempty"`
}

type Notifications struct {
	PendingOrderNotification bool                `json:"pendingOrderNotification"`
	Notifications            []NotificationEvent `json:"notifications"`
}

func NotificationsFrom(result *notifications.ListResult) Notifications {
	events := make([]NotificationEvent, 0, len(result.Events))
	for _, event := range result.Events {
		events = append(events, NotificationEvent{
			OrderID:     strconv.FormatInt(event.OrderID, 10),
			OrderNumber: event.OrderNumber,
			Status:      string(event.Status),
			ChangedAt:   event.ChangedAt,
			ChangedBy:   event.ChangedBy,
			Note:        event.Note,
		})
	}
	return Notifications{
		PendingOrderNotification: result.PendingOrderNotification,
		Notifications:            events,
	}
}

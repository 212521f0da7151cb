package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/timele/timele-backend/pkg/enums"
	"github.com/timele/timele-backend/pkg/pagination"
	"github.com/timele/timele-backend/pkg/types"
)

// ItemInput is one requested order line for the direct creation path.
type ItemInput struct {
	ProductID int
	Quantity  int
}

// Delivery is the address snapshot copied onto the order at creation.
type Delivery struct {
	Name          *string
	PhoneNumber   *string
	StreetAddress *string
	City          *string
	PostalCode    *string
	Country       *string
}

// HistoryEntry is one append-only status history row.
type HistoryEntry struct {
	Status    enums.OrderStatus `json:"status"`
	ChangedAt time.Time         `json:"changed_at"`
	ChangedBy *string           `json:"changed_by,omitempty"`
	Note      *string           `json:"note,omitempty"`
}

// View is the external order representation. UserID is the owner's
// external UUID; it is nil when the owner account has been deleted.
type View struct {
	OrderID     int64             `json:"order_id"`
	UserID      *uuid.UUID        `json:"user_id,omitempty"`
	OrderNumber int64             `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
	TotalItems  int               `json:"total_items"`
	TotalPrice  decimal.Decimal   `json:"total_price"`

	DeliveryName  *string `json:"delivery_name,omitempty"`
	PhoneNumber   *string `json:"phone_number,omitempty"`
	StreetAddress *string `json:"street_address,omitempty"`
	City          *string `json:"city,omitempty"`
	PostalCode    *string `json:"postal_code,omitempty"`
	Country       *string `json:"country,omitempty"`

	TrackingNumber *string `json:"tracking_number,omitempty"`
	Carrier        *string `json:"carrier,omitempty"`
	TrackingURL    *string `json:"tracking_url,omitempty"`

	Items   []types.EnrichedItem `json:"items"`
	History []HistoryEntry       `json:"status_history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResult pages orders, not items; each entry still renders its
// enriched items in full.
type ListResult struct {
	Orders []View          `json:"orders"`
	Page   pagination.Page `json:"pagination"`
}

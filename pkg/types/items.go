package types

import "github.com/shopspring/decimal"

// EnrichedItem is a cart or order line joined with its catalog
// attributes at read time. JSON tags follow the internal snake_case
// contract between the gateway and the edge.
type EnrichedItem struct {
	ProductID      int              `json:"product_id"`
	ProductName    string           `json:"product_name"`
	Quantity       int              `json:"quantity"`
	AddToCartOrder int              `json:"add_to_cart_order"`
	Reordered      bool             `json:"reordered"`
	Description    *string          `json:"description,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
	AisleName      *string          `json:"aisle_name,omitempty"`
	DepartmentName *string          `json:"department_name,omitempty"`
}

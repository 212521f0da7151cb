package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/timele/timele-backend/pkg/pagination"
)

// ProductView join-renders a product with its aisle and department
// names plus the optional enrichment attributes.
type ProductView struct {
	ProductID      int              `json:"product_id"`
	ProductName    string           `json:"product_name"`
	AisleID        int              `json:"aisle_id"`
	AisleName      string           `json:"aisle_name"`
	DepartmentID   int              `json:"department_id"`
	DepartmentName string           `json:"department_name"`
	Description    *string          `json:"description,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
}

// ListParams narrows and orders a catalog listing. Categories match
// department names case-insensitively. Unrecognized sort keys fall
// back to the stable product-id ordering.
type ListParams struct {
	Search     string
	Categories []string
	Sort       string
	Page       pagination.Params
}

// ListResult pairs a product page with its pagination envelope.
type ListResult struct {
	Products []ProductView   `json:"products"`
	Page     pagination.Page `json:"pagination"`
}

// Enrichment is the bulk per-product lookup used when rendering cart
// and order items. A missing entry means the product has no enrichment
// row.
type Enrichment struct {
	ProductID   int
	ProductName string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	AisleName   string
	DepartmentName string
}

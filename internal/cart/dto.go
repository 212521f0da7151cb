package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/timele/timele-backend/pkg/types"
)

// Owner identifies the cart's user on both sides of the dual-id
// scheme: foreign keys use the internal id, responses carry only the
// external UUID.
type Owner struct {
	InternalID int64
	ExternalID uuid.UUID
}

// ItemInput is one requested cart line. Quantity semantics depend on
// the operation: create/replace require ≥ 1, set-quantity treats ≤ 0
// as removal.
type ItemInput struct {
	ProductID int
	Quantity  int
}

// View is the enriched cart representation. A user without a cart row
// gets CartID 0, no items and the current instant; the row is not
// created by reads.
type View struct {
	CartID    int64                `json:"cart_id"`
	UserID    uuid.UUID            `json:"user_id"`
	Items     []types.EnrichedItem `json:"items"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// TotalItems sums the line quantities.
func (v *View) TotalItems() int {
	total := 0
	for _, item := range v.Items {
		total += item.Quantity
	}
	return total
}

package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/timele/timele-backend/pkg/enums"
)

// Order ids come from orders_id_seq, which starts above the highest id
// in the migrated legacy dataset. UserID is nullable so order history
// survives user deletion.
type Order struct {
	ID          int64             `gorm:"column:id;primaryKey"`
	UserID      *int64            `gorm:"column:user_id"`
	OrderNumber int64             `gorm:"column:order_number;not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalItems  int               `gorm:"column:total_items;not null"`
	TotalPrice  decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null"`

	// Delivery snapshot, copied at creation time.
	DeliveryName  *string `gorm:"column:delivery_name"`
	PhoneNumber   *string `gorm:"column:phone_number"`
	StreetAddress *string `gorm:"column:street_address"`
	City          *string `gorm:"column:city"`
	PostalCode    *string `gorm:"column:postal_code"`
	Country       *string `gorm:"column:country"`

	TrackingNumber *string `gorm:"column:tracking_number"`
	Carrier        *string `gorm:"column:carrier"`
	TrackingURL    *string `gorm:"column:tracking_url"`
	Invoice        []byte  `gorm:"column:invoice"`

	Items   []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

// OrderItem never stores denormalized product attributes; enrichment is
// joined at read time so catalog edits propagate.
type OrderItem struct {
	OrderID        int64 `gorm:"column:order_id;primaryKey"`
	ProductID      int   `gorm:"column:product_id;primaryKey"`
	Quantity       int   `gorm:"column:quantity;not null"`
	AddToCartOrder int   `gorm:"column:add_to_cart_order;not null"`
	Reordered      bool  `gorm:"column:reordered;not null;default:false"`
}

func (OrderItem) TableName() string { return "order_items" }

// OrderStatusHistory is append-only; rows are never updated or deleted.
type OrderStatusHistory struct {
	HistoryID int64             `gorm:"column:history_id;primaryKey;autoIncrement"`
	OrderID   int64             `gorm:"column:order_id;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	ChangedAt time.Time         `gorm:"column:changed_at;not null"`
	ChangedBy *string           `gorm:"column:changed_by"`
	Note      *string           `gorm:"column:note"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }

package models

import "time"

// Cart is unique per user. Clearing removes items but keeps the row;
// deletion removes both.
type Cart struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (Cart) TableName() string { return "carts" }

// CartItem rows are keyed (cart_id, product_id); adding an existing
// product increments quantity instead of inserting a duplicate.
type CartItem struct {
	CartID         int64 `gorm:"column:cart_id;primaryKey"`
	ProductID      int   `gorm:"column:product_id;primaryKey"`
	Quantity       int   `gorm:"column:quantity;not null"`
	AddToCartOrder int   `gorm:"column:add_to_cart_order;not null"`
	Reordered      bool  `gorm:"column:reordered;not null;default:false"`
}

func (CartItem) TableName() string { return "cart_items" }

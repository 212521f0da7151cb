package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/timele/timele-backend/pkg/db/models"
	"github.com/timele/timele-backend/pkg/types"
)

// Repository owns the carts and cart_items tables. Mutations run inside
// the caller's transaction via WithTx; FindForUpdate takes the
// row-level lock that serializes concurrent edits to the same cart.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, userInternalID int64) (*models.Cart, error)
	FindForUpdate(ctx context.Context, userInternalID int64) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	Touch(ctx context.Context, cartID int64, at time.Time) error
	FindItem(ctx context.Context, cartID int64, productID int) (*models.CartItem, error)
	ReplaceItems(ctx context.Context, cartID int64, items []models.CartItem) error
	UpsertItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID int64, productID int) error
	ClearItems(ctx context.Context, cartID int64) error
	Delete(ctx context.Context, cartID int64) error
	EnrichedItems(ctx context.Context, cartID int64) ([]types.EnrichedItem, error)
	MaxAddToCartOrder(ctx context.Context, cartID int64) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, userInternalID int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userInternalID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindForUpdate(ctx context.Context, userInternalID int64) (*models.Cart, error) {
	q := r.db.WithContext(ctx)
	// sqlite (tests) has no row-level locks; serialization there comes
	// from the single-writer connection.
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart models.Cart
	if err := q.Where("user_id = ?", userInternalID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *repository) Touch(ctx context.Context, cartID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", at).Error
}

func (r *repository) FindItem(ctx context.Context, cartID int64, productID int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ReplaceItems(ctx context.Context, cartID int64, items []models.CartItem) error {
	if err := r.ClearItems(ctx, cartID); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) UpsertItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":  item.Quantity,
				"reordered": item.Reordered,
			}),
		}).
		Create(item).Error
}

func (r *repository) DeleteItem(ctx context.Context, cartID int64, productID int) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) ClearItems(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) Delete(ctx context.Context, cartID int64) error {
	if err := r.ClearItems(ctx, cartID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", cartID).
		Delete(&models.Cart{}).Error
}

type enrichedRow struct {
	ProductID      int              `gorm:"column:product_id"`
	ProductName    string           `gorm:"column:product_name"`
	Quantity       int              `gorm:"column:quantity"`
	AddToCartOrder int              `gorm:"column:add_to_cart_order"`
	Reordered      bool             `gorm:"column:reordered"`
	Description    *string          `gorm:"column:description"`
	Price          *decimal.Decimal `gorm:"column:price"`
	ImageURL       *string          `gorm:"column:image_url"`
	AisleName      *string          `gorm:"column:aisle_name"`
	DepartmentName *string          `gorm:"column:department_name"`
}

func (r *repository) EnrichedItems(ctx context.Context, cartID int64) ([]types.EnrichedItem, error) {
	var rows []enrichedRow
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select(`cart_items.product_id, products.name AS product_name, cart_items.quantity,
			cart_items.add_to_cart_order, cart_items.reordered,
			product_enriched.description, product_enriched.price, product_enriched.image_url,
			aisles.name AS aisle_name, departments.name AS department_name`).
		Joins("JOIN products ON products.id = cart_items.product_id").
		Joins("JOIN aisles ON aisles.id = products.aisle_id").
		Joins("JOIN departments ON departments.id = products.department_id").
		Joins("LEFT JOIN product_enriched ON product_enriched.product_id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.add_to_cart_order ASC, cart_items.product_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]types.EnrichedItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, types.EnrichedItem{
			ProductID:      row.ProductID,
			ProductName:    row.ProductName,
			Quantity:       row.Quantity,
			AddToCartOrder: row.AddToCartOrder,
			Reordered:      row.Reordered,
			Description:    row.Description,
			Price:          row.Price,
			ImageURL:       row.ImageURL,
			AisleName:      row.AisleName,
			DepartmentName: row.DepartmentName,
		})
	}
	return items, nil
}

func (r *repository) MaxAddToCartOrder(ctx context.Context, cartID int64) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Where("cart_id = ?", cartID).
		Select("MAX(add_to_cart_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

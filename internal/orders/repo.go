package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/timele/timele-backend/pkg/db/models"
	"github.com/timele/timele-backend/pkg/enums"
	"github.com/timele/timele-backend/pkg/pagination"
	"github.com/timele/timele-backend/pkg/types"
)

// legacyIDFloor is the first id above the migrated legacy dataset. The
// Postgres sequence starts there; the sqlite fallback enforces it.
const legacyIDFloor = 3422000

// Repository owns the orders, order_items and order_status_history
// tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextOrderID(ctx context.Context) (int64, error)
	MaxOrderNumber(ctx context.Context, userInternalID int64) (int64, error)
	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	AppendHistory(ctx context.Context, row *models.OrderStatusHistory) error
	Find(ctx context.Context, orderID int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error
	History(ctx context.Context, orderID int64) ([]models.OrderStatusHistory, error)
	CountForUser(ctx context.Context, userInternalID int64) (int64, error)
	ListForUser(ctx context.Context, userInternalID int64, page pagination.Params) ([]models.Order, error)
	EnrichedItems(ctx context.Context, orderID int64) ([]types.EnrichedItem, error)
	EnrichedItemsForOrders(ctx context.Context, orderIDs []int64) (map[int64][]types.EnrichedItem, error)
	UserExternalID(ctx context.Context, userInternalID int64) (uuid.UUID, error)
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

func (r *repository) NextOrderID(ctx context.Context) (int64, error) {
	if r.db.Dialector.Name() == "postgres" {
		var id int64
		err := r.db.WithContext(ctx).
			Raw("SELECT nextval('orders_id_seq')").
			Scan(&id).Error
		return id, err
	}

	// sqlite (tests) has no sequences.
	var max *int64
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("MAX(id)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil || *max < legacyIDFloor {
		return legacyIDFloor, nil
	}
	return *max + 1, nil
}

func (r *repository) MaxOrderNumber(ctx context.Context, userInternalID int64) (int64, error) {
	var max *int64
	err := r.db.WithContext(ctx).
		Table("orders").
		Where("user_id = ?", userInternalID).
		Select("MAX(order_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items", "History").Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) AppendHistory(ctx context.Context, row *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) Find(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (r *repository) History(ctx context.Context, orderID int64) ([]models.OrderStatusHistory, error) {
	var rows []models.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at ASC, history_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountForUser(ctx context.Context, userInternalID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userInternalID).
		Count(&count).Error
	return count, err
}

func (r *repository) ListForUser(ctx context.Context, userInternalID int64, page pagination.Params) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userInternalID).
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	return rows, err
}

type enrichedRow struct {
	OrderID        int64            `gorm:"column:order_id"`
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

func (r *repository) EnrichedItems(ctx context.Context, orderID int64) ([]types.EnrichedItem, error) {
	byOrder, err := r.EnrichedItemsForOrders(ctx, []int64{orderID})
	if err != nil {
		return nil, err
	}
	items, ok := byOrder[orderID]
	if !ok {
		return []types.EnrichedItem{}, nil
	}
	return items, nil
}

func (r *repository) UserExternalID(ctx context.Context, userInternalID int64) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.WithContext(ctx).
		Table("users").
		Where("internal_id = ?", userInternalID).
		Select("external_id").
		Scan(&id).Error
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) EnrichedItemsForOrders(ctx context.Context, orderIDs []int64) (map[int64][]types.EnrichedItem, error) {
	result := make(map[int64][]types.EnrichedItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	var rows []enrichedRow
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select(`order_items.order_id, order_items.product_id, products.name AS product_name,
			order_items.quantity, order_items.add_to_cart_order, order_items.reordered,
			product_enriched.description, product_enriched.price, product_enriched.image_url,
			aisles.name AS aisle_name, departments.name AS department_name`).
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN aisles ON aisles.id = products.aisle_id").
		Joins("JOIN departments ON departments.id = products.department_id").
		Joins("LEFT JOIN product_enriched ON product_enriched.product_id = order_items.product_id").
		Where("order_items.order_id IN ?", orderIDs).
		Order("order_items.order_id ASC, order_items.add_to_cart_order ASC, order_items.product_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.OrderID] = append(result[row.OrderID], types.EnrichedItem{
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
	return result, nil
}

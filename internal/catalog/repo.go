package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/timele/timele-backend/pkg/pagination"
)

// Filter narrows and orders the product listing query.
type Filter struct {
	Search       string
	Categories   []string
	DepartmentID int
	AisleID      int
	Sort         string
}

type productRow struct {
	ID             int              `gorm:"column:id"`
	Name           string           `gorm:"column:name"`
	AisleID        int              `gorm:"column:aisle_id"`
	AisleName      string           `gorm:"column:aisle_name"`
	DepartmentID   int              `gorm:"column:department_id"`
	DepartmentName string           `gorm:"column:department_name"`
	Description    *string          `gorm:"column:description"`
	Price          *decimal.Decimal `gorm:"column:price"`
	ImageURL       *string          `gorm:"column:image_url"`
}

// Repository reads the catalog tables. The catalog is append-only after
// bootstrap, so there is no write surface here.
type Repository interface {
	CountProducts(ctx context.Context, filter Filter) (int64, error)
	ListProducts(ctx context.Context, filter Filter, page pagination.Params) ([]productRow, error)
	FindProduct(ctx context.Context, id int) (*productRow, error)
	EnrichmentByIDs(ctx context.Context, ids []int) (map[int]Enrichment, error)
	ProductsExist(ctx context.Context, ids []int) (map[int]bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) base(ctx context.Context, filter Filter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("products").
		Select(`products.id, products.name, products.aisle_id, aisles.name AS aisle_name,
			products.department_id, departments.name AS department_name,
			product_enriched.description, product_enriched.price, product_enriched.image_url`).
		Joins("JOIN aisles ON aisles.id = products.aisle_id").
		Joins("JOIN departments ON departments.id = products.department_id").
		Joins("LEFT JOIN product_enriched ON product_enriched.product_id = products.id")

	if search := strings.TrimSpace(filter.Search); search != "" {
		q = q.Where("lower(products.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	var categories []string
	for _, category := range filter.Categories {
		if category = strings.TrimSpace(category); category != "" {
			categories = append(categories, strings.ToLower(category))
		}
	}
	if len(categories) > 0 {
		q = q.Where("lower(departments.name) IN ?", categories)
	}
	if filter.DepartmentID > 0 {
		q = q.Where("products.department_id = ?", filter.DepartmentID)
	}
	if filter.AisleID > 0 {
		q = q.Where("products.aisle_id = ?", filter.AisleID)
	}
	return q
}

func (r *repository) CountProducts(ctx context.Context, filter Filter) (int64, error) {
	var count int64
	err := r.base(ctx, filter).Count(&count).Error
	return count, err
}

func (r *repository) ListProducts(ctx context.Context, filter Filter, page pagination.Params) ([]productRow, error) {
	var rows []productRow
	err := r.base(ctx, filter).
		Order(orderClause(filter.Sort)).
		Limit(page.Limit).
		Offset(page.Offset).
		Scan(&rows).Error
	return rows, err
}

func orderClause(sort string) string {
	switch sort {
	case "name":
		return "lower(products.name) ASC, products.id ASC"
	case "price":
		// Unpriced products sort last.
		return "(product_enriched.price IS NULL) ASC, product_enriched.price ASC, products.id ASC"
	default:
		return "products.id ASC"
	}
}

func (r *repository) FindProduct(ctx context.Context, id int) (*productRow, error) {
	var rows []productRow
	err := r.base(ctx, Filter{}).
		Where("products.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *repository) EnrichmentByIDs(ctx context.Context, ids []int) (map[int]Enrichment, error) {
	result := make(map[int]Enrichment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []productRow
	err := r.base(ctx, Filter{}).
		Where("products.id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ID] = Enrichment{
			ProductID:      row.ID,
			ProductName:    row.Name,
			Description:    row.Description,
			Price:          row.Price,
			ImageURL:       row.ImageURL,
			AisleName:      row.AisleName,
			DepartmentName: row.DepartmentName,
		}
	}
	return result, nil
}

func (r *repository) ProductsExist(ctx context.Context, ids []int) (map[int]bool, error) {
	result := make(map[int]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var found []int
	err := r.db.WithContext(ctx).
		Table("products").
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}

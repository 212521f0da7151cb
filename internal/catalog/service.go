package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/pagination"
)

// Sort keys accepted on listing endpoints. name and price order on
// real columns; the catalog carries no creation timestamps or ratings,
// so the remaining keys resolve to the stable product-id ordering.
// Unknown keys are rejected.
var acceptedSortKeys = map[string]bool{
	"":           true,
	"name":       true,
	"price":      true,
	"createdAt":  true,
	"popularity": true,
	"rating":     true,
}

// Service is the catalog read surface.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Search(ctx context.Context, query string, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id int) (*ProductView, error)
	ListByDepartment(ctx context.Context, departmentID int, page pagination.Params) (*ListResult, error)
	ListByAisle(ctx context.Context, aisleID int, page pagination.Params) (*ListResult, error)
	EnrichmentByIDs(ctx context.Context, ids []int) (map[int]Enrichment, error)
	ProductsExist(ctx context.Context, ids []int) (map[int]bool, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if !acceptedSortKeys[params.Sort] {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "unsupported sort key").
			WithDetails(map[string]string{"sort": params.Sort})
	}

	filter := Filter{Search: params.Search, Categories: params.Categories, Sort: params.Sort}
	return s.list(ctx, filter, pagination.Normalize(params.Page.Limit, params.Page.Offset))
}

func (s *service) Search(ctx context.Context, query string, params ListParams) (*ListResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "search query is required")
	}
	params.Search = query
	return s.List(ctx, params)
}

func (s *service) Get(ctx context.Context, id int) (*ProductView, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "product id must be a positive integer")
	}

	row, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	view := viewFromRow(*row)
	return &view, nil
}

func (s *service) ListByDepartment(ctx context.Context, departmentID int, page pagination.Params) (*ListResult, error) {
	if departmentID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "department id must be a positive integer")
	}
	return s.list(ctx, Filter{DepartmentID: departmentID}, pagination.Normalize(page.Limit, page.Offset))
}

func (s *service) ListByAisle(ctx context.Context, aisleID int, page pagination.Params) (*ListResult, error) {
	if aisleID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "aisle id must be a positive integer")
	}
	return s.list(ctx, Filter{AisleID: aisleID}, pagination.Normalize(page.Limit, page.Offset))
}

func (s *service) EnrichmentByIDs(ctx context.Context, ids []int) (map[int]Enrichment, error) {
	enrichment, err := s.repo.EnrichmentByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bulk enrichment lookup")
	}
	return enrichment, nil
}

func (s *service) ProductsExist(ctx context.Context, ids []int) (map[int]bool, error) {
	exist, err := s.repo.ProductsExist(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "product existence lookup")
	}
	return exist, nil
}

func (s *service) list(ctx context.Context, filter Filter, page pagination.Params) (*ListResult, error) {
	total, err := s.repo.CountProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}

	rows, err := s.repo.ListProducts(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	products := make([]ProductView, 0, len(rows))
	for _, row := range rows {
		products = append(products, viewFromRow(row))
	}

	return &ListResult{
		Products: products,
		Page:     pagination.BuildPage(total, page),
	}, nil
}

func viewFromRow(row productRow) ProductView {
	return ProductView{
		ProductID:      row.ID,
		ProductName:    row.Name,
		AisleID:        row.AisleID,
		AisleName:      row.AisleName,
		DepartmentID:   row.DepartmentID,
		DepartmentName: row.DepartmentName,
		Description:    row.Description,
		Price:          row.Price,
		ImageURL:       row.ImageURL,
	}
}

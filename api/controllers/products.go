package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timele/timele-backend/api/dto"
	"github.com/timele/timele-backend/api/responses"
	"github.com/timele/timele-backend/api/validators"
	"github.com/timele/timele-backend/internal/gatewayclient"
	"github.com/timele/timele-backend/pkg/logger"
	"github.com/timele/timele-backend/pkg/pagination"
)

// ProductsController fronts the read-only catalog endpoints.
type ProductsController struct {
	Gateway *gatewayclient.Client
	Logger  *logger.Logger
}

func (c *ProductsController) query(r *http.Request) (gatewayclient.ProductQuery, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return gatewayclient.ProductQuery{}, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		return gatewayclient.ProductQuery{}, err
	}
	values := r.URL.Query()
	return gatewayclient.ProductQuery{
		Search:     values.Get("search"),
		Categories: values["categories"],
		Sort:       values.Get("sort"),
		Limit:      limit,
		Offset:     offset,
	}, nil
}

func (c *ProductsController) List(w http.ResponseWriter, r *http.Request) {
	query, err := c.query(r)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	result, err := c.Gateway.ListProducts(r.Context(), query)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Products retrieved", dto.ProductsFrom(result))
}

func (c *ProductsController) Search(w http.ResponseWriter, r *http.Request) {
	query, err := c.query(r)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	result, err := c.Gateway.SearchProducts(r.Context(), r.URL.Query().Get("q"), query)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Products retrieved", dto.ProductsFrom(result))
}

func (c *ProductsController) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := validators.ParsePathInt(chi.URLParam(r, "product_id"), "product id")
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	view, err := c.Gateway.GetProduct(r.Context(), int(productID))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Product retrieved", dto.ProductFrom(view))
}

func (c *ProductsController) ListByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, err := validators.ParsePathInt(chi.URLParam(r, "department_id"), "department id")
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	query, err := c.query(r)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	result, err := c.Gateway.ProductsByDepartment(r.Context(), int(departmentID), query.Limit, query.Offset)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Products retrieved", dto.ProductsFrom(result))
}

func (c *ProductsController) ListByAisle(w http.ResponseWriter, r *http.Request) {
	aisleID, err := validators.ParsePathInt(chi.URLParam(r, "aisle_id"), "aisle id")
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	query, err := c.query(r)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	result, err := c.Gateway.ProductsByAisle(r.Context(), int(aisleID), query.Limit, query.Offset)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, http.StatusOK, "Products retrieved", dto.ProductsFrom(result))
}

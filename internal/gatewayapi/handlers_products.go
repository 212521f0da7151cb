package gatewayapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timele/timele-backend/api/validators"
	"github.com/timele/timele-backend/internal/catalog"
	"github.com/timele/timele-backend/pkg/logger"
)

type productsHandler struct {
	svc  catalog.Service
	logg *logger.Logger
}

func (h *productsHandler) listParams(r *http.Request) (catalog.ListParams, error) {
	page, err := validators.ParsePagination(r)
	if err != nil {
		return catalog.ListParams{}, err
	}
	query := r.URL.Query()
	return catalog.ListParams{
		Search:     query.Get("search"),
		Categories: query["categories"],
		Sort:       query.Get("sort"),
		Page:       page,
	}, nil
}

func (h *productsHandler) list(w http.ResponseWriter, r *http.Request) {
	params, err := h.listParams(r)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.svc.List(r.Context(), params)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *productsHandler) search(w http.ResponseWriter, r *http.Request) {
	params, err := h.listParams(r)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"), params)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *productsHandler) get(w http.ResponseWriter, r *http.Request) {
	productID, err := validators.ParsePathInt(chi.URLParam(r, "product_id"), "product id")
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.Get(r.Context(), int(productID))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *productsHandler) listByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, err := validators.ParsePathInt(chi.URLParam(r, "department_id"), "department id")
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	page, err := validators.ParsePagination(r)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.svc.ListByDepartment(r.Context(), int(departmentID), page)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *productsHandler) listByAisle(w http.ResponseWriter, r *http.Request) {
	aisleID, err := validators.ParsePathInt(chi.URLParam(r, "aisle_id"), "aisle id")
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	page, err := validators.ParsePagination(r)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.svc.ListByAisle(r.Context(), int(aisleID), page)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

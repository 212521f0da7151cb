package gatewayapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timele/timele-backend/api/validators"
	"github.com/timele/timele-backend/internal/orders"
	"github.com/timele/timele-backend/internal/users"
	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/enums"
	"github.com/timele/timele-backend/pkg/logger"
)

type ordersHandler struct {
	svc   orders.Service
	users users.Service
	logg  *logger.Logger
}

type createOrderRequest struct {
	Items []cartItemRequest `json:"items" validate:"required,min=1,dive"`

	DeliveryName  *string `json:"delivery_name"`
	PhoneNumber   *string `json:"phone_number"`
	StreetAddress *string `json:"street_address"`
	City          *string `json:"city"`
	PostalCode    *string `json:"postal_code"`
	Country       *string `json:"country"`
}

type transitionRequest struct {
	Status    string  `json:"status" validate:"required"`
	ChangedBy *string `json:"changed_by"`
	Note      *string `json:"note"`
}

func (h *ordersHandler) create(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req createOrderRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	items := make([]orders.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orders.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	view, err := h.svc.Create(r.Context(), owner, items, orders.Delivery{
		Name:          req.DeliveryName,
		PhoneNumber:   req.PhoneNumber,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
	})
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *ordersHandler) listForUser(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	page, err := validators.ParsePagination(r)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	result, err := h.svc.ListForUser(r.Context(), owner, page)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ordersHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.ParsePathInt(chi.URLParam(r, "order_id"), "order id")
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.Get(r.Context(), orderID)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ordersHandler) transition(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.ParsePathInt(chi.URLParam(r, "order_id"), "order id")
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req transitionRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	status, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		writeError(r.Context(), h.logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, "unknown order status"))
		return
	}

	actor := "system"
	if req.ChangedBy != nil && *req.ChangedBy != "" {
		actor = *req.ChangedBy
	}

	view, err := h.svc.Transition(r.Context(), orderID, status, actor, req.Note)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

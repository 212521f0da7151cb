package gatewayapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timele/timele-backend/api/validators"
	"github.com/timele/timele-backend/internal/cart"
	"github.com/timele/timele-backend/internal/orders"
	"github.com/timele/timele-backend/internal/users"
	"github.com/timele/timele-backend/pkg/logger"
)

type cartHandler struct {
	svc    cart.Service
	orders orders.Service
	users  users.Service
	logg   *logger.Logger
}

type cartItemRequest struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
	Quantity  int `json:"quantity" validate:"required,min=1"`
}

type cartItemsRequest struct {
	Items []cartItemRequest `json:"items" validate:"dive"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// resolveOwner maps the path's external user id onto the dual-id owner
// used by cart and order foreign keys.
func resolveOwner(r *http.Request, svc users.Service) (cart.Owner, error) {
	externalID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		return cart.Owner{}, err
	}
	internalID, err := svc.ResolveInternalID(r.Context(), externalID)
	if err != nil {
		return cart.Owner{}, err
	}
	return cart.Owner{InternalID: internalID, ExternalID: externalID}, nil
}

func itemInputs(items []cartItemRequest) []cart.ItemInput {
	inputs := make([]cart.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, cart.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return inputs
}

func (h *cartHandler) get(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.Get(r.Context(), owner)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *cartHandler) create(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req cartItemsRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.Create(r.Context(), owner, itemInputs(req.Items))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *cartHandler) replace(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req cartItemsRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.Replace(r.Context(), owner, itemInputs(req.Items))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *cartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req cartItemRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.AddItem(r.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *cartHandler) setItemQuantity(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	productID, err := validators.ParsePathInt(chi.URLParam(r, "product_id"), "product id")
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	var req quantityRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.SetItemQuantity(r.Context(), owner, int(productID), req.Quantity)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *cartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	productID, err := validators.ParsePathInt(chi.URLParam(r, "product_id"), "product id")
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.RemoveItem(r.Context(), owner, int(productID))
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *cartHandler) clear(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.svc.Clear(r.Context(), owner)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *cartHandler) delete(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), owner); err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *cartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	owner, err := resolveOwner(r, h.users)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}

	view, err := h.orders.Checkout(r.Context(), owner)
	if err != nil {
		writeError(r.Context(), h.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

package gatewayapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appmiddleware "github.com/timele/timele-backend/api/middleware"
	"github.com/timele/timele-backend/internal/cart"
	"github.com/timele/timele-backend/internal/catalog"
	"github.com/timele/timele-backend/internal/notifications"
	"github.com/timele/timele-backend/internal/orders"
	"github.com/timele/timele-backend/internal/users"
	"github.com/timele/timele-backend/pkg/db"
	"github.com/timele/timele-backend/pkg/logger"
)

// RouterParams carries every dependency the internal surface needs.
type RouterParams struct {
	Logger        *logger.Logger
	Client        *db.Client
	Users         users.Service
	Catalog       catalog.Service
	Cart          cart.Service
	Orders        orders.Service
	Notifications notifications.Service
}

func NewRouter(params RouterParams) (http.Handler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Users == nil || params.Catalog == nil || params.Cart == nil ||
		params.Orders == nil || params.Notifications == nil {
		return nil, fmt.Errorf("all services required")
	}

	usersH := &usersHandler{svc: params.Users, notif: params.Notifications, logg: params.Logger}
	productsH := &productsHandler{svc: params.Catalog, logg: params.Logger}
	cartH := &cartHandler{svc: params.Cart, orders: params.Orders, users: params.Users, logg: params.Logger}
	ordersH := &ordersHandler{svc: params.Orders, users: params.Users, logg: params.Logger}

	r := chi.NewRouter()
	r.Use(appmiddleware.RequestID(params.Logger))
	r.Use(appmiddleware.Logging(params.Logger))
	r.Use(appmiddleware.Recoverer(params.Logger, func(ctx context.Context, w http.ResponseWriter, err error) {
		writeError(ctx, params.Logger, w, err)
	}))

	r.Get("/health", healthHandler(params.Client, params.Logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", usersH.register)
		r.Post("/login", usersH.login)
		r.Route("/{user_id}", func(r chi.Router) {
			r.Get("/", usersH.get)
			r.Put("/", usersH.update)
			r.Delete("/", usersH.delete)
			r.Post("/password", usersH.changePassword)
			r.Post("/email", usersH.changeEmail)
			r.Get("/notification-settings", usersH.getNotificationSettings)
			r.Put("/notification-settings", usersH.updateNotificationSettings)
			r.Get("/notifications", usersH.listNotifications)
			r.Post("/notifications/viewed", usersH.markNotificationsViewed)
		})
	})

	r.Route("/cart/user/{user_id}", func(r chi.Router) {
		r.Get("/", cartH.get)
		r.Post("/", cartH.create)
		r.Put("/", cartH.replace)
		r.Delete("/", cartH.delete)
		r.Post("/items", cartH.addItem)
		r.Put("/items/{product_id}", cartH.setItemQuantity)
		r.Delete("/items/{product_id}", cartH.removeItem)
		r.Post("/clear", cartH.clear)
		r.Post("/checkout", cartH.checkout)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/user/{user_id}", ordersH.create)
		r.Get("/user/{user_id}", ordersH.listForUser)
		r.Get("/{order_id}", ordersH.get)
		r.Post("/{order_id}/status", ordersH.transition)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", productsH.list)
		r.Get("/search", productsH.search)
		r.Get("/department/{department_id}", productsH.listByDepartment)
		r.Get("/aisle/{aisle_id}", productsH.listByAisle)
		r.Get("/{product_id}", productsH.get)
	})

	return r, nil
}

func healthHandler(client *db.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := client.Ping(r.Context()); err != nil {
			logg.Error(r.Context(), "health.db_unreachable", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

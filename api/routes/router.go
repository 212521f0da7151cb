package routes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/timele/timele-backend/api/controllers"
	appmiddleware "github.com/timele/timele-backend/api/middleware"
	"github.com/timele/timele-backend/api/responses"
	"github.com/timele/timele-backend/internal/gatewayclient"
	"github.com/timele/timele-backend/internal/recs"
	"github.com/timele/timele-backend/pkg/logger"
)

// RouterParams carries the edge process dependencies.
type RouterParams struct {
	Logger         *logger.Logger
	Gateway        *gatewayclient.Client
	Recommender    *recs.Client
	AllowedOrigins []string
}

// NewRouter builds the external camelCase surface under /api.
func NewRouter(params RouterParams) (http.Handler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if params.Recommender == nil {
		return nil, fmt.Errorf("recommender client required")
	}

	origins := params.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	usersC := &controllers.UsersController{Gateway: params.Gateway, Logger: params.Logger}
	cartC := &controllers.CartController{Gateway: params.Gateway, Logger: params.Logger}
	ordersC := &controllers.OrdersController{Gateway: params.Gateway, Logger: params.Logger}
	productsC := &controllers.ProductsController{Gateway: params.Gateway, Logger: params.Logger}
	predictionsC := &controllers.PredictionsController{
		Gateway:     params.Gateway,
		Recommender: params.Recommender,
		Logger:      params.Logger,
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(appmiddleware.RequestID(params.Logger))
	r.Use(appmiddleware.Logging(params.Logger))
	r.Use(appmiddleware.Recoverer(params.Logger, func(ctx context.Context, w http.ResponseWriter, err error) {
		responses.WriteError(ctx, params.Logger, w, err)
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			responses.WriteSuccess(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", usersC.Register)
			r.Post("/login", usersC.Login)
			r.Post("/logout", usersC.Logout)
			r.Route("/{user_id}", func(r chi.Router) {
				r.Get("/", usersC.Get)
				r.Put("/", usersC.Update)
				r.Delete("/", usersC.Delete)
				r.Put("/password", usersC.ChangePassword)
				r.Put("/email", usersC.ChangeEmail)
				r.Get("/notification-settings", usersC.GetNotificationSettings)
				r.Put("/notification-settings", usersC.UpdateNotificationSettings)
				r.Get("/order-status-notifications", usersC.ListOrderStatusNotifications)
				r.Post("/order-status-notifications/viewed", usersC.MarkNotificationsViewed)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", cartC.Create)
			r.Route("/{user_id}", func(r chi.Router) {
				r.Get("/", cartC.Get)
				r.Put("/", cartC.Replace)
				r.Delete("/", cartC.Delete)
				r.Post("/items", cartC.AddItem)
				r.Put("/items/{product_id}", cartC.SetItemQuantity)
				r.Delete("/items/{product_id}", cartC.RemoveItem)
				r.Delete("/clear", cartC.Clear)
				r.Post("/checkout", cartC.Checkout)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordersC.Create)
			r.Get("/user/{user_id}", ordersC.ListForUser)
			r.Get("/{order_id}", ordersC.Get)
			r.Put("/{order_id}/status", ordersC.UpdateStatus)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productsC.List)
			r.Get("/search", productsC.Search)
			r.Get("/department/{department_id}", productsC.ListByDepartment)
			r.Get("/aisle/{aisle_id}", productsC.ListByAisle)
			r.Get("/{product_id}", productsC.Get)
		})

		r.Get("/predictions/user/{user_id}", predictionsC.Predict)
	})

	return r, nil
}

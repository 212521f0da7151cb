package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/timele/timele-backend/internal/cart"
	"github.com/timele/timele-backend/internal/catalog"
	"github.com/timele/timele-backend/pkg/db"
	"github.com/timele/timele-backend/pkg/db/models"
	"github.com/timele/timele-backend/pkg/enums"
	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/pagination"
	"github.com/timele/timele-backend/pkg/types"
)

const createdNote = "Order created"

// Service owns order creation and the status state machine. Transition
// is the only code path that mutates Order.status, and every mutation
// appends exactly one history row.
type Service interface {
	Checkout(ctx context.Context, owner cart.Owner) (*View, error)
	Create(ctx context.Context, owner cart.Owner, items []ItemInput, delivery Delivery) (*View, error)
	Transition(ctx context.Context, orderID int64, next enums.OrderStatus, actor string, note *string) (*View, error)
	Get(ctx context.Context, orderID int64) (*View, error)
	ListForUser(ctx context.Context, owner cart.Owner, page pagination.Params) (*ListResult, error)
}

type service struct {
	client   *db.Client
	repo     Repository
	cartRepo cart.Repository
	catalog  catalog.Service
	now      func() time.Time
}

func NewService(client *db.Client, repo Repository, cartRepo cart.Repository, catalogSvc catalog.Service, now func() time.Time) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{client: client, repo: repo, cartRepo: cartRepo, catalog: catalogSvc, now: now}, nil
}

// Checkout converts the user's cart into a pending order in one
// transaction. Any failure rolls everything back, leaving cart and
// order state untouched.
func (s *service) Checkout(ctx context.Context, owner cart.Owner) (*View, error) {
	var view *View
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		userCart, err := cartRepo.FindForUpdate(ctx, owner.InternalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart")
		}

		lines, err := cartRepo.EnrichedItems(ctx, userCart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read cart items")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		order, err := s.createOrder(ctx, repo, owner, lines, Delivery{})
		if err != nil {
			return err
		}

		// Cart row is retained; only the items move to the order.
		if err := cartRepo.ClearItems(ctx, userCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		if err := cartRepo.Touch(ctx, userCart.ID, s.now()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stamp cart")
		}

		v, err := s.detailView(ctx, repo, order)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Create is the direct path: items come from the request and the cart
// is not touched.
func (s *service) Create(ctx context.Context, owner cart.Owner, items []ItemInput, delivery Delivery) (*View, error) {
	lines, err := s.linesFromInput(ctx, items)
	if err != nil {
		return nil, err
	}

	var view *View
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.createOrder(ctx, repo, owner, lines, delivery)
		if err != nil {
			return err
		}
		v, err := s.detailView(ctx, repo, order)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) Transition(ctx context.Context, orderID int64, next enums.OrderStatus, actor string, note *string) (*View, error) {
	var view *View
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.Find(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
		}

		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeIllegalTransition,
				fmt.Sprintf("cannot transition order from %s to %s", order.Status, next))
		}

		now := s.now()
		if err := repo.UpdateStatus(ctx, order.ID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
		}

		var changedBy *string
		if actor != "" {
			changedBy = &actor
		}
		if err := repo.AppendHistory(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    next,
			ChangedAt: now,
			ChangedBy: changedBy,
			Note:      note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append history")
		}

		order.Status = next
		order.UpdatedAt = now
		v, err := s.detailView(ctx, repo, order)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) Get(ctx context.Context, orderID int64) (*View, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidIDFormat, "order id must be a positive integer")
	}

	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}
	return s.detailView(ctx, s.repo, order)
}

func (s *service) ListForUser(ctx context.Context, owner cart.Owner, page pagination.Params) (*ListResult, error) {
	page = pagination.Normalize(page.Limit, page.Offset)

	total, err := s.repo.CountForUser(ctx, owner.InternalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}

	rows, err := s.repo.ListForUser(ctx, owner.InternalID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	itemsByOrder, err := s.repo.EnrichedItemsForOrders(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render order items")
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		items := itemsByOrder[row.ID]
		if items == nil {
			items = []types.EnrichedItem{}
		}
		view := viewFromModel(&row, items, nil)
		view.UserID = &owner.ExternalID
		views = append(views, *view)
	}

	return &ListResult{
		Orders: views,
		Page:   pagination.BuildPage(total, page),
	}, nil
}

// createOrder runs the shared creation steps inside the caller's
// transaction: id from the preserved range, per-user order number,
// item copy, totals, and the initial pending history row.
func (s *service) createOrder(ctx context.Context, repo Repository, owner cart.Owner, lines []types.EnrichedItem, delivery Delivery) (*models.Order, error) {
	orderID, err := repo.NextOrderID(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign order id")
	}
	maxNumber, err := repo.MaxOrderNumber(ctx, owner.InternalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign order number")
	}

	totalItems := 0
	totalPrice := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		totalItems += line.Quantity
		if line.Price != nil {
			totalPrice = totalPrice.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		items = append(items, models.OrderItem{
			OrderID:        orderID,
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			AddToCartOrder: line.AddToCartOrder,
			Reordered:      line.Reordered,
		})
	}

	now := s.now()
	userID := owner.InternalID
	order := &models.Order{
		ID:            orderID,
		UserID:        &userID,
		OrderNumber:   maxNumber + 1,
		Status:        enums.OrderStatusPending,
		TotalItems:    totalItems,
		TotalPrice:    totalPrice,
		DeliveryName:  delivery.Name,
		PhoneNumber:   delivery.PhoneNumber,
		StreetAddress: delivery.StreetAddress,
		City:          delivery.City,
		PostalCode:    delivery.PostalCode,
		Country:       delivery.Country,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	if err := repo.CreateItems(ctx, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order items")
	}

	note := createdNote
	if err := repo.AppendHistory(ctx, &models.OrderStatusHistory{
		OrderID:   orderID,
		Status:    enums.OrderStatusPending,
		ChangedAt: now,
		Note:      &note,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append history")
	}
	return order, nil
}

// linesFromInput validates direct-creation items and shapes them like
// cart lines, priced from the enrichment table.
func (s *service) linesFromInput(ctx context.Context, items []ItemInput) ([]types.EnrichedItem, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "order requires at least one item")
	}

	ids := make([]int, 0, len(items))
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if item.ProductID <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "product id must be a positive integer")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity must be at least 1").
				WithDetails(map[string]int{"product_id": item.ProductID})
		}
		if seen[item.ProductID] {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "duplicate product in request").
				WithDetails(map[string]int{"product_id": item.ProductID})
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	enrichment, err := s.catalog.EnrichmentByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]types.EnrichedItem, 0, len(items))
	for i, item := range items {
		info, ok := enrichment[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "unknown product").
				WithDetails(map[string]int{"product_id": item.ProductID})
		}
		lines = append(lines, types.EnrichedItem{
			ProductID:      item.ProductID,
			ProductName:    info.ProductName,
			Quantity:       item.Quantity,
			AddToCartOrder: i + 1,
			Price:          info.Price,
		})
	}
	return lines, nil
}

func (s *service) detailView(ctx context.Context, repo Repository, order *models.Order) (*View, error) {
	items, err := repo.EnrichedItems(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render order items")
	}
	history, err := repo.History(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read order history")
	}

	entries := make([]HistoryEntry, 0, len(history))
	for _, row := range history {
		entries = append(entries, HistoryEntry{
			Status:    row.Status,
			ChangedAt: row.ChangedAt,
			ChangedBy: row.ChangedBy,
			Note:      row.Note,
		})
	}

	view := viewFromModel(order, items, entries)
	if order.UserID != nil {
		externalID, err := repo.UserExternalID(ctx, *order.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve order owner")
		}
		if externalID != uuid.Nil {
			view.UserID = &externalID
		}
	}
	return view, nil
}

func viewFromModel(order *models.Order, items []types.EnrichedItem, history []HistoryEntry) *View {
	return &View{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		TotalItems:     order.TotalItems,
		TotalPrice:     order.TotalPrice,
		DeliveryName:   order.DeliveryName,
		PhoneNumber:    order.PhoneNumber,
		StreetAddress:  order.StreetAddress,
		City:           order.City,
		PostalCode:     order.PostalCode,
		Country:        order.Country,
		TrackingNumber: order.TrackingNumber,
		Carrier:        order.Carrier,
		TrackingURL:    order.TrackingURL,
		Items:          items,
		History:        history,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

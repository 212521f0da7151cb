package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/timele/timele-backend/internal/catalog"
	"github.com/timele/timele-backend/pkg/db"
	"github.com/timele/timele-backend/pkg/db/models"
	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/types"
)

// Service owns every cart mutation. Each mutation runs in one
// transaction with the cart row locked, so concurrent edits by the
// same user serialize.
type Service interface {
	Get(ctx context.Context, owner Owner) (*View, error)
	Create(ctx context.Context, owner Owner, items []ItemInput) (*View, error)
	Replace(ctx context.Context, owner Owner, items []ItemInput) (*View, error)
	AddItem(ctx context.Context, owner Owner, productID, quantity int) (*View, error)
	SetItemQuantity(ctx context.Context, owner Owner, productID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, owner Owner, productID int) (*View, error)
	Clear(ctx context.Context, owner Owner) (*View, error)
	Delete(ctx context.Context, owner Owner) error
}

type service struct {
	client  *db.Client
	repo    Repository
	catalog catalog.Service
	now     func() time.Time
}

func NewService(client *db.Client, repo Repository, catalogSvc catalog.Service, now func() time.Time) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{client: client, repo: repo, catalog: catalogSvc, now: now}, nil
}

func (s *service) Get(ctx context.Context, owner Owner) (*View, error) {
	cart, err := s.repo.Find(ctx, owner.InternalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Reads never create the row.
			return &View{
				UserID:    owner.ExternalID,
				Items:     []types.EnrichedItem{},
				UpdatedAt: s.now(),
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart")
	}
	return s.view(ctx, s.repo, owner, cart)
}

func (s *service) Create(ctx context.Context, owner Owner, items []ItemInput) (*View, error) {
	if err := s.validateItems(ctx, items, true); err != nil {
		return nil, err
	}

	var view *View
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.Find(ctx, owner.InternalID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart")
		}

		now := s.now()
		cart := &models.Cart{UserID: owner.InternalID, UpdatedAt: now}
		if err := repo.Create(ctx, cart); err != nil {
			if pkgerrors.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "cart already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
		}

		if err := repo.ReplaceItems(ctx, cart.ID, buildItems(cart.ID, items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write cart items")
		}

		v, err := s.view(ctx, repo, owner, cart)
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

func (s *service) Replace(ctx context.Context, owner Owner, items []ItemInput) (*View, error) {
	if err := s.validateItems(ctx, items, true); err != nil {
		return nil, err
	}

	return s.mutate(ctx, owner, true, func(repo Repository, cart *models.Cart) error {
		return repo.ReplaceItems(ctx, cart.ID, buildItems(cart.ID, items))
	})
}

func (s *service) AddItem(ctx context.Context, owner Owner, productID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity must be at least 1")
	}
	if err := s.validateItems(ctx, []ItemInput{{ProductID: productID, Quantity: quantity}}, true); err != nil {
		return nil, err
	}

	return s.mutate(ctx, owner, true, func(repo Repository, cart *models.Cart) error {
		existing, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart item")
		}

		if existing != nil {
			existing.Quantity += quantity
			return repo.UpsertItem(ctx, existing)
		}

		maxOrder, err := repo.MaxAddToCartOrder(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "next cart position")
		}
		return repo.UpsertItem(ctx, &models.CartItem{
			CartID:         cart.ID,
			ProductID:      productID,
			Quantity:       quantity,
			AddToCartOrder: maxOrder + 1,
		})
	})
}

func (s *service) SetItemQuantity(ctx context.Context, owner Owner, productID, quantity int) (*View, error) {
	return s.mutate(ctx, owner, false, func(repo Repository, cart *models.Cart) error {
		existing, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart item")
		}

		if quantity <= 0 {
			return repo.DeleteItem(ctx, cart.ID, productID)
		}
		existing.Quantity = quantity
		return repo.UpsertItem(ctx, existing)
	})
}

func (s *service) RemoveItem(ctx context.Context, owner Owner, productID int) (*View, error) {
	return s.mutate(ctx, owner, false, func(repo Repository, cart *models.Cart) error {
		if _, err := repo.FindItem(ctx, cart.ID, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart item")
		}
		return repo.DeleteItem(ctx, cart.ID, productID)
	})
}

func (s *service) Clear(ctx context.Context, owner Owner) (*View, error) {
	// Clearing keeps the cart row; only the items go.
	return s.mutate(ctx, owner, false, func(repo Repository, cart *models.Cart) error {
		return repo.ClearItems(ctx, cart.ID)
	})
}

func (s *service) Delete(ctx context.Context, owner Owner) error {
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindForUpdate(ctx, owner.InternalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart")
		}
		if err := repo.Delete(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart")
		}
		return nil
	})
}

// mutate wraps the shared transaction shape: lock (or create) the cart
// row, apply fn, stamp updated_at, render the enriched view.
func (s *service) mutate(ctx context.Context, owner Owner, createIfMissing bool, fn func(repo Repository, cart *models.Cart) error) (*View, error) {
	var view *View
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now()

		cart, err := repo.FindForUpdate(ctx, owner.InternalID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart")
			}
			if !createIfMissing {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			cart = &models.Cart{UserID: owner.InternalID, UpdatedAt: now}
			if err := repo.Create(ctx, cart); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
			}
		}

		if err := fn(repo, cart); err != nil {
			return err
		}
		if err := repo.Touch(ctx, cart.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stamp cart")
		}
		cart.UpdatedAt = now

		v, err := s.view(ctx, repo, owner, cart)
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

func (s *service) view(ctx context.Context, repo Repository, owner Owner, cart *models.Cart) (*View, error) {
	items, err := repo.EnrichedItems(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render cart items")
	}
	return &View{
		CartID:    cart.ID,
		UserID:    owner.ExternalID,
		Items:     items,
		UpdatedAt: cart.UpdatedAt,
	}, nil
}

// validateItems checks line shape and, when required, that every
// referenced product exists in the catalog.
func (s *service) validateItems(ctx context.Context, items []ItemInput, requirePositive bool) error {
	ids := make([]int, 0, len(items))
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if item.ProductID <= 0 {
			return pkgerrors.New(pkgerrors.CodeInvalidInput, "product id must be a positive integer")
		}
		if requirePositive && item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity must be at least 1").
				WithDetails(map[string]int{"product_id": item.ProductID})
		}
		if seen[item.ProductID] {
			return pkgerrors.New(pkgerrors.CodeInvalidInput, "duplicate product in request").
				WithDetails(map[string]int{"product_id": item.ProductID})
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	if len(ids) == 0 {
		return nil
	}
	exist, err := s.catalog.ProductsExist(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !exist[id] {
			return pkgerrors.New(pkgerrors.CodeInvalidInput, "unknown product").
				WithDetails(map[string]int{"product_id": id})
		}
	}
	return nil
}

func buildItems(cartID int64, items []ItemInput) []models.CartItem {
	rows := make([]models.CartItem, 0, len(items))
	for i, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		rows = append(rows, models.CartItem{
			CartID:         cartID,
			ProductID:      item.ProductID,
			Quantity:       qty,
			AddToCartOrder: i + 1,
		})
	}
	return rows
}

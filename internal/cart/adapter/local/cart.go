// Package local persists the anonymous visitor's cart in a key-value
// store under a fixed namespaced key.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/samko5sam/miria/internal/cart/adapter"
	"github.com/samko5sam/miria/internal/cart/domain"
	apperrors "github.com/samko5sam/miria/pkg/errors"
	"github.com/samko5sam/miria/pkg/kvstore"
	"github.com/samko5sam/miria/pkg/logger"
)

// CartKey is the storage key holding the anonymous cart. Namespaced so it
// cannot collide with other client-side state such as the auth token.
const CartKey = "miria:cart"

// nowFunc is swapped out in tests to make generated IDs deterministic.
var nowFunc = time.Now

// CartAdapter implements adapter.CartAdapter on top of a kvstore.Store.
// The whole cart is one JSON-serialized array of line items; every
// mutation is a read-modify-write of that blob. There is no cross-process
// locking, so concurrent writers to the same store can overwrite each
// other (accepted for an anonymous cart).
type CartAdapter struct {
	store kvstore.Store
}

// NewCartAdapter creates a local cart adapter backed by the given store.
func NewCartAdapter(store kvstore.Store) *CartAdapter {
	return &CartAdapter{store: store}
}

// Fetch reads the stored cart. A missing key is an empty cart, not an
// error.
func (a *CartAdapter) Fetch(ctx context.Context) (*domain.Cart, error) {
	items, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Cart{Items: items}, nil
}

// Add appends a line for the product, or merges the quantity into an
// existing line for the same product ID.
func (a *CartAdapter) Add(ctx context.Context, in adapter.AddInput) error {
	items, err := a.load(ctx)
	if err != nil {
		return err
	}

	cart := domain.Cart{Items: items}
	if idx := cart.FindItemIndex(in.ProductID); idx >= 0 {
		cart.Items[idx].Quantity += in.Quantity
		return a.save(ctx, cart.Items)
	}

	cart.Items = append(cart.Items, domain.CartItem{
		ID:           newItemID(),
		ProductID:    in.ProductID,
		ProductName:  in.ProductName,
		ProductPrice: in.ProductPrice,
		Quantity:     in.Quantity,
		StoreID:      in.StoreID,
		StoreName:    in.StoreName,
	})
	return a.save(ctx, cart.Items)
}

// UpdateQuantity sets the quantity of one line.
func (a *CartAdapter) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}

	items, err := a.load(ctx)
	if err != nil {
		return err
	}

	cart := domain.Cart{Items: items}
	idx := cart.FindItemByID(itemID)
	if idx < 0 {
		return apperrors.NotFound("cart item", itemID)
	}

	cart.Items[idx].Quantity = quantity
	return a.save(ctx, cart.Items)
}

// Remove deletes one line. Removing an absent ID is a no-op.
func (a *CartAdapter) Remove(ctx context.Context, itemID string) error {
	items, err := a.load(ctx)
	if err != nil {
		return err
	}

	cart := domain.Cart{Items: items}
	idx := cart.FindItemByID(itemID)
	if idx < 0 {
		return nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	return a.save(ctx, cart.Items)
}

// Clear deletes the stored cart entirely.
func (a *CartAdapter) Clear(ctx context.Context) error {
	if err := a.store.Delete(ctx, CartKey); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

func (a *CartAdapter) load(ctx context.Context) ([]domain.CartItem, error) {
	data, err := a.store.Get(ctx, CartKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, apperrors.Storage(err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		// Corrupted storage surfaces as a storage error rather than
		// being silently reset, so callers can decide what to do.
		logger.FromContext(ctx).WarnContext(ctx, "stored cart is not valid JSON",
			slog.String("key", CartKey),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Storage(err)
	}
	return items, nil
}

func (a *CartAdapter) save(ctx context.Context, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return apperrors.Storage(err)
	}
	if err := a.store.Set(ctx, CartKey, data); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// newItemID generates a timestamp-based line ID. IDs are only unique
// within one storage instance and are never assumed sequential.
func newItemID() string {
	return strconv.FormatInt(nowFunc().UnixNano(), 10)
}

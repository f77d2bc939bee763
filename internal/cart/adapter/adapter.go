// Package adapter defines the persistence contract shared by the local
// anonymous backend and the remote authenticated backend.
package adapter

import (
	"context"

	"github.com/samko5sam/miria/internal/cart/domain"
)

// AddInput carries everything needed to create a cart line. The product
// name, price, and store fields are a denormalized snapshot taken at
// add time; the remote backend ignores them and resolves product data
// server-side.
type AddInput struct {
	ProductID    string `validate:"required"`
	ProductName  string
	ProductPrice int64 `validate:"gte=0"`
	Quantity     int   `validate:"gte=1"`
	StoreID      string
	StoreName    string
}

// MergeItem is the projection of a local cart line submitted to the
// remote merge endpoint. Display fields are dropped on purpose.
type MergeItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartAdapter is the uniform persistence interface behind the cart store.
// Implementations are selected by authentication state, not configured
// statically, so both must present identical semantics for every operation.
type CartAdapter interface {
	// Fetch returns the canonical cart for the current identity.
	// An absent cart is returned as an empty cart, not an error.
	Fetch(ctx context.Context) (*domain.Cart, error)

	// Add creates a line for the given product, or increments the
	// quantity of an existing line for the same product ID.
	Add(ctx context.Context, in AddInput) error

	// UpdateQuantity sets the quantity of an existing line. Quantities
	// below 1 are rejected before any write happens.
	UpdateQuantity(ctx context.Context, itemID string, quantity int) error

	// Remove deletes one line. Removing an absent ID is not an error.
	Remove(ctx context.Context, itemID string) error

	// Clear empties the cart.
	Clear(ctx context.Context) error
}

// Merger is implemented by backends that can batch-apply another cart's
// lines. Only the remote backend supports it.
type Merger interface {
	// Merge applies the given items to the remote cart and returns how
	// many lines the server accepted.
	Merge(ctx context.Context, items []MergeItem) (int, error)
}

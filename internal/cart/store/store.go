// Package store is the single source of truth for the visitor's cart.
// All cart mutations flow through it; it delegates persistence to the
// active adapter and re-fetches the canonical snapshot after every write.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samko5sam/miria/internal/cart/adapter"
	"github.com/samko5sam/miria/internal/cart/domain"
	"github.com/samko5sam/miria/internal/cart/event"
	"github.com/samko5sam/miria/internal/cart/metrics"
	"github.com/samko5sam/miria/internal/cart/session"
	apperrors "github.com/samko5sam/miria/pkg/errors"
	"github.com/samko5sam/miria/pkg/logger"
	"github.com/samko5sam/miria/pkg/validator"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart line.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct lines allowed in a cart.
	MaxItemsPerCart = 50
)

// State is the lifecycle state of the cart store for one visitor session.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateError         State = "error"
)

// RemoteFactory builds the authenticated backend for a session. The
// returned adapter must also implement adapter.Merger.
type RemoteFactory func(sess session.Session) adapter.CartAdapter

// Store owns the cart snapshot for the current visitor and routes every
// operation to the active persistence adapter.
//
// Mutations are serialized on an internal mutex so two overlapping calls
// cannot interleave their write-then-refresh sequences and lose updates.
// Snapshot reads take a separate read lock and never block on I/O.
type Store struct {
	local         adapter.CartAdapter
	remoteFactory RemoteFactory
	notifier      *event.Notifier
	logger        *slog.Logger

	opMu sync.Mutex // serializes mutations and identity transitions

	mu       sync.RWMutex // guards the fields below
	active   adapter.CartAdapter
	sess     session.Session
	state    State
	snapshot *domain.Cart
}

// New creates a cart store for an anonymous visitor. The store starts
// Uninitialized; call Refresh to load the first snapshot.
func New(local adapter.CartAdapter, remoteFactory RemoteFactory, notifier *event.Notifier, logger *slog.Logger, sess session.Session) *Store {
	return &Store{
		local:         local,
		remoteFactory: remoteFactory,
		notifier:      notifier,
		logger:        logger,
		active:        local,
		sess:          sess,
		state:         StateUninitialized,
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Session returns the session the store currently operates under.
func (s *Store) Session() session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

// GetCart returns the current snapshot. Before the first successful
// Refresh, or after a failed one, it returns an empty cart rather than
// an error; an empty cart is never an error condition here.
func (s *Store) GetCart() *domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return &domain.Cart{Items: []domain.CartItem{}}
	}
	return cloneCart(s.snapshot)
}

// IsInCart reports whether the current snapshot holds a line for the
// product. Pure query, no I/O.
func (s *Store) IsInCart(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil && s.snapshot.Contains(productID)
}

// Refresh fetches the canonical cart from the active adapter and
// replaces the snapshot. A failed fetch puts the store into the Error
// state, distinct from an empty cart; calling Refresh again retries.
func (s *Store) Refresh(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.refresh(ctx)
}

// AddItem adds a line for the product, or merges the quantity into an
// existing line for the same product ID. Both limits are validated
// against the stored cart, not the in-memory snapshot: the combined
// quantity of an existing line plus the increment must stay within
// MaxQuantityPerItem, and a new line must not push the cart past
// MaxItemsPerCart. The snapshot is refreshed after the adapter confirms
// the write.
func (s *Store) AddItem(ctx context.Context, in adapter.AddInput) (err error) {
	defer func() { metrics.ObserveOperation("add_item", err) }()

	if err := validator.Validate(in); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if in.Quantity > MaxQuantityPerItem {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	current, ferr := s.activeAdapter().Fetch(ctx)
	if ferr != nil {
		return fmt.Errorf("fetch cart: %w", ferr)
	}
	if idx := current.FindItemIndex(in.ProductID); idx >= 0 {
		if current.Items[idx].Quantity+in.Quantity > MaxQuantityPerItem {
			return apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
	} else if len(current.Items) >= MaxItemsPerCart {
		return apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
	}

	if err := s.activeAdapter().Add(ctx, in); err != nil {
		return fmt.Errorf("add item: %w", err)
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.notifyUpdated(ctx)

	s.opLog(ctx).InfoContext(ctx, "item added to cart",
		slog.String("product_id", in.ProductID),
		slog.Int("quantity", in.Quantity),
	)
	return nil
}

// UpdateItemQuantity sets the quantity of one line. Quantities below 1
// are rejected; removal is a distinct operation.
func (s *Store) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (err error) {
	defer func() { metrics.ObserveOperation("update_quantity", err) }()

	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1, use remove instead")
	}
	if quantity > MaxQuantityPerItem {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.activeAdapter().UpdateQuantity(ctx, itemID, quantity); err != nil {
		return fmt.Errorf("update item quantity: %w", err)
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.notifyUpdated(ctx)

	s.opLog(ctx).InfoContext(ctx, "cart item quantity updated",
		slog.String("item_id", itemID),
		slog.Int("quantity", quantity),
	)
	return nil
}

// RemoveItem deletes one line. Removing an absent ID is a no-op success.
func (s *Store) RemoveItem(ctx context.Context, itemID string) (err error) {
	defer func() { metrics.ObserveOperation("remove_item", err) }()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.activeAdapter().Remove(ctx, itemID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.notifyUpdated(ctx)

	s.opLog(ctx).InfoContext(ctx, "item removed from cart",
		slog.String("item_id", itemID),
	)
	return nil
}

// ClearCart empties the cart. Irreversible; confirmation is a caller
// concern.
func (s *Store) ClearCart(ctx context.Context) (err error) {
	defer func() { metrics.ObserveOperation("clear_cart", err) }()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.activeAdapter().Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.notifier.PublishCartCleared(ctx, s.Session().VisitorID)

	s.opLog(ctx).InfoContext(ctx, "cart cleared")
	return nil
}

// refresh loads the canonical cart from the active adapter. Callers must
// hold opMu.
func (s *Store) refresh(ctx context.Context) error {
	s.setState(StateLoading)

	cart, err := s.activeAdapter().Fetch(ctx)
	if err != nil {
		s.setState(StateError)
		return fmt.Errorf("fetch cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}

	s.mu.Lock()
	s.snapshot = cart
	s.state = StateReady
	s.mu.Unlock()
	return nil
}

func (s *Store) activeAdapter() adapter.CartAdapter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// opLog returns the store logger bound to the current visitor identity
// and any trace context carried by ctx.
func (s *Store) opLog(ctx context.Context) *slog.Logger {
	return logger.WithContext(logger.WithVisitorID(ctx, s.Session().VisitorID), s.logger)
}

func (s *Store) notifyUpdated(ctx context.Context) {
	s.notifier.PublishCartUpdated(ctx, s.Session().VisitorID, s.GetCart())
}

func cloneCart(c *domain.Cart) *domain.Cart {
	items := make([]domain.CartItem, len(c.Items))
	copy(items, c.Items)
	return &domain.Cart{Items: items}
}

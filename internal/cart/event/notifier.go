// Package event delivers cart change notifications to in-process
// subscribers, typically a UI layer that re-renders from the refreshed
// snapshot.
package event

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/samko5sam/miria/internal/cart/domain"
)

// Event types emitted by the cart store.
const (
	TypeCartUpdated = "cart.updated"
	TypeCartCleared = "cart.cleared"
)

// Event is one cart change notification.
type Event struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	VisitorID  string     `json:"visitor_id"`
	Items      []ItemData `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice int64      `json:"total_price"`
}

// ItemData is the line item payload within cart events.
type ItemData struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Handler receives cart change events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

// Notifier fans cart change events out to registered handlers.
type Notifier struct {
	mu       sync.RWMutex
	handlers map[int]Handler
	nextID   int
	logger   *slog.Logger
}

// NewNotifier creates an empty notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		handlers: make(map[int]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler and returns a function that removes it.
func (n *Notifier) Subscribe(h Handler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.handlers[id] = h

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.handlers, id)
	}
}

// PublishCartUpdated notifies subscribers that the cart snapshot changed.
func (n *Notifier) PublishCartUpdated(ctx context.Context, visitorID string, cart *domain.Cart) {
	items := make([]ItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = ItemData{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Price:     item.ProductPrice,
			Quantity:  item.Quantity,
		}
	}

	n.publish(ctx, Event{
		ID:         uuid.New().String(),
		Type:       TypeCartUpdated,
		VisitorID:  visitorID,
		Items:      items,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	})
}

// PublishCartCleared notifies subscribers that the cart was emptied.
func (n *Notifier) PublishCartCleared(ctx context.Context, visitorID string) {
	n.publish(ctx, Event{
		ID:        uuid.New().String(),
		Type:      TypeCartCleared,
		VisitorID: visitorID,
		Items:     []ItemData{},
	})
}

func (n *Notifier) publish(ctx context.Context, e Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, h := range n.handlers {
		h(e)
	}

	n.logger.DebugContext(ctx, "published cart event",
		slog.String("event_id", e.ID),
		slog.String("type", e.Type),
		slog.String("visitor_id", e.VisitorID),
		slog.Int("subscribers", len(n.handlers)),
	)
}

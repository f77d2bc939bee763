package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samko5sam/miria/internal/cart/adapter"
	"github.com/samko5sam/miria/internal/cart/metrics"
	"github.com/samko5sam/miria/internal/cart/session"
	apperrors "github.com/samko5sam/miria/pkg/errors"
)

// Login transitions the store from the anonymous to the authenticated
// identity. It merges the anonymous cart into the remote one, discards
// the anonymous cart regardless of the merge outcome, then fetches the
// canonical remote cart.
//
// A merge failure is logged and reported through metrics but never
// blocks the transition; losing an unmerged anonymous cart is preferred
// over blocking login. A failed remote fetch leaves the store in the
// Error state, retryable via Refresh.
func (s *Store) Login(ctx context.Context, sess session.Session) error {
	if !sess.Authenticated() {
		return apperrors.InvalidInput("login requires an authenticated session")
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setState(StateLoading)

	remote := s.remoteFactory(sess)

	if err := s.mergeLocalCart(ctx, remote); err != nil {
		s.opLog(ctx).ErrorContext(ctx, "anonymous cart merge failed, continuing login",
			slog.String("user_id", sess.VisitorID),
			slog.String("error", err.Error()),
		)
	}

	s.mu.Lock()
	s.active = remote
	s.sess = sess
	s.snapshot = nil
	s.mu.Unlock()

	return s.refresh(ctx)
}

// Resume restores an authenticated identity without running the merge
// protocol. Merge happens once per login event; a process starting up
// for an already logged-in user resumes instead.
func (s *Store) Resume(ctx context.Context, sess session.Session) error {
	if !sess.Authenticated() {
		return apperrors.InvalidInput("resume requires an authenticated session")
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.active = s.remoteFactory(sess)
	s.sess = sess
	s.snapshot = nil
	s.mu.Unlock()

	return s.refresh(ctx)
}

// Logout switches the store back to the anonymous backend. The
// authenticated snapshot is discarded, never carried across the
// identity change.
func (s *Store) Logout(ctx context.Context, sess session.Session) error {
	if sess.Authenticated() {
		return apperrors.InvalidInput("logout requires an anonymous session")
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.active = s.local
	s.sess = sess
	s.snapshot = nil
	s.mu.Unlock()

	return s.refresh(ctx)
}

// mergeLocalCart applies the merge protocol. Callers must hold opMu.
//
// The local cart is cleared on both success and failure: the merge
// request is never replayed with the same local data, so a lost
// response cannot double-apply quantities. An unknown server outcome
// after a network failure is accepted in exchange for that guarantee.
func (s *Store) mergeLocalCart(ctx context.Context, remote adapter.CartAdapter) error {
	merger, ok := remote.(adapter.Merger)
	if !ok {
		return fmt.Errorf("remote adapter does not support merge")
	}

	localCart, err := s.local.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("read anonymous cart: %w", err)
	}

	if len(localCart.Items) == 0 {
		metrics.MergeOutcomes.WithLabelValues("empty").Inc()
		return nil
	}

	items := make([]adapter.MergeItem, len(localCart.Items))
	for i, item := range localCart.Items {
		items[i] = adapter.MergeItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	merged, mergeErr := merger.Merge(ctx, items)

	if clearErr := s.local.Clear(ctx); clearErr != nil {
		s.opLog(ctx).ErrorContext(ctx, "failed to clear anonymous cart after merge",
			slog.String("error", clearErr.Error()),
		)
	}

	if mergeErr != nil {
		metrics.MergeOutcomes.WithLabelValues("failed").Inc()
		return fmt.Errorf("merge anonymous cart: %w", mergeErr)
	}

	metrics.MergeOutcomes.WithLabelValues("merged").Inc()
	metrics.MergedItems.Add(float64(len(items)))

	s.opLog(ctx).InfoContext(ctx, "anonymous cart merged",
		slog.Int("submitted", len(items)),
		slog.Int("accepted", merged),
	)
	return nil
}

// Package app wires the cart client's dependency graph.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/samko5sam/miria/internal/cart/adapter"
	"github.com/samko5sam/miria/internal/cart/adapter/local"
	"github.com/samko5sam/miria/internal/cart/adapter/remote"
	"github.com/samko5sam/miria/internal/cart/event"
	"github.com/samko5sam/miria/internal/cart/session"
	"github.com/samko5sam/miria/internal/cart/store"
	"github.com/samko5sam/miria/internal/config"
	"github.com/samko5sam/miria/pkg/httpclient"
	"github.com/samko5sam/miria/pkg/kvstore"
	"github.com/samko5sam/miria/pkg/logger"
)

// Storage keys, namespaced alongside the anonymous cart key.
const (
	// TokenKey holds the saved bearer token.
	TokenKey = "miria:token"
	// VisitorKey holds the generated anonymous visitor ID.
	VisitorKey = "miria:visitor"
)

// App holds the wired cart client.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	kv       kvstore.Store
	store    *store.Store
	notifier *event.Notifier
	closer   func() error
}

// New builds the cart client from configuration. If a bearer token was
// saved by a previous login, the store resumes the authenticated session
// without re-running the merge protocol.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	kv, closer, err := newKVStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	client := httpclient.New(httpclient.Config{
		Timeout:         cfg.HTTPTimeout,
		MaxRetries:      cfg.MaxRetries,
		RetryWaitMin:    httpclient.DefaultConfig().RetryWaitMin,
		RetryWaitMax:    httpclient.DefaultConfig().RetryWaitMax,
		MaxConnsPerHost: 10,
	})
	cb := httpclient.NewCircuitBreakerClient(
		client,
		httpclient.DefaultCircuitBreakerConfig("cart-api"),
		log,
	)

	remoteFactory := func(sess session.Session) adapter.CartAdapter {
		return remote.NewCartAdapter(cb, cfg.APIBaseURL, sess.Token)
	}

	visitorID, err := loadOrCreateVisitorID(ctx, kv)
	if err != nil {
		return nil, err
	}

	// Downstream log lines pick the visitor identity up from context.
	ctx = logger.WithVisitorID(ctx, visitorID)

	notifier := event.NewNotifier(log)
	cartStore := store.New(
		local.NewCartAdapter(kv),
		remoteFactory,
		notifier,
		log,
		session.Anonymous(visitorID),
	)

	a := &App{
		cfg:      cfg,
		logger:   log,
		kv:       kv,
		store:    cartStore,
		notifier: notifier,
		closer:   closer,
	}

	if sess, ok, err := a.SavedSession(ctx); err != nil {
		return nil, err
	} else if ok {
		if err := cartStore.Resume(ctx, sess); err != nil {
			// A stale token or unreachable API must not brick the
			// client; the store stays retryable via Refresh.
			logger.WithContext(ctx, log).WarnContext(ctx, "failed to resume authenticated session",
				slog.String("error", err.Error()),
			)
		}
	}

	return a, nil
}

// Store returns the cart store.
func (a *App) Store() *store.Store {
	return a.store
}

// Notifier returns the cart change notifier.
func (a *App) Notifier() *event.Notifier {
	return a.notifier
}

// Login runs the anonymous-to-authenticated transition and persists the
// token for later sessions.
func (a *App) Login(ctx context.Context, userID, token string) error {
	sess := session.AuthenticatedSession(userID, token)
	if err := a.store.Login(ctx, sess); err != nil {
		return err
	}
	if err := a.kv.Set(ctx, TokenKey, []byte(userID+"\n"+token)); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	return nil
}

// Logout drops the saved token and returns the store to the anonymous
// backend.
func (a *App) Logout(ctx context.Context) error {
	if err := a.kv.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}
	visitorID, err := loadOrCreateVisitorID(ctx, a.kv)
	if err != nil {
		return err
	}
	return a.store.Logout(ctx, session.Anonymous(visitorID))
}

// SavedSession loads the persisted authenticated session, if any.
func (a *App) SavedSession(ctx context.Context) (session.Session, bool, error) {
	data, err := a.kv.Get(ctx, TokenKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("read session token: %w", err)
	}

	userID, token, ok := splitToken(string(data))
	if !ok {
		return session.Session{}, false, nil
	}
	return session.AuthenticatedSession(userID, token), true, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

func newKVStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (kvstore.Store, func() error, error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		rs, err := kvstore.NewRedisStore(ctx, kvstore.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.InfoContext(ctx, "connected to redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		return rs, rs.Close, nil
	default:
		fs, err := kvstore.NewFileStore(cfg.StateDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open state dir: %w", err)
		}
		return fs, nil, nil
	}
}

// loadOrCreateVisitorID returns the stable anonymous visitor ID for this
// storage instance, generating one on first use.
func loadOrCreateVisitorID(ctx context.Context, kv kvstore.Store) (string, error) {
	data, err := kv.Get(ctx, VisitorKey)
	if err == nil && len(data) > 0 {
		return string(data), nil
	}
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return "", fmt.Errorf("read visitor id: %w", err)
	}

	id := uuid.New().String()
	if err := kv.Set(ctx, VisitorKey, []byte(id)); err != nil {
		return "", fmt.Errorf("save visitor id: %w", err)
	}
	return id, nil
}

func splitToken(data string) (userID, token string, ok bool) {
	userID, token, found := strings.Cut(data, "\n")
	return userID, token, found && userID != "" && token != ""
}

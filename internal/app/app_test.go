package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samko5sam/miria/internal/cart/adapter"
	"github.com/samko5sam/miria/internal/cart/store"
	"github.com/samko5sam/miria/internal/config"
	"github.com/samko5sam/miria/pkg/logger"
)

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:    "test",
		LogLevel:       "error",
		APIBaseURL:     apiURL,
		StorageBackend: config.StorageFile,
		StateDir:       t.TempDir(),
		HTTPTimeout:    5 * time.Second,
		MaxRetries:     0,
	}
}

// newFakeAPI serves just enough of the cart API for wiring tests.
func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	})
	mux.HandleFunc("POST /cart/merge", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Items []adapter.MergeItem `json:"items"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "merged", "merged_count": len(body.Items)})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestNew_FileBackend(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t, "http://localhost:0"), logger.New("test", "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NotNil(t, a.Store())
	require.NotNil(t, a.Notifier())
	assert.Equal(t, store.StateUninitialized, a.Store().State())

	// The anonymous backend works without any network.
	require.NoError(t, a.Store().Refresh(ctx))
	assert.Equal(t, store.StateReady, a.Store().State())
}

func TestLogin_PersistsSessionAcrossRestart(t *testing.T) {
	ctx := context.Background()
	server := newFakeAPI(t)
	cfg := testConfig(t, server.URL)
	log := logger.New("test", "error")

	a, err := New(ctx, cfg, log)
	require.NoError(t, err)

	require.NoError(t, a.Login(ctx, "user-1", "token-abc"))
	assert.True(t, a.Store().Session().Authenticated())

	sess, ok, err := a.SavedSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user-1", sess.VisitorID)
	assert.Equal(t, "token-abc", sess.Token)
	require.NoError(t, a.Close())

	// A fresh process with the same state dir resumes the session.
	b, err := New(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.True(t, b.Store().Session().Authenticated())
	assert.Equal(t, store.StateReady, b.Store().State())
}

func TestLogout_DropsSavedSession(t *testing.T) {
	ctx := context.Background()
	server := newFakeAPI(t)
	a, err := New(ctx, testConfig(t, server.URL), logger.New("test", "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Login(ctx, "user-1", "token-abc"))
	require.NoError(t, a.Logout(ctx))

	_, ok, err := a.SavedSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, a.Store().Session().Authenticated())
}

func TestVisitorID_StableAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "http://localhost:0")
	log := logger.New("test", "error")

	a, err := New(ctx, cfg, log)
	require.NoError(t, err)
	first := a.Store().Session().VisitorID
	assert.NotEmpty(t, first)
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	assert.Equal(t, first, b.Store().Session().VisitorID)
}

func TestSplitToken(t *testing.T) {
	user, token, ok := splitToken("user-1\ntok")
	assert.True(t, ok)
	assert.Equal(t, "user-1", user)
	assert.Equal(t, "tok", token)

	_, _, ok = splitToken("garbage")
	assert.False(t, ok)

	_, _, ok = splitToken("\ntok")
	assert.False(t, ok)
}

package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories builds each Store implementation against fresh backing
// storage so the contract tests run identically across all of them.
func storeFactories(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]Store{
		"file":   fileStore,
		"redis":  NewRedisStoreWithClient(client),
		"memory": NewMemoryStore(),
	}
}

func TestStore_SetGet(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := store.Set(ctx, "miria:cart", []byte(`[{"product_id":"p1"}]`))
			require.NoError(t, err)

			got, err := store.Get(ctx, "miria:cart")
			require.NoError(t, err)
			assert.Equal(t, `[{"product_id":"p1"}]`, string(got))
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "miria:absent")
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "miria:cart", []byte("old")))
			require.NoError(t, store.Set(ctx, "miria:cart", []byte("new")))

			got, err := store.Get(ctx, "miria:cart")
			require.NoError(t, err)
			assert.Equal(t, "new", string(got))
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "miria:cart", []byte("x")))
			require.NoError(t, store.Delete(ctx, "miria:cart"))

			_, err := store.Get(ctx, "miria:cart")
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestStore_DeleteAbsentIsNoop(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, store.Delete(context.Background(), "miria:never-set"))
		})
	}
}

func TestFileStore_NamespacedKeyMapsToSafeFilename(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "miria:cart", []byte("[]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "miria_cart.json", entries[0].Name())
}

func TestFileStore_KeysAreIsolated(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "miria:cart", []byte("cart")))
	require.NoError(t, store.Set(ctx, "miria:token", []byte("token")))

	require.NoError(t, store.Delete(ctx, "miria:cart"))

	got, err := store.Get(ctx, "miria:token")
	require.NoError(t, err)
	assert.Equal(t, "token", string(got))
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Set(ctx, "miria:cart", []byte("v")))
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNewFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "storage")
	_, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

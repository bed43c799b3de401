package cartfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cartwise/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "carts.json"), zap.NewNop())
	require.NoError(t, err)
	return store
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewStore(t *testing.T) {
	t.Run("creates empty cart file", func(t *testing.T) {
		store := newTestStore(t)
		assert.JSONEq(t, `[]`, readFile(t, store.Path()))
	})

	t.Run("keeps existing content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "carts.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Apple"}]`), 0o644))

		store, err := NewStore(path, nil)
		require.NoError(t, err)

		lines, err := store.Read(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []domain.CartLine{{Name: "Apple"}}, lines)
	})
}

func TestStore_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file is initialized", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, os.Remove(store.Path()))

		lines, err := store.Read(ctx)
		require.NoError(t, err)
		assert.Empty(t, lines)
		assert.JSONEq(t, `[]`, readFile(t, store.Path()))
	})

	corrupt := map[string]string{
		"garbage":      `not json at all`,
		"truncated":    `[{"name": "Apple"`,
		"object":       `{"name": "Apple"}`,
		"string":       `"Apple"`,
		"empty file":   ``,
		"number":       `42`,
		"null literal": `null`,
	}
	for name, content := range corrupt {
		t.Run("resets corrupt content: "+name, func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

			lines, err := store.Read(ctx)
			require.NoError(t, err)
			assert.Empty(t, lines)
			assert.JSONEq(t, `[]`, readFile(t, store.Path()))
		})
	}

	wrongShape := map[string]string{
		"scalar elements":      `[1, "x", {"qty": 2}]`,
		"mixed elements":       `[{"name":"Apple"}, 3]`,
		"object without name":  `[{"name":"Apple"}, {"other":1}]`,
		"non-string name":      `[{"name":"Apple"}, {"name":5}]`,
		"null name":            `[{"name":null}]`,
		"nested array element": `[["Apple"]]`,
	}
	for name, content := range wrongShape {
		t.Run("resets wrong-shape content: "+name, func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

			lines, err := store.Read(ctx)
			require.NoError(t, err)
			assert.Empty(t, lines)
			assert.JSONEq(t, `[]`, readFile(t, store.Path()))

			require.NoError(t, store.Append(ctx, domain.CartLine{Name: "Milk"}))
			assert.JSONEq(t, `[{"name":"Milk"}]`, readFile(t, store.Path()))
		})
	}

	t.Run("extra keys on lines are tolerated", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, os.WriteFile(store.Path(), []byte(`[{"name":"Apple","qty":2}]`), 0o644))

		lines, err := store.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.CartLine{{Name: "Apple"}}, lines)
	})
}

func TestStore_Append(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Append(ctx, domain.CartLine{Name: "Apple"}))
	require.NoError(t, store.Append(ctx, domain.CartLine{Name: "Milk"}))
	require.NoError(t, store.Append(ctx, domain.CartLine{Name: "Apple"}))

	lines, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartLine{{Name: "Apple"}, {Name: "Milk"}, {Name: "Apple"}}, lines)
}

func TestStore_RemoveByName(t *testing.T) {
	ctx := context.Background()

	t.Run("removes all matching lines case-insensitively", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Append(ctx, domain.CartLine{Name: "Apple"}))
		require.NoError(t, store.Append(ctx, domain.CartLine{Name: "Milk"}))
		require.NoError(t, store.Append(ctx, domain.CartLine{Name: "apple"}))

		removed, err := store.RemoveByName(ctx, "APPLE")
		require.NoError(t, err)
		assert.True(t, removed)

		lines, err := store.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.CartLine{{Name: "Milk"}}, lines)
	})

	t.Run("second removal reports nothing removed", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Append(ctx, domain.CartLine{Name: "Apple"}))

		removed, err := store.RemoveByName(ctx, "Apple")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = store.RemoveByName(ctx, "Apple")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("absent name leaves cart untouched", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Append(ctx, domain.CartLine{Name: "Milk"}))

		removed, err := store.RemoveByName(ctx, "Bread")
		require.NoError(t, err)
		assert.False(t, removed)

		lines, err := store.Read(ctx)
		require.NoError(t, err)
		assert.Len(t, lines, 1)
	})
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Append(ctx, domain.CartLine{Name: "Apple"}))

	require.NoError(t, store.Clear(ctx))

	lines, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.JSONEq(t, `[]`, readFile(t, store.Path()))
}

func TestStore_WriteFormat(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(context.Background(), domain.CartLine{Name: "Apple"}))

	assert.Equal(t, "[\n  {\n    \"name\": \"Apple\"\n  }\n]", readFile(t, store.Path()))
}

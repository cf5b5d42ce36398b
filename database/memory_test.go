package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) (*MemoryStore, []string) {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()

	var ids []string
	for _, fields := range []map[string]any{
		{"title": "Spring garden", "topic": "Youth", "date": "2023-04-01"},
		{"title": "Coding club", "topic": "Education", "date": "2024-01-15"},
		{"title": "Summer camp", "topic": "Youth", "date": "2024-07-20"},
	} {
		id, err := store.Insert(ctx, "blogs", fields)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return store, ids
}

func TestMemoryStoreListPreservesInsertionOrder(t *testing.T) {
	store, ids := seedStore(t)

	docs, err := store.List(context.Background(), "blogs", Query{})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, doc := range docs {
		assert.Equal(t, ids[i], doc.ID)
	}
}

func TestMemoryStoreListFilterOrderLimit(t *testing.T) {
	store, ids := seedStore(t)
	ctx := context.Background()

	docs, err := store.List(ctx, "blogs", Query{Field: "topic", Equals: "Youth", OrderBy: "date"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, ids[2], docs[0].ID)
	assert.Equal(t, ids[0], docs[1].ID)

	docs, err = store.List(ctx, "blogs", Query{OrderBy: "date", Limit: 1})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Summer camp", docs[0].Fields["title"])

	docs, err = store.List(ctx, "programs", Query{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store, ids := seedStore(t)
	ctx := context.Background()

	doc, err := store.Get(ctx, "blogs", ids[0])
	require.NoError(t, err)
	doc.Fields["title"] = "changed"

	again, err := store.Get(ctx, "blogs", ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Spring garden", again.Fields["title"])
}

func TestMemoryStoreDelete(t *testing.T) {
	store, ids := seedStore(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "blogs", ids[1]))
	assert.ErrorIs(t, store.Delete(ctx, "blogs", ids[1]), ErrNotFound)

	_, err := store.Get(ctx, "blogs", ids[1])
	assert.ErrorIs(t, err, ErrNotFound)

	docs, err := store.List(ctx, "blogs", Query{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, ids[0], docs[0].ID)
	assert.Equal(t, ids[2], docs[1].ID)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	store, _ := seedStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.List(ctx, "blogs", Query{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Insert(ctx, "blogs", map[string]any{"title": "late"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenMemoryAndUnknown(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, map[string]string{"DB_TYPE": "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = Open(ctx, map[string]string{"DB_TYPE": "sqlite"})
	assert.ErrorContains(t, err, "unsupported DB_TYPE")

	_, err = Open(ctx, map[string]string{"DB_TYPE": "mongo"})
	assert.ErrorContains(t, err, "MONGO_URI")
}

func TestPostgresDSN(t *testing.T) {
	assert.Equal(t, "postgres://x", PostgresDSN(map[string]string{"DATABASE_URL": "postgres://x"}))

	dsn := PostgresDSN(map[string]string{
		"SUPABASE_DB_HOST":     "db.example.org",
		"SUPABASE_DB_PASSWORD": "secret",
	})
	assert.Equal(t, "host=db.example.org user=postgres password=secret dbname=postgres port=5432 sslmode=require", dsn)
}

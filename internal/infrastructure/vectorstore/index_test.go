package vectorstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cartwise/backend/internal/domain"
	"github.com/cartwise/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// keywordEmbedder maps text onto a fixed vocabulary of word counts
type keywordEmbedder struct {
	vocab []string
	calls int
	err   error
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{vocab: []string{"apple", "milk", "bread", "banana", "fruits", "dairy", "bakery"}}
}

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(e.vocab))
		for _, word := range strings.Fields(strings.ToLower(text)) {
			for j, v := range e.vocab {
				if strings.Trim(word, ".,:") == v {
					vec[j]++
				}
			}
		}
		out[i] = vec
	}
	return out, nil
}

func testCatalog() *domain.Catalog {
	return &domain.Catalog{Categories: []domain.Category{
		{Name: "Fruits", Products: []domain.Product{
			{Name: "Apple", Category: "Fruits", Price: 50, Unit: "kg"},
			{Name: "Banana", Category: "Fruits", Price: 40, Unit: "dozen"},
		}},
		{Name: "Dairy", Products: []domain.Product{
			{Name: "Milk", Category: "Dairy", Price: 28.5, Unit: "litre"},
		}},
		{Name: "Bakery", Products: []domain.Product{
			{Name: "Bread", Category: "Bakery", Price: 35, Unit: "loaf"},
		}},
	}}
}

func newTestIndex(t *testing.T, embedder domain.Embedder, c domain.CacheRepository) (*Index, *Collection) {
	t.Helper()
	collection, err := OpenCollection(t.TempDir(), "products")
	require.NoError(t, err)
	t.Cleanup(func() { collection.Close() })
	return NewIndex(collection, embedder, c, IndexConfig{}, zap.NewNop()), collection
}

func TestDescribeProduct(t *testing.T) {
	got := DescribeProduct(domain.Product{Name: "Milk", Category: "Dairy", Price: 28.5, Unit: "litre"})
	assert.Equal(t, "Milk - litre - price 28.5 - Category: Dairy", got)

	got = DescribeProduct(domain.Product{Name: "Apple", Category: "Fruits", Price: 50, Unit: "kg"})
	assert.Equal(t, "Apple - kg - price 50 - Category: Fruits", got)
}

func TestIndex_SeedIfEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds an empty collection", func(t *testing.T) {
		index, collection := newTestIndex(t, newKeywordEmbedder(), nil)

		n, err := index.SeedIfEmpty(ctx, testCatalog())
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		count, err := collection.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, count)

		records, err := collection.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Apple - kg - price 50 - Category: Fruits", records[0].Content)
		assert.Equal(t, map[string]interface{}{
			"category": "Fruits", "name": "Apple", "price": float64(50), "unit": "kg",
		}, records[0].Metadata)
	})

	t.Run("does not reseed a populated collection", func(t *testing.T) {
		embedder := newKeywordEmbedder()
		index, collection := newTestIndex(t, embedder, nil)

		_, err := index.SeedIfEmpty(ctx, testCatalog())
		require.NoError(t, err)

		changed := testCatalog()
		changed.Categories[0].Products = append(changed.Categories[0].Products,
			domain.Product{Name: "Mango", Category: "Fruits", Price: 120, Unit: "kg"})

		n, err := index.SeedIfEmpty(ctx, changed)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, 1, embedder.calls)

		count, _ := collection.Count(ctx)
		assert.Equal(t, 4, count)
	})

	t.Run("embedding failure is an upstream error", func(t *testing.T) {
		embedder := newKeywordEmbedder()
		embedder.err = errors.New("quota exceeded")
		index, collection := newTestIndex(t, embedder, nil)

		_, err := index.SeedIfEmpty(ctx, testCatalog())
		assert.ErrorIs(t, err, domain.ErrUpstreamFailure)

		count, _ := collection.Count(ctx)
		assert.Equal(t, 0, count)
	})

	t.Run("empty catalog seeds nothing", func(t *testing.T) {
		index, _ := newTestIndex(t, newKeywordEmbedder(), nil)
		n, err := index.SeedIfEmpty(ctx, &domain.Catalog{})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestIndex_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nearest records first", func(t *testing.T) {
		index, _ := newTestIndex(t, newKeywordEmbedder(), nil)
		_, err := index.SeedIfEmpty(ctx, testCatalog())
		require.NoError(t, err)

		docs, err := index.Search(ctx, "add some milk please", 3)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "Milk", docs[0].Metadata["name"])
		assert.Equal(t, "Milk - litre - price 28.5 - Category: Dairy", docs[0].Text)
	})

	t.Run("caps results at k", func(t *testing.T) {
		index, _ := newTestIndex(t, newKeywordEmbedder(), nil)
		_, err := index.SeedIfEmpty(ctx, testCatalog())
		require.NoError(t, err)

		docs, err := index.Search(ctx, "fruits", 10)
		require.NoError(t, err)
		assert.Len(t, docs, 4)
		assert.Equal(t, "Fruits", docs[0].Metadata["category"])
		assert.Equal(t, "Fruits", docs[1].Metadata["category"])
	})

	t.Run("non-positive k returns nothing", func(t *testing.T) {
		index, _ := newTestIndex(t, newKeywordEmbedder(), nil)
		docs, err := index.Search(ctx, "apple", 0)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("caches query embeddings", func(t *testing.T) {
		embedder := newKeywordEmbedder()
		memory := cache.NewMemoryCache(time.Minute)
		defer memory.Close()
		index, _ := newTestIndex(t, embedder, memory)
		_, err := index.SeedIfEmpty(ctx, testCatalog())
		require.NoError(t, err)

		_, err = index.Search(ctx, "apple", 3)
		require.NoError(t, err)
		_, err = index.Search(ctx, "apple", 3)
		require.NoError(t, err)

		assert.Equal(t, 2, embedder.calls) // seed + first query
		assert.Equal(t, 1, memory.Size())
	})

	t.Run("embedding failure is an upstream error", func(t *testing.T) {
		embedder := newKeywordEmbedder()
		index, _ := newTestIndex(t, embedder, nil)
		embedder.err = errors.New("boom")

		_, err := index.Search(ctx, "apple", 3)
		assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
	})
}

func TestCollection_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	collection, err := OpenCollection(dir, "products")
	require.NoError(t, err)
	require.NoError(t, collection.Add(ctx, []Record{
		{Content: "Apple", Metadata: map[string]interface{}{"name": "Apple"}, Embedding: []float32{1, 0}},
	}))
	require.NoError(t, collection.Close())

	reopened, err := OpenCollection(dir, "products")
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].ID)
	assert.Equal(t, []float32{1, 0}, records[0].Embedding)

	other, err := OpenCollection(dir, "other")
	require.NoError(t, err)
	defer other.Close()
	count, err := other.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestTopK(t *testing.T) {
	corpus := [][]float32{{0, 1}, {1, 0}, {1, 1}, {1, 0}}
	got := topK([]float32{1, 0}, corpus, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].index)
	assert.Equal(t, 3, got[1].index)
}

package vectorstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cartwise/backend/internal/domain"
	"go.uber.org/zap"
)

// IndexConfig holds configuration for the retrieval index
type IndexConfig struct {
	QueryCacheTTL time.Duration
}

// Index is the retrieval index: a persisted collection of catalog
// descriptions searched by embedding similarity.
type Index struct {
	collection *Collection
	embedder   domain.Embedder
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewIndex creates an index over collection. cache may be nil to disable
// query embedding caching.
func NewIndex(collection *Collection, embedder domain.Embedder, cache domain.CacheRepository, config IndexConfig, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := config.QueryCacheTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	return &Index{
		collection: collection,
		embedder:   embedder,
		cache:      cache,
		cacheTTL:   ttl,
		logger:     logger.Named("index"),
	}
}

// DescribeProduct renders the text stored for a product
func DescribeProduct(p domain.Product) string {
	return fmt.Sprintf("%s - %s - price %s - Category: %s",
		p.Name, p.Unit, strconv.FormatFloat(p.Price, 'f', -1, 64), p.Category)
}

// ProductMetadata returns the metadata stored alongside a product description
func ProductMetadata(p domain.Product) map[string]interface{} {
	return map[string]interface{}{
		"category": p.Category,
		"name":     p.Name,
		"price":    p.Price,
		"unit":     p.Unit,
	}
}

// SeedIfEmpty populates the collection from catalog when it holds no
// records and returns how many were added. A non-empty collection is left
// untouched even if the catalog has changed since it was seeded.
func (x *Index) SeedIfEmpty(ctx context.Context, catalog *domain.Catalog) (int, error) {
	count, err := x.collection.Count(ctx)
	if err != nil {
		x.logger.Warn("count failed, treating collection as empty", zap.Error(err))
		count = 0
	}
	if count > 0 {
		x.logger.Info("index already seeded", zap.String("collection", x.collection.Name()), zap.Int("records", count))
		return 0, nil
	}

	var texts []string
	var metadatas []map[string]interface{}
	for _, category := range catalog.Categories {
		for _, product := range category.Products {
			texts = append(texts, DescribeProduct(product))
			metadatas = append(metadatas, ProductMetadata(product))
		}
	}
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := x.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: embedding catalog: %v", domain.ErrUpstreamFailure, err)
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrUpstreamFailure, len(vectors), len(texts))
	}

	records := make([]Record, len(texts))
	for i := range texts {
		records[i] = Record{Content: texts[i], Metadata: metadatas[i], Embedding: vectors[i]}
	}
	if err := x.collection.Add(ctx, records); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	x.logger.Info("index seeded", zap.String("collection", x.collection.Name()), zap.Int("records", len(records)))
	return len(records), nil
}

// Search returns up to k records nearest to query
func (x *Index) Search(ctx context.Context, query string, k int) ([]domain.RetrievedDocument, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := x.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	records, err := x.collection.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	corpus := make([][]float32, len(records))
	for i, r := range records {
		corpus[i] = r.Embedding
	}

	hits := topK(queryVec, corpus, k)
	docs := make([]domain.RetrievedDocument, 0, len(hits))
	for _, hit := range hits {
		r := records[hit.index]
		docs = append(docs, domain.RetrievedDocument{Text: r.Content, Metadata: r.Metadata})
	}

	x.logger.Debug("search", zap.String("query", query), zap.Int("k", k), zap.Int("hits", len(docs)))
	return docs, nil
}

func (x *Index) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := "embedding:" + x.collection.Name() + ":" + query
	if x.cache != nil {
		if cached, err := x.cache.Get(ctx, key); err == nil {
			if vec, ok := cached.([]float32); ok {
				return vec, nil
			}
		}
	}

	vectors, err := x.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrUpstreamFailure, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d embeddings for query", domain.ErrUpstreamFailure, len(vectors))
	}

	if x.cache != nil {
		if err := x.cache.Set(ctx, key, vectors[0], x.cacheTTL); err != nil {
			x.logger.Warn("failed to cache query embedding", zap.Error(err))
		}
	}
	return vectors[0], nil
}

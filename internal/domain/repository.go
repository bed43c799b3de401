package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CartRepository persists the cart as a whole collection.
// Implementations are not required to be safe for concurrent writers.
type CartRepository interface {
	Read(ctx context.Context) ([]CartLine, error)
	Append(ctx context.Context, line CartLine) error
	RemoveByName(ctx context.Context, name string) (bool, error)
	Clear(ctx context.Context) error
}

// RetrievalIndex is a nearest-neighbor text search over catalog descriptions
type RetrievalIndex interface {
	SeedIfEmpty(ctx context.Context, catalog *Catalog) (int, error)
	Search(ctx context.Context, query string, k int) ([]RetrievedDocument, error)
}

// Embedder turns texts into embedding vectors, one per input, in order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel is a hosted language model used as text in, text out
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SpeechModel recognizes speech from raw samples or an encoded audio file
type SpeechModel interface {
	TranscribeSamples(ctx context.Context, samples []float32, sampleRate int, opts DecodeOptions) ([]Segment, error)
	TranscribeAudio(ctx context.Context, filename string, data []byte, opts DecodeOptions) ([]Segment, error)
}

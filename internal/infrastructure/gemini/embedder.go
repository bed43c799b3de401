package gemini

import (
	"context"
	"fmt"

	"github.com/cartwise/backend/internal/domain"
	"google.golang.org/genai"
)

// maxBatch is the per-request content limit of the batch embedding API
const maxBatch = 100

// Embedder is a domain.Embedder backed by Gemini EmbedContent
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates an embedder for model (default gemini-embedding-001)
func NewEmbedder(ctx context.Context, apiKey, model string) (*Embedder, error) {
	client, err := newClient(ctx, apiKey, "")
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	return &Embedder{client: client, model: model}, nil
}

// Embed returns one vector per text, in input order
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := start + maxBatch
		if end > len(texts) {
			end = len(texts)
		}

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w: GenAI embed failed: %v", domain.ErrUpstreamFailure, err)
		}
		if len(result.Embeddings) != end-start {
			return nil, fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrUpstreamFailure, end-start, len(result.Embeddings))
		}
		for _, emb := range result.Embeddings {
			out = append(out, emb.Values)
		}
	}
	return out, nil
}

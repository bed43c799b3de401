// Package gemini adapts Google's GenAI SDK to the chat model and embedder ports.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/cartwise/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ChatConfig holds configuration for the Gemini chat model
type ChatConfig struct {
	APIKey            string
	Model             string
	BaseURL           string
	Temperature       float32
	RequestsPerSecond float64
}

// ChatModel is a domain.ChatModel backed by Gemini GenerateContent
type ChatModel struct {
	client      *genai.Client
	model       string
	temperature float32
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewChatModel creates a Gemini chat model client
func NewChatModel(ctx context.Context, cfg ChatConfig, logger *zap.Logger) (*ChatModel, error) {
	client, err := newClient(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &ChatModel{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		limiter:     newLimiter(cfg.RequestsPerSecond),
		logger:      logger.Named("gemini"),
	}, nil
}

func newClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Complete sends prompt as a single user turn and returns the text of the
// first candidate. JSON output is requested from the model, but the caller
// still validates it.
func (m *ChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	temp := m.temperature
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   ActionResponseSchema(),
	})
	if err != nil {
		m.logger.Error("generate content failed", zap.String("model", m.model), zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	text := responseText(resp)
	m.logger.Debug("generate content", zap.String("model", m.model), zap.Int("chars", len(text)))
	return text, nil
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// ActionResponseSchema describes the {action, item, reply} object the
// resolver expects back from the model.
func ActionResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"action": {
				Type: genai.TypeString,
				Enum: []string{"add", "remove", "show", "clear", "none"},
			},
			"item": {
				Type:        genai.TypeString,
				Description: "Exact item name from the valid items list, or empty",
			},
			"reply": {
				Type:        genai.TypeString,
				Description: "Short salesperson-style reply to the user",
			},
		},
		Required:         []string{"action", "item", "reply"},
		PropertyOrdering: []string{"action", "item", "reply"},
	}
}

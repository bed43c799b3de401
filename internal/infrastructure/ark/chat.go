// Package ark adapts the eino ark chat model to the chat model port.
package ark

import (
	"context"
	"fmt"
	"strings"

	"github.com/cartwise/backend/internal/domain"
	einoark "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config holds configuration for the ark chat model
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	Temperature       float32
	RequestsPerSecond float64
}

// ChatModel is a domain.ChatModel backed by an ark (Volcengine) endpoint
type ChatModel struct {
	model   *einoark.ChatModel
	name    string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewChatModel creates an ark chat model client
func NewChatModel(ctx context.Context, cfg Config, logger *zap.Logger) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ark API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ark model endpoint is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	temp := cfg.Temperature
	cm, err := einoark.NewChatModel(ctx, &einoark.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: &temp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &ChatModel{
		model:   cm,
		name:    cfg.Model,
		limiter: limiter,
		logger:  logger.Named("ark"),
	}, nil
}

// Complete sends prompt as a single user message and returns the reply content
func (m *ChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	out, err := m.model.Generate(ctx, BuildMessages(prompt))
	if err != nil {
		m.logger.Error("generate failed", zap.String("model", m.name), zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	return MessageText(out), nil
}

// BuildMessages wraps the rendered prompt for the chat API
func BuildMessages(prompt string) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage("Respond with a single JSON object and nothing else."),
		schema.UserMessage(prompt),
	}
}

// MessageText extracts the trimmed assistant content
func MessageText(msg *schema.Message) string {
	if msg == nil {
		return ""
	}
	return strings.TrimSpace(msg.Content)
}

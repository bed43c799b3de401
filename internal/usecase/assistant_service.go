package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/cartwise/backend/internal/domain"
	"go.uber.org/zap"
)

// FallbackReply is returned when the model output cannot be understood
const FallbackReply = "Sorry, I couldn't understand that."

const maxSuggestions = 3

// AssistantConfig holds configuration for the assistant service
type AssistantConfig struct {
	TopK        int
	HistorySize int
}

// ChatResult is the outcome of one processed message
type ChatResult struct {
	Reply string
	// Action is the validated action. Understood is false when the model
	// output could not be used and the fallback reply was returned.
	Action     domain.ResolvedAction
	Understood bool
}

// AssistantService turns a free-text message into a validated cart action
// and a reply: retrieval, prompt, model call, contract parsing, catalog
// validation, cart mutation.
type AssistantService struct {
	index       domain.RetrievalIndex
	model       domain.ChatModel
	carts       domain.CartRepository
	catalog     *CatalogService
	topK        int
	historySize int
	logger      *zap.Logger
}

// NewAssistantService creates an assistant with its dependencies
func NewAssistantService(
	index domain.RetrievalIndex,
	model domain.ChatModel,
	carts domain.CartRepository,
	catalog *CatalogService,
	config AssistantConfig,
	logger *zap.Logger,
) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	topK := config.TopK
	if topK <= 0 {
		topK = 3
	}
	historySize := config.HistorySize
	if historySize <= 0 {
		historySize = 5
	}
	return &AssistantService{
		index:       index,
		model:       model,
		carts:       carts,
		catalog:     catalog,
		topK:        topK,
		historySize: historySize,
		logger:      logger.Named("assistant"),
	}
}

// ProcessMessage resolves message within conv. Upstream failures degrade to
// an empty context or the fallback reply; only cart store errors are returned.
func (s *AssistantService) ProcessMessage(ctx context.Context, conv *domain.Conversation, message string) (ChatResult, error) {
	docs, err := s.index.Search(ctx, message, s.topK)
	if err != nil {
		s.logger.Warn("retrieval failed, continuing without context", zap.Error(err))
		docs = nil
	}
	joined, candidates := retrievalContext(docs)

	prompt := renderPrompt(promptInput{
		Query:      message,
		Context:    joined,
		ValidItems: candidates,
		History:    conv.Recent(s.historySize),
	})

	raw, err := s.model.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("model call failed", zap.Error(err))
		return ChatResult{Reply: FallbackReply}, nil
	}

	resolved, err := parseModelOutput(raw)
	if err != nil {
		s.logger.Warn("unusable model output", zap.Error(err), zap.String("raw", raw))
		return ChatResult{Reply: FallbackReply}, nil
	}

	reply, err := s.apply(ctx, resolved, candidates)
	if err != nil {
		return ChatResult{}, err
	}

	conv.Append(domain.ConversationTurn{Role: domain.RoleUser, Content: message})
	conv.Append(domain.ConversationTurn{Role: domain.RoleAssistant, Content: reply})

	s.logger.Info("message resolved",
		zap.String("action", string(resolved.Action)),
		zap.String("item", resolved.Item),
		zap.Int("candidates", len(candidates)))

	resolved.Reply = reply
	return ChatResult{Reply: reply, Action: resolved, Understood: true}, nil
}

// apply validates the resolved action against the catalog, mutates the cart
// and returns the final reply.
func (s *AssistantService) apply(ctx context.Context, resolved domain.ResolvedAction, candidates []string) (string, error) {
	item := resolved.Item

	switch {
	case resolved.Action == domain.ActionAdd && item != "":
		product, ok := s.catalog.FindByName(item)
		if !ok {
			reply := fmt.Sprintf("I couldn't find '%s' in our catalog.", item)
			if suggestions := suggest(candidates); suggestions != "" {
				reply += fmt.Sprintf(" Did you mean: %s?", suggestions)
			}
			return reply, nil
		}
		if err := s.carts.Append(ctx, domain.CartLine{Name: product.Name}); err != nil {
			return "", fmt.Errorf("failed to add %s to cart: %w", product.Name, err)
		}
		return orDefault(resolved.Reply, fmt.Sprintf("Added %s to your cart.", product.Name)), nil

	case resolved.Action == domain.ActionRemove && item != "":
		product, ok := s.catalog.FindByName(item)
		if !ok {
			reply := fmt.Sprintf("'%s' isn't in the current catalog.", item)
			if suggestions := suggest(candidates); suggestions != "" {
				reply += fmt.Sprintf(" Available now: %s.", suggestions)
			}
			return reply, nil
		}
		removed, err := s.carts.RemoveByName(ctx, product.Name)
		if err != nil {
			return "", fmt.Errorf("failed to remove %s from cart: %w", product.Name, err)
		}
		if !removed {
			return fmt.Sprintf("%s was not in your cart.", product.Name), nil
		}
		return orDefault(resolved.Reply, fmt.Sprintf("Removed %s from your cart.", product.Name)), nil

	case resolved.Action == domain.ActionShow:
		return orDefault(resolved.Reply, "Here is your cart."), nil

	case resolved.Action == domain.ActionClear:
		if err := s.carts.Clear(ctx); err != nil {
			return "", fmt.Errorf("failed to clear cart: %w", err)
		}
		return orDefault(resolved.Reply, "Cleared your cart."), nil

	default:
		return orDefault(resolved.Reply, "Happy to help!"), nil
	}
}

func suggest(candidates []string) string {
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return strings.Join(candidates, ", ")
}

func orDefault(reply, fallback string) string {
	if reply != "" {
		return reply
	}
	return fallback
}

package usecase

import (
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

const promptTemplate = `You are a witty, persuasive shopping assistant who also answers general questions.
Be helpful, concise and charming. When it fits, nudge the customer toward a purchase with a tasteful upsell or cross-sell.

Customer message: {query}
Relevant products (may be empty): {context}
Valid items for cart actions: {valid_items}
Recent conversation:
{history}

Tasks:
1) Pick exactly one action from [add, remove, show, clear, none]. Use "clear" when the customer wants to empty the whole cart. Use "none" when no cart action applies.
2) For add or remove, set item to the product name only if you can confidently match it; otherwise use an empty string.
3) Write a short salesperson-style reply that answers the message or moves the customer toward a purchase.

Respond with ONLY a JSON object with exactly these keys:
{"action":"<add|remove|show|clear|none>","item":"<item name or empty>","reply":"<reply>"}

Rules:
- For add or remove, item MUST be copied exactly from the valid items list. If it is not there, use action "none".
- For general questions or unavailable products, prefer "none" and reply with helpful suggestions.`

// promptInput carries the values substituted into the resolver prompt
type promptInput struct {
	Query      string
	Context    string
	ValidItems []string
	History    []domain.ConversationTurn
}

// renderPrompt fills the template. Values are substituted in a single pass
// so placeholders inside user text are left alone.
func renderPrompt(in promptInput) string {
	r := strings.NewReplacer(
		"{query}", in.Query,
		"{context}", in.Context,
		"{valid_items}", strings.Join(in.ValidItems, ", "),
		"{history}", renderHistory(in.History),
	)
	return r.Replace(promptTemplate)
}

// renderHistory renders turns as "role: content" lines, oldest first
func renderHistory(turns []domain.ConversationTurn) string {
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		lines = append(lines, string(turn.Role)+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

// retrievalContext joins document texts and collects the distinct product
// names from their metadata. Names are deduplicated case-insensitively,
// keeping first-seen order and casing.
func retrievalContext(docs []domain.RetrievedDocument) (string, []string) {
	texts := make([]string, 0, len(docs))
	var names []string
	seen := make(map[string]bool)
	for _, doc := range docs {
		texts = append(texts, doc.Text)

		name, _ := doc.Metadata["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return strings.Join(texts, "\n"), names
}

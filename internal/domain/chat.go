package domain

import "sync"

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is a single message in a conversation
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Action is the cart action inferred from a user message
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionShow   Action = "show"
	ActionClear  Action = "clear"
	ActionNone   Action = "none"
)

// ParseAction normalizes a model-reported action. Unknown values map to ActionNone.
func ParseAction(s string) Action {
	switch a := Action(s); a {
	case ActionAdd, ActionRemove, ActionShow, ActionClear, ActionNone:
		return a
	default:
		return ActionNone
	}
}

// ResolvedAction is the outcome of resolving one message
type ResolvedAction struct {
	Action Action `json:"action"`
	Item   string `json:"item"`
	Reply  string `json:"reply"`
}

// RetrievedDocument is one nearest-neighbor hit from the retrieval index
type RetrievedDocument struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Conversation is a bounded history of turns. Once full, the oldest turn is
// overwritten. Safe for concurrent use.
type Conversation struct {
	mu    sync.Mutex
	turns []ConversationTurn
	start int
	size  int
}

// NewConversation creates a conversation that retains at most capacity turns
func NewConversation(capacity int) *Conversation {
	if capacity <= 0 {
		capacity = 5
	}
	return &Conversation{turns: make([]ConversationTurn, capacity)}
}

// Append records a turn, evicting the oldest one when full
func (c *Conversation) Append(turn ConversationTurn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	capacity := len(c.turns)
	if c.size < capacity {
		c.turns[(c.start+c.size)%capacity] = turn
		c.size++
		return
	}
	c.turns[c.start] = turn
	c.start = (c.start + 1) % capacity
}

// Recent returns up to n of the latest turns, oldest first
func (c *Conversation) Recent(n int) []ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n > c.size {
		n = c.size
	}
	if n <= 0 {
		return nil
	}
	capacity := len(c.turns)
	out := make([]ConversationTurn, 0, n)
	for i := c.size - n; i < c.size; i++ {
		out = append(out, c.turns[(c.start+i)%capacity])
	}
	return out
}

// Len returns the number of retained turns
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

package usecase

import (
	"strings"
	"sync"

	"github.com/cartwise/backend/internal/domain"
)

// DefaultSessionID is used when a request carries no session id. All such
// requests share one conversation.
const DefaultSessionID = "default"

// SessionStore owns the in-memory conversations, keyed by session id.
// Conversations are never persisted and vanish on restart.
type SessionStore struct {
	mu            sync.Mutex
	conversations map[string]*domain.Conversation
	historySize   int
}

// NewSessionStore creates a store whose conversations keep historySize turns
func NewSessionStore(historySize int) *SessionStore {
	if historySize <= 0 {
		historySize = 5
	}
	return &SessionStore{
		conversations: make(map[string]*domain.Conversation),
		historySize:   historySize,
	}
}

// Get returns the conversation for id, creating it on first use
func (s *SessionStore) Get(id string) *domain.Conversation {
	id = strings.TrimSpace(id)
	if id == "" {
		id = DefaultSessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		conv = domain.NewConversation(s.historySize)
		s.conversations[id] = conv
	}
	return conv
}

// HistorySize returns the number of turns each conversation retains
func (s *SessionStore) HistorySize() int {
	return s.historySize
}

// Package inmemory holds conversations and messages in process memory.
// Data is lost on restart - for persistence, swap in a database-backed
// implementation of chat.Store.
package inmemory

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dvloznov/finance-assistant/internal/chat"
)

// Store is an in-memory implementation of chat.Store. It is safe for
// concurrent use; the mutex also serializes appends so message order
// within a conversation is stable.
type Store struct {
	mu            sync.RWMutex
	entropy       *ulid.MonotonicEntropy
	conversations map[string]*chat.Conversation
	messages      map[string][]*chat.Message
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		entropy:       ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		conversations: make(map[string]*chat.Conversation),
		messages:      make(map[string][]*chat.Message),
	}
}

// newConversationID returns a ULID: unique, and lexicographically ordered
// by creation time. Callers must hold s.mu.
func (s *Store) newConversationID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// CreateConversation implements the chat.Store interface.
func (s *Store) CreateConversation(ctx context.Context, userID, title string) (*chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := &chat.Conversation{
		ID:        s.newConversationID(),
		Title:     title,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	s.conversations[conv.ID] = conv

	convCopy := *conv
	return &convCopy, nil
}

// GetConversation implements the chat.Store interface.
func (s *Store) GetConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[id]
	if !exists {
		return nil, fmt.Errorf("GetConversation %s: %w", id, chat.ErrConversationNotFound)
	}

	convCopy := *conv
	return &convCopy, nil
}

// ListConversations implements the chat.Store interface. Results are
// sorted newest first; ULID ids make that a plain string comparison.
func (s *Store) ListConversations(ctx context.Context) ([]*chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*chat.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		convCopy := *conv
		result = append(result, &convCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// AppendMessage implements the chat.Store interface.
func (s *Store) AppendMessage(ctx context.Context, conversationID string, msg *chat.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("AppendMessage: message ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.conversations[conversationID]
	if !exists {
		return fmt.Errorf("AppendMessage %s: %w", conversationID, chat.ErrConversationNotFound)
	}

	msgCopy := *msg
	s.messages[conversationID] = append(s.messages[conversationID], &msgCopy)

	conv.LastMessage = msg.Text
	conv.LastMessageTime = msg.Timestamp

	return nil
}

// ListMessages implements the chat.Store interface.
func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]*chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.conversations[conversationID]; !exists {
		return nil, fmt.Errorf("ListMessages %s: %w", conversationID, chat.ErrConversationNotFound)
	}

	msgs := s.messages[conversationID]
	result := make([]*chat.Message, 0, len(msgs))
	for _, msg := range msgs {
		msgCopy := *msg
		result = append(result, &msgCopy)
	}

	return result, nil
}

// SetTitle implements the chat.Store interface.
func (s *Store) SetTitle(ctx context.Context, conversationID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.conversations[conversationID]
	if !exists {
		return fmt.Errorf("SetTitle %s: %w", conversationID, chat.ErrConversationNotFound)
	}

	conv.Title = title
	return nil
}

// Ensure Store implements the chat.Store interface.
var _ chat.Store = (*Store)(nil)

// Package chat defines the conversation and message records persisted
// around each routed exchange, plus the store abstraction the transport
// layer depends on. The engine itself never touches storage; handlers
// append the user/assistant pair after routing completes.
package chat

import (
	"context"
	"errors"
	"time"
)

// ErrConversationNotFound is returned when a conversation id is unknown.
var ErrConversationNotFound = errors.New("conversation not found")

// Conversation groups an exchange history for one user. IDs are ULIDs,
// so they are unique and sort in creation order.
type Conversation struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	UserID          string    `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
	LastMessage     string    `json:"last_message,omitempty"`
	LastMessageTime time.Time `json:"last_message_time,omitzero"`
}

// Message is one entry in a conversation. IsMe marks messages authored
// by the user; assistant replies have IsMe false. Messages are never
// mutated after creation.
type Message struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	IsMe        bool      `json:"is_me"`
	Timestamp   time.Time `json:"timestamp"`
	DisplayTime string    `json:"display_time"`
}

// Store is the conversation/message persistence abstraction. Appends for
// a given conversation are serialized by the implementation so message
// order is preserved.
type Store interface {
	// CreateConversation creates a conversation for userID and returns it.
	CreateConversation(ctx context.Context, userID, title string) (*Conversation, error)

	// GetConversation retrieves a conversation by id.
	GetConversation(ctx context.Context, id string) (*Conversation, error)

	// ListConversations returns all conversations, newest first.
	ListConversations(ctx context.Context) ([]*Conversation, error)

	// AppendMessage appends a message to the conversation and updates its
	// last-message fields.
	AppendMessage(ctx context.Context, conversationID string, msg *Message) error

	// ListMessages returns the conversation's messages in append order.
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)

	// SetTitle replaces the conversation title.
	SetTitle(ctx context.Context, conversationID, title string) error
}

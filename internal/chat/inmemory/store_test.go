package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/finance-assistant/internal/chat"
)

func TestCreateAndGetConversation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	created, err := s.CreateConversation(ctx, "user-1", "New chat")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected non-empty conversation id")
	}

	got, err := s.GetConversation(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if got.Title != "New chat" || got.UserID != "user-1" {
		t.Errorf("got %+v, want title 'New chat' user 'user-1'", got)
	}
}

func TestGetConversation_NotFound(t *testing.T) {
	s := NewStore()

	_, err := s.GetConversation(context.Background(), "missing")
	if !errors.Is(err, chat.ErrConversationNotFound) {
		t.Errorf("err = %v, want ErrConversationNotFound", err)
	}
}

func TestListConversations_NewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first, _ := s.CreateConversation(ctx, "u", "first")
	second, _ := s.CreateConversation(ctx, "u", "second")
	third, _ := s.CreateConversation(ctx, "u", "third")

	got, err := s.ListConversations(ctx)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d conversations, want 3", len(got))
	}
	if got[0].ID != third.ID || got[1].ID != second.ID || got[2].ID != first.ID {
		t.Errorf("unexpected order: %s, %s, %s", got[0].Title, got[1].Title, got[2].Title)
	}
}

func TestAppendMessage_UpdatesConversation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "u", "chat")

	now := time.Now()
	msg := &chat.Message{ID: "m1", Text: "hello", IsMe: true, Timestamp: now}
	if err := s.AppendMessage(ctx, conv.ID, msg); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	got, _ := s.GetConversation(ctx, conv.ID)
	if got.LastMessage != "hello" {
		t.Errorf("LastMessage = %q, want 'hello'", got.LastMessage)
	}
	if !got.LastMessageTime.Equal(now) {
		t.Errorf("LastMessageTime = %v, want %v", got.LastMessageTime, now)
	}
}

func TestAppendMessage_MissingConversation(t *testing.T) {
	s := NewStore()

	err := s.AppendMessage(context.Background(), "missing", &chat.Message{ID: "m1"})
	if !errors.Is(err, chat.ErrConversationNotFound) {
		t.Errorf("err = %v, want ErrConversationNotFound", err)
	}
}

func TestListMessages_PreservesAppendOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "u", "chat")
	for i := 0; i < 5; i++ {
		msg := &chat.Message{ID: fmt.Sprintf("m%d", i), Text: fmt.Sprintf("msg %d", i)}
		if err := s.AppendMessage(ctx, conv.ID, msg); err != nil {
			t.Fatalf("AppendMessage %d failed: %v", i, err)
		}
	}

	got, err := s.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d messages, want 5", len(got))
	}
	for i, msg := range got {
		if want := fmt.Sprintf("m%d", i); msg.ID != want {
			t.Errorf("message %d id = %q, want %q", i, msg.ID, want)
		}
	}
}

func TestSetTitle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "u", "New chat")
	if err := s.SetTitle(ctx, conv.ID, "Groceries budget"); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}

	got, _ := s.GetConversation(ctx, conv.ID)
	if got.Title != "Groceries budget" {
		t.Errorf("Title = %q, want 'Groceries budget'", got.Title)
	}
}

func TestStore_CopiesAreIsolated(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "u", "chat")
	conv.Title = "mutated by caller"

	got, _ := s.GetConversation(ctx, conv.ID)
	if got.Title != "chat" {
		t.Errorf("caller mutation leaked into store: %q", got.Title)
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "u", "chat")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := &chat.Message{ID: fmt.Sprintf("m%d", i), Text: "x"}
			if err := s.AppendMessage(ctx, conv.ID, msg); err != nil {
				t.Errorf("AppendMessage failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := s.ListMessages(ctx, conv.ID)
	if len(got) != 20 {
		t.Errorf("got %d messages, want 20", len(got))
	}
}

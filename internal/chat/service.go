package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/supportline/supportline-server/internal/core"
	"github.com/supportline/supportline-server/internal/store"
	"github.com/supportline/supportline-server/internal/utils"
)

// openingMessage is the system-authored first message of every session.
const openingMessage = "Chat session started"

// Service implements the chat-session lifecycle: creating sessions,
// reading transcripts, and the derived active/history listings. It
// never touches live connections; the hub mutates the same store and
// REST clients observe the result here.
type Service struct {
	messages store.MessageStore
}

// NewService creates a new chat session service.
func NewService(messages store.MessageStore) *Service {
	return &Service{messages: messages}
}

// ListMessages returns the transcript of a chat, oldest first. Any
// authenticated identity may read any transcript; tightening this is
// an open gap inherited from the product's current behavior.
func (s *Service) ListMessages(ctx context.Context, chatID string) ([]*store.MessageView, error) {
	return s.messages.ListMessages(ctx, chatID)
}

// CreateSession mints a new chat id for the caller and inserts the
// opening message addressed to the support pool.
func (s *Service) CreateSession(ctx context.Context, caller core.Identity) (string, *store.MessageView, error) {
	now := time.Now().UTC()
	chatID := utils.NewChatID(now, caller.ID)

	record := &store.Message{
		ID:        utils.NewID(),
		ChatID:    chatID,
		SenderID:  caller.ID,
		Receiver:  core.SupportRoom,
		Content:   openingMessage,
		Status:    store.StatusSent,
		CreatedAt: now,
	}
	if err := s.messages.InsertMessage(ctx, record); err != nil {
		return "", nil, fmt.Errorf("insert opening message: %w", err)
	}

	view := &store.MessageView{
		ID:     record.ID,
		ChatID: chatID,
		Sender: store.UserRef{
			ID:    caller.ID,
			Name:  caller.Name,
			Email: caller.Email,
		},
		Receiver:  record.Receiver,
		Content:   record.Content,
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
	}
	return chatID, view, nil
}

// ActiveSessions lists every unresolved session for the dashboard.
// Restricted to staff roles.
func (s *Service) ActiveSessions(ctx context.Context, caller core.Identity) ([]*store.ChatSummary, error) {
	switch caller.Role {
	case core.RoleSupport, core.RoleAdmin:
	case core.RoleCustomer:
		return nil, core.ErrForbidden
	default:
		return nil, core.ErrForbidden
	}
	return s.messages.ListActiveChats(ctx)
}

// History lists the caller's sessions: customers see sessions they
// wrote into, staff see sessions currently assigned to them.
func (s *Service) History(ctx context.Context, caller core.Identity) ([]*store.HistoryEntry, error) {
	switch caller.Role {
	case core.RoleCustomer:
		return s.messages.ListSenderHistory(ctx, caller.ID)
	case core.RoleSupport, core.RoleAdmin:
		return s.messages.ListAssigneeHistory(ctx, caller.ID)
	default:
		return nil, core.ErrForbidden
	}
}

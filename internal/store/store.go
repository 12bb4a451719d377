package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Status is the persisted message lifecycle state.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusResolved  Status = "resolved"
)

// User represents a registered user.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Message is a persisted chat message. ChatID, sender, content and
// creation time are immutable once inserted; status and assignee are
// only ever changed in bulk across a whole chat session.
type Message struct {
	ID         string
	ChatID     string
	SenderID   string
	Receiver   string
	Content    string
	Status     Status
	AssignedTo *string
	CreatedAt  time.Time
}

// UserRef is the slim user projection embedded in message views.
type UserRef struct {
	ID    string
	Name  string
	Email string
}

// MessageView is a message joined with its sender and assignee.
type MessageView struct {
	ID         string
	ChatID     string
	Sender     UserRef
	Receiver   string
	Content    string
	Status     Status
	AssignedTo *UserRef
	CreatedAt  time.Time
}

// ChatSummary describes one unresolved chat session for the support
// dashboard. Customer and creation time come from the session's first
// message, status and assignee from its last.
type ChatSummary struct {
	ChatID      string
	LastMessage *MessageView
	Customer    UserRef
	AssignedTo  *UserRef
	CreatedAt   time.Time
}

// HistoryEntry describes one chat session in a caller-scoped history.
type HistoryEntry struct {
	ChatID      string
	LastMessage *MessageView
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, name, email, passwordHash, role string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// MessageStore handles message persistence and the derived chat-session
// queries. Sessions have no record of their own: a session is the set
// of messages sharing a chat id.
type MessageStore interface {
	// InsertMessage persists a new message.
	InsertMessage(ctx context.Context, msg *Message) error

	// ListMessages returns all messages of a chat, oldest first.
	ListMessages(ctx context.Context, chatID string) ([]*MessageView, error)

	// AssignChat sets the assignee on every message of the chat.
	AssignChat(ctx context.Context, chatID, supportID string) error

	// ResolveChat marks every message of the chat resolved.
	ResolveChat(ctx context.Context, chatID string) error

	// ListActiveChats summarizes every unresolved chat, newest first.
	ListActiveChats(ctx context.Context) ([]*ChatSummary, error)

	// ListSenderHistory summarizes chats the user has sent messages in.
	ListSenderHistory(ctx context.Context, userID string) ([]*HistoryEntry, error)

	// ListAssigneeHistory summarizes chats assigned to the user.
	ListAssigneeHistory(ctx context.Context, userID string) ([]*HistoryEntry, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}

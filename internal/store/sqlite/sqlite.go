package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/supportline/supportline-server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	chat_id     TEXT NOT NULL,
	sender_id   TEXT NOT NULL REFERENCES users(id),
	receiver    TEXT NOT NULL,
	content     TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'sent',
	assigned_to TEXT REFERENCES users(id),
	created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id);
CREATE INDEX IF NOT EXISTS idx_messages_assignee ON messages(assigned_to);
`

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser inserts a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, passwordHash, role string) (*store.User, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, name, email, passwordHash, role); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*store.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE ` + where
	var u store.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// ==== MessageStore implementation ====

// InsertMessage persists a new message.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (id, chat_id, sender_id, receiver, content, status, assigned_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	var assignedTo any
	if msg.AssignedTo != nil {
		assignedTo = *msg.AssignedTo
	}
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.ChatID, msg.SenderID, msg.Receiver, msg.Content,
		string(msg.Status), assignedTo, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

const messageViewColumns = `
	m.id, m.chat_id, m.receiver, m.content, m.status, m.created_at,
	s.id, s.name, s.email,
	a.id, a.name, a.email
`

const messageViewJoins = `
	FROM messages m
	JOIN users s ON s.id = m.sender_id
	LEFT JOIN users a ON a.id = m.assigned_to
`

func scanMessageView(row interface{ Scan(...any) error }) (*store.MessageView, error) {
	var (
		v          store.MessageView
		status     string
		assigneeID sql.NullString
		assigneeNm sql.NullString
		assigneeEm sql.NullString
	)
	err := row.Scan(
		&v.ID, &v.ChatID, &v.Receiver, &v.Content, &status, &v.CreatedAt,
		&v.Sender.ID, &v.Sender.Name, &v.Sender.Email,
		&assigneeID, &assigneeNm, &assigneeEm,
	)
	if err != nil {
		return nil, err
	}
	v.Status = store.Status(status)
	if assigneeID.Valid {
		v.AssignedTo = &store.UserRef{
			ID:    assigneeID.String,
			Name:  assigneeNm.String,
			Email: assigneeEm.String,
		}
	}
	return &v, nil
}

// ListMessages returns all messages of a chat, oldest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, chatID string) ([]*store.MessageView, error) {
	query := `SELECT ` + messageViewColumns + messageViewJoins + `
		WHERE m.chat_id = ?
		ORDER BY m.created_at ASC, m.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	views := make([]*store.MessageView, 0)
	for rows.Next() {
		v, err := scanMessageView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// AssignChat sets the assignee on every message of the chat. Assigning
// a chat with no messages matches zero rows and is not an error.
func (s *SQLiteStore) AssignChat(ctx context.Context, chatID, supportID string) error {
	query := `UPDATE messages SET assigned_to = ? WHERE chat_id = ?`
	if _, err := s.db.ExecContext(ctx, query, supportID, chatID); err != nil {
		return fmt.Errorf("assign chat: %w", err)
	}
	return nil
}

// ResolveChat marks every message of the chat resolved. Resolving an
// already-resolved chat is a no-op rewrite of the same status.
func (s *SQLiteStore) ResolveChat(ctx context.Context, chatID string) error {
	query := `UPDATE messages SET status = ? WHERE chat_id = ?`
	if _, err := s.db.ExecContext(ctx, query, string(store.StatusResolved), chatID); err != nil {
		return fmt.Errorf("resolve chat: %w", err)
	}
	return nil
}

// ==== Derived chat-session queries ====
//
// Sessions exist only as groupings of messages. The first message of a
// chat fixes its customer and creation time; the last fixes its current
// status and assignee. sessionBounds is the single place this
// derivation is implemented.

func (s *SQLiteStore) chatIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select chat ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chat id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) boundMessage(ctx context.Context, chatID, order string) (*store.MessageView, error) {
	query := `SELECT ` + messageViewColumns + messageViewJoins + `
		WHERE m.chat_id = ?
		ORDER BY m.created_at ` + order + `, m.id ` + order + `
		LIMIT 1
	`
	v, err := scanMessageView(s.db.QueryRowContext(ctx, query, chatID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select bound message: %w", err)
	}
	return v, nil
}

func (s *SQLiteStore) sessionBounds(ctx context.Context, chatID string) (first, last *store.MessageView, err error) {
	first, err = s.boundMessage(ctx, chatID, "ASC")
	if err != nil {
		return nil, nil, err
	}
	last, err = s.boundMessage(ctx, chatID, "DESC")
	if err != nil {
		return nil, nil, err
	}
	return first, last, nil
}

// ListActiveChats summarizes every unresolved chat, newest first. Chat
// ids embed their creation millis, so descending id order is newest
// first, matching the dashboard's expectation.
func (s *SQLiteStore) ListActiveChats(ctx context.Context) ([]*store.ChatSummary, error) {
	ids, err := s.chatIDs(ctx, `
		SELECT DISTINCT chat_id FROM messages
		WHERE status != ?
		ORDER BY chat_id DESC
	`, string(store.StatusResolved))
	if err != nil {
		return nil, err
	}

	summaries := make([]*store.ChatSummary, 0, len(ids))
	for _, chatID := range ids {
		first, last, err := s.sessionBounds(ctx, chatID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &store.ChatSummary{
			ChatID:      chatID,
			LastMessage: last,
			Customer:    first.Sender,
			AssignedTo:  last.AssignedTo,
			CreatedAt:   first.CreatedAt,
		})
	}
	return summaries, nil
}

// ListSenderHistory summarizes chats the user has sent messages in.
func (s *SQLiteStore) ListSenderHistory(ctx context.Context, userID string) ([]*store.HistoryEntry, error) {
	return s.history(ctx, `
		SELECT DISTINCT chat_id FROM messages
		WHERE sender_id = ?
		ORDER BY chat_id DESC
	`, userID)
}

// ListAssigneeHistory summarizes chats assigned to the user.
func (s *SQLiteStore) ListAssigneeHistory(ctx context.Context, userID string) ([]*store.HistoryEntry, error) {
	return s.history(ctx, `
		SELECT DISTINCT chat_id FROM messages
		WHERE assigned_to = ?
		ORDER BY chat_id DESC
	`, userID)
}

func (s *SQLiteStore) history(ctx context.Context, idQuery, userID string) ([]*store.HistoryEntry, error) {
	ids, err := s.chatIDs(ctx, idQuery, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]*store.HistoryEntry, 0, len(ids))
	for _, chatID := range ids {
		first, last, err := s.sessionBounds(ctx, chatID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &store.HistoryEntry{
			ChatID:      chatID,
			LastMessage: last,
			Status:      last.Status,
			CreatedAt:   first.CreatedAt,
			UpdatedAt:   last.CreatedAt,
		})
	}
	return entries, nil
}

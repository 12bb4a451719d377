package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/supportline/supportline-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStore, name, email, role string) *store.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), name, email, "hash", role)
	if err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return u
}

func seedMessage(t *testing.T, s *SQLiteStore, id, chatID, senderID, receiver, content string, at time.Time) {
	t.Helper()

	err := s.InsertMessage(context.Background(), &store.Message{
		ID:        id,
		ChatID:    chatID,
		SenderID:  senderID,
		Receiver:  receiver,
		Content:   content,
		Status:    store.StatusSent,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("failed to insert message %s: %v", id, err)
	}
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, s, "carol", "carol@example.com", "customer")

	byID, err := s.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != "carol@example.com" || byID.Role != "customer" {
		t.Fatalf("unexpected user: %+v", byID)
	}

	byEmail, err := s.GetUserByEmail(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected same user, got %+v", byEmail)
	}

	if _, err := s.GetUserByEmail(ctx, "ghost@example.com"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	s := newTestStore(t)

	seedUser(t, s, "carol", "carol@example.com", "customer")
	if _, err := s.CreateUser(context.Background(), "carla", "carol@example.com", "hash", "customer"); err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestListMessagesOrderedOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	carol := seedUser(t, s, "carol", "carol@example.com", "customer")
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// Insert out of order on purpose.
	seedMessage(t, s, "m2", "chat_1", carol.ID, "support", "second", base.Add(time.Minute))
	seedMessage(t, s, "m1", "chat_1", carol.ID, "support", "first", base)
	seedMessage(t, s, "m3", "chat_1", carol.ID, "support", "third", base.Add(2*time.Minute))
	seedMessage(t, s, "x1", "chat_2", carol.ID, "support", "other chat", base)

	views, err := s.ListMessages(ctx, "chat_1")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(views))
	}
	for i, want := range []string{"first", "second", "third"} {
		if views[i].Content != want {
			t.Errorf("position %d: expected %q, got %q", i, want, views[i].Content)
		}
	}
	if views[0].Sender.Name != "carol" || views[0].Sender.Email != "carol@example.com" {
		t.Fatalf("sender not populated: %+v", views[0].Sender)
	}
	if views[0].AssignedTo != nil {
		t.Fatalf("expected no assignee, got %+v", views[0].AssignedTo)
	}
}

func TestAssignChatCoversEveryMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	carol := seedUser(t, s, "carol", "carol@example.com", "customer")
	alice := seedUser(t, s, "alice", "alice@example.com", "support")
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seedMessage(t, s, string(rune('a'+i)), "chat_1", carol.ID, "support", "msg", base.Add(time.Duration(i)*time.Second))
	}

	if err := s.AssignChat(ctx, "chat_1", alice.ID); err != nil {
		t.Fatalf("AssignChat failed: %v", err)
	}

	views, err := s.ListMessages(ctx, "chat_1")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	for _, v := range views {
		if v.AssignedTo == nil || v.AssignedTo.ID != alice.ID {
			t.Fatalf("message %s not assigned: %+v", v.ID, v.AssignedTo)
		}
	}
}

func TestActiveChatsDerivation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	carol := seedUser(t, s, "carol", "carol@example.com", "customer")
	dave := seedUser(t, s, "dave", "dave@example.com", "customer")
	alice := seedUser(t, s, "alice", "alice@example.com", "support")
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// chat_1700000000001: carol opened, alice assigned, still active.
	seedMessage(t, s, "m1", "chat_1700000000001_aaa", carol.ID, "support", "opening", base)
	seedMessage(t, s, "m2", "chat_1700000000001_aaa", alice.ID, carol.ID, "reply", base.Add(time.Minute))
	if err := s.AssignChat(ctx, "chat_1700000000001_aaa", alice.ID); err != nil {
		t.Fatalf("AssignChat failed: %v", err)
	}

	// chat_1700000000002: dave opened, resolved.
	seedMessage(t, s, "m3", "chat_1700000000002_bbb", dave.ID, "support", "opening", base.Add(2*time.Minute))
	if err := s.ResolveChat(ctx, "chat_1700000000002_bbb"); err != nil {
		t.Fatalf("ResolveChat failed: %v", err)
	}

	// chat_1700000000003: dave opened, unassigned.
	seedMessage(t, s, "m4", "chat_1700000000003_ccc", dave.ID, "support", "opening", base.Add(3*time.Minute))

	active, err := s.ListActiveChats(ctx)
	if err != nil {
		t.Fatalf("ListActiveChats failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active chats, got %d", len(active))
	}

	// Newest first.
	if active[0].ChatID != "chat_1700000000003_ccc" || active[1].ChatID != "chat_1700000000001_aaa" {
		t.Fatalf("unexpected order: %s, %s", active[0].ChatID, active[1].ChatID)
	}

	taken := active[1]
	if taken.Customer.ID != carol.ID {
		t.Fatalf("customer must come from the first message, got %+v", taken.Customer)
	}
	if taken.AssignedTo == nil || taken.AssignedTo.ID != alice.ID {
		t.Fatalf("assignee must come from the last message, got %+v", taken.AssignedTo)
	}
	if !taken.CreatedAt.Equal(base) {
		t.Fatalf("creation time must come from the first message, got %v", taken.CreatedAt)
	}
	if taken.LastMessage.Content != "reply" {
		t.Fatalf("unexpected last message: %+v", taken.LastMessage)
	}

	unassigned := active[0]
	if unassigned.AssignedTo != nil {
		t.Fatalf("expected no assignee, got %+v", unassigned.AssignedTo)
	}
}

func TestResolveChatRemovesFromActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	carol := seedUser(t, s, "carol", "carol@example.com", "customer")
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	seedMessage(t, s, "m1", "chat_1", carol.ID, "support", "opening", base)
	seedMessage(t, s, "m2", "chat_1", carol.ID, "support", "ping", base.Add(time.Second))

	if err := s.ResolveChat(ctx, "chat_1"); err != nil {
		t.Fatalf("ResolveChat failed: %v", err)
	}

	active, err := s.ListActiveChats(ctx)
	if err != nil {
		t.Fatalf("ListActiveChats failed: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active chats, got %d", len(active))
	}

	// Resolving again is a no-op, not an error.
	if err := s.ResolveChat(ctx, "chat_1"); err != nil {
		t.Fatalf("second ResolveChat failed: %v", err)
	}

	views, err := s.ListMessages(ctx, "chat_1")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	for _, v := range views {
		if v.Status != store.StatusResolved {
			t.Fatalf("message %s not resolved: %s", v.ID, v.Status)
		}
	}
}

func TestHistoryScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	carol := seedUser(t, s, "carol", "carol@example.com", "customer")
	dave := seedUser(t, s, "dave", "dave@example.com", "customer")
	alice := seedUser(t, s, "alice", "alice@example.com", "support")
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	seedMessage(t, s, "m1", "chat_1", carol.ID, "support", "opening", base)
	seedMessage(t, s, "m2", "chat_1", carol.ID, "support", "follow-up", base.Add(time.Minute))
	seedMessage(t, s, "m3", "chat_2", dave.ID, "support", "opening", base.Add(2*time.Minute))
	if err := s.AssignChat(ctx, "chat_2", alice.ID); err != nil {
		t.Fatalf("AssignChat failed: %v", err)
	}
	if err := s.ResolveChat(ctx, "chat_1"); err != nil {
		t.Fatalf("ResolveChat failed: %v", err)
	}

	carolHistory, err := s.ListSenderHistory(ctx, carol.ID)
	if err != nil {
		t.Fatalf("ListSenderHistory failed: %v", err)
	}
	if len(carolHistory) != 1 || carolHistory[0].ChatID != "chat_1" {
		t.Fatalf("unexpected sender history: %+v", carolHistory)
	}
	entry := carolHistory[0]
	if entry.Status != store.StatusResolved {
		t.Fatalf("expected resolved status, got %s", entry.Status)
	}
	if !entry.CreatedAt.Equal(base) || !entry.UpdatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected timestamps: created=%v updated=%v", entry.CreatedAt, entry.UpdatedAt)
	}

	aliceHistory, err := s.ListAssigneeHistory(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListAssigneeHistory failed: %v", err)
	}
	if len(aliceHistory) != 1 || aliceHistory[0].ChatID != "chat_2" {
		t.Fatalf("unexpected assignee history: %+v", aliceHistory)
	}

	empty, err := s.ListAssigneeHistory(ctx, dave.ID)
	if err != nil {
		t.Fatalf("ListAssigneeHistory failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty history, got %+v", empty)
	}
}

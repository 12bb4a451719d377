package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/supportline/supportline-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func expectNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v received: %+v", kind, ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// fakeMessageStore records hub writes in memory. The listing methods
// are REST-only and never reached from the hub.
type fakeMessageStore struct {
	mu        sync.Mutex
	inserted  []*store.Message
	assignees map[string]string
	resolved  map[string]int

	failInsert  bool
	failAssign  bool
	failResolve bool

	// insertGate, when set, parks InsertMessage until the gate closes.
	insertGate chan struct{}
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{
		assignees: make(map[string]string),
		resolved:  make(map[string]int),
	}
}

func (f *fakeMessageStore) InsertMessage(_ context.Context, msg *store.Message) error {
	if f.insertGate != nil {
		<-f.insertGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return errFakeStore
	}
	f.inserted = append(f.inserted, msg)
	return nil
}

func (f *fakeMessageStore) AssignChat(_ context.Context, chatID, supportID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAssign {
		return errFakeStore
	}
	f.assignees[chatID] = supportID
	return nil
}

func (f *fakeMessageStore) ResolveChat(_ context.Context, chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failResolve {
		return errFakeStore
	}
	f.resolved[chatID]++
	return nil
}

func (f *fakeMessageStore) ListMessages(context.Context, string) ([]*store.MessageView, error) {
	return nil, nil
}

func (f *fakeMessageStore) ListActiveChats(context.Context) ([]*store.ChatSummary, error) {
	return nil, nil
}

func (f *fakeMessageStore) ListSenderHistory(context.Context, string) ([]*store.HistoryEntry, error) {
	return nil, nil
}

func (f *fakeMessageStore) ListAssigneeHistory(context.Context, string) ([]*store.HistoryEntry, error) {
	return nil, nil
}

func (f *fakeMessageStore) insertedMessages() []*store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*store.Message, len(f.inserted))
	copy(out, f.inserted)
	return out
}

func (f *fakeMessageStore) assignee(chatID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assignees[chatID]
}

func (f *fakeMessageStore) resolveCount(chatID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved[chatID]
}

var errFakeStore = &CoreError{Code: ErrCodeStoreFailure, Message: "fake store failure"}

func customer(id, name string) Identity {
	return Identity{ID: id, Name: name, Email: name + "@example.com", Role: RoleCustomer}
}

func supportAgent(id, name string) Identity {
	return Identity{ID: id, Name: name, Email: name + "@example.com", Role: RoleSupport}
}

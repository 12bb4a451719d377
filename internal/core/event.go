package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMessageReceived delivers a chat message to its recipient room.
	EventMessageReceived EventKind = iota
	// EventSupportNeeded surfaces fresh customer traffic to the support pool.
	EventSupportNeeded
	// EventTyping relays a typing indicator.
	EventTyping
	// EventStopTyping clears a typing indicator.
	EventStopTyping
	// EventSupportJoined tells a customer an agent took their session.
	EventSupportJoined
	// EventChatTaken tells the rest of the pool a session was claimed.
	EventChatTaken
	// EventChatResolved announces a session was marked resolved.
	EventChatResolved
	// EventSupportConnected announces an agent coming on duty.
	EventSupportConnected
	// EventSupportDisconnected announces an agent going off duty.
	EventSupportDisconnected
	// EventError reports a handler failure to the originating client.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind       EventKind
	ChatID     string
	CustomerID string
	Actor      Identity
	Message    *Message
	Error      *CoreError
}

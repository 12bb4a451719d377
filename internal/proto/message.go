package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound event names.
const (
	InboundMessageSend = "message:send"
	InboundTyping      = "typing"
	InboundStopTyping  = "stop-typing"
	InboundTakeChat    = "support:take-chat"
	InboundResolveChat = "chat:resolve"
)

// Outbound event names.
const (
	OutboundMessageReceived     = "message:received"
	OutboundSupportNeeded       = "message:support-needed"
	OutboundTyping              = "typing"
	OutboundStopTyping          = "stop-typing"
	OutboundSupportJoined       = "support:joined"
	OutboundChatTaken           = "support:chat-taken"
	OutboundChatResolved        = "chat:resolved"
	OutboundSupportConnected    = "support:connected"
	OutboundSupportDisconnected = "support:disconnected"
	OutboundError               = "error"
)

// SendData carries a message:send request.
type SendData struct {
	Content string `json:"content"`
	To      string `json:"to"`
	ChatID  string `json:"chatId"`
}

// TypingData carries typing and stop-typing requests.
type TypingData struct {
	ChatID string `json:"chatId"`
	To     string `json:"to"`
}

// TakeChatData carries a support:take-chat request.
type TakeChatData struct {
	ChatID     string `json:"chatId"`
	CustomerID string `json:"customerId"`
}

// ResolveChatData carries a chat:resolve request.
type ResolveChatData struct {
	ChatID     string `json:"chatId"`
	CustomerID string `json:"customerId"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// UserRef identifies a user inside event payloads.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MessageBody is the delivered form of a chat message.
type MessageBody struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    UserRef   `json:"sender"`
	ChatID    string    `json:"chatId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessagePayload wraps a message for message:received and
// message:support-needed events.
type MessagePayload struct {
	Message MessageBody `json:"message"`
}

// TypingPayload notifies a counterpart that someone is typing. Name is
// omitted on stop-typing.
type TypingPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
}

// SupportJoinedPayload tells a customer an agent took their session.
type SupportJoinedPayload struct {
	ChatID  string  `json:"chatId"`
	Support UserRef `json:"support"`
}

// ChatTakenPayload tells the pool a session was claimed.
type ChatTakenPayload struct {
	ChatID      string `json:"chatId"`
	CustomerID  string `json:"customerId"`
	SupportID   string `json:"supportId"`
	SupportName string `json:"supportName"`
}

// ChatResolvedPayload announces a resolved session.
type ChatResolvedPayload struct {
	ChatID     string  `json:"chatId"`
	CustomerID string  `json:"customerId,omitempty"`
	ResolvedBy UserRef `json:"resolvedBy"`
}

// SupportPresencePayload announces an agent connecting or disconnecting.
type SupportPresencePayload struct {
	SupportID string `json:"supportId"`
	Name      string `json:"name"`
}

// ErrorPayload is the single generic failure event. The message is
// human-readable only; clients must not branch on its content.
type ErrorPayload struct {
	Message string `json:"message"`
}

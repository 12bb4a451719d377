package core

import "time"

// Message is the domain model for a chat message as carried by events.
// Persistence-only fields (status, assignee) live on the store record;
// deliveries only ever carry what the original sender produced.
type Message struct {
	ID        string
	ChatID    string
	Sender    Identity
	Content   string
	CreatedAt time.Time
}

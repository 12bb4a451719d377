package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID returns a unique identifier for messages and connections.
func NewID() string {
	return uuid.NewString()
}

// NewChatID mints a chat session identifier from the creation time and
// a short fragment of the creator's user id. Uniqueness is best-effort:
// two creations in the same millisecond by users sharing an id prefix
// would collide, which is acceptable for this domain.
func NewChatID(now time.Time, userID string) string {
	prefix := userID
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return fmt.Sprintf("chat_%d_%s", now.UnixMilli(), prefix)
}

package core

// SupportRoom is the room joined by every support connection. It doubles
// as the wire value customers use to address the whole support desk.
const SupportRoom = "support"

// GeneralRoom is joined by every connection.
const GeneralRoom = "general"

// Recipient is the target of a delivery: either one identity's private
// room or the shared support pool. Keeping this a closed pair avoids
// overloading "support" as both a user id and a room name downstream.
type Recipient struct {
	pool   bool
	userID string
}

// UserRecipient addresses a single identity's private room.
func UserRecipient(id string) Recipient {
	return Recipient{userID: id}
}

// PoolRecipient addresses the whole support pool.
func PoolRecipient() Recipient {
	return Recipient{pool: true}
}

// ParseRecipient maps a wire "to" value onto a recipient. The literal
// "support" selects the pool; anything else is treated as a user id.
func ParseRecipient(raw string) Recipient {
	if raw == SupportRoom {
		return PoolRecipient()
	}
	return UserRecipient(raw)
}

// IsPool reports whether the recipient is the support pool.
func (r Recipient) IsPool() bool {
	return r.pool
}

// RoomName returns the broadcast room this recipient resolves to.
func (r Recipient) RoomName() string {
	if r.pool {
		return SupportRoom
	}
	return r.userID
}

// Wire returns the representation persisted and sent on the wire.
func (r Recipient) Wire() string {
	return r.RoomName()
}

package core

// Client is one live connection as seen by the core layer. A user with
// several open connections appears as several clients sharing the same
// identity; the per-identity room makes delivery reach all of them.
type Client struct {
	ID       string
	Identity Identity
	Commands chan *Command
	Events   chan *Event
	Rooms    map[string]struct{}

	done chan struct{}
}

// NewClient constructs a client for an authenticated identity.
func NewClient(connID string, identity Identity) *Client {
	return &Client{
		ID:       connID,
		Identity: identity,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
		Rooms:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
}

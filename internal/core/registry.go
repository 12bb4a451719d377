package core

// Registry maps live connections to broadcast rooms. Every client joins
// its own-id room and the general room; support clients additionally
// join the support pool. The registry is owned by the hub's run loop
// and is not safe for concurrent use.
type Registry struct {
	rooms map[string]*Room
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Room returns the named room, creating it if needed.
func (g *Registry) Room(name string) *Room {
	room, ok := g.rooms[name]
	if !ok {
		room = NewRoom(name)
		g.rooms[name] = room
	}
	return room
}

// lookup returns the named room or nil when nobody has joined it.
func (g *Registry) lookup(name string) *Room {
	return g.rooms[name]
}

// Register joins a client to the rooms its identity entitles it to.
func (g *Registry) Register(c *Client) {
	g.join(c, c.Identity.ID)
	g.join(c, GeneralRoom)

	switch c.Identity.Role {
	case RoleSupport:
		g.join(c, SupportRoom)
	case RoleCustomer, RoleAdmin:
		// Own-id and general rooms only.
	}
}

// Unregister removes the client from every room it joined.
func (g *Registry) Unregister(c *Client) {
	for name := range c.Rooms {
		if room := g.lookup(name); room != nil {
			room.RemoveClient(c)
			if room.Empty() {
				delete(g.rooms, name)
			}
		}
		delete(c.Rooms, name)
	}
}

// ResolveRoom maps a recipient onto its delivery room. Returns nil when
// no member of that room is connected; broadcasting to nil is a no-op.
func (g *Registry) ResolveRoom(rcpt Recipient) *Room {
	return g.lookup(rcpt.RoomName())
}

func (g *Registry) join(c *Client, name string) {
	g.Room(name).AddClient(c)
	c.Rooms[name] = struct{}{}
}

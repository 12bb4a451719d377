package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportline/supportline-server/internal/store"
	"github.com/supportline/supportline-server/internal/utils"
)

// Hub is the event router: it owns the room registry and consumes every
// inbound command from every connection on a single goroutine, so room
// state needs no locking. Commands from one client are handled in
// arrival order; no ordering holds across clients.
type Hub struct {
	registry *Registry
	messages store.MessageStore
	presence PresenceTracker
	log      *zerolog.Logger

	clients     map[*Client]struct{}
	register    chan *Client
	unregister  chan *Client
	commands    chan clientCommand
	completions chan func()
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// NewHub creates a hub. The message store may be nil in tests that only
// exercise routing; the presence tracker may be nil to disable the
// support roster.
func NewHub(messages store.MessageStore, presence PresenceTracker, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		registry:   NewRegistry(),
		messages:   messages,
		presence:   presence,
		log:        logger,
		clients:     make(map[*Client]struct{}),
		register:    make(chan *Client, 16),
		unregister:  make(chan *Client, 16),
		commands:    make(chan clientCommand, 64),
		completions: make(chan func(), 64),
	}
}

// RegisterClient hands an authenticated connection to the hub. The
// caller must have verified the identity already; the hub never sees
// anonymous clients.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a connection from all rooms.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes registrations and commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.handleRegister(ctx, c)
		case c := <-h.unregister:
			h.handleUnregister(ctx, c)
		case cc := <-h.commands:
			h.dispatch(ctx, cc.client, cc.cmd)
		case fn := <-h.completions:
			fn()
		}
	}
}

// complete posts a continuation back onto the run loop, which owns the
// registry. Store and presence calls run off that loop so a slow write
// never stalls routing for other connections; only the resulting
// broadcasts are serialized here.
func (h *Hub) complete(ctx context.Context, fn func()) {
	select {
	case h.completions <- fn:
	case <-ctx.Done():
	}
}

func (h *Hub) handleRegister(ctx context.Context, c *Client) {
	if _, exists := h.clients[c]; exists {
		return
	}
	h.clients[c] = struct{}{}
	h.registry.Register(c)
	go h.pump(c)

	h.log.Info().
		Str("client_id", c.ID).
		Str("user_id", c.Identity.ID).
		Str("role", string(c.Identity.Role)).
		Msg("client registered")

	if c.Identity.Role != RoleSupport {
		return
	}
	h.registry.ResolveRoom(PoolRecipient()).Broadcast(&Event{
		Kind:  EventSupportConnected,
		Actor: c.Identity,
	}, c)
	if h.presence != nil {
		go func() {
			if err := h.presence.SupportOnline(ctx, c.Identity.ID, c.Identity.Name); err != nil {
				h.log.Warn().Err(err).Str("user_id", c.Identity.ID).Msg("presence online update failed")
			}
		}()
	}
}

func (h *Hub) handleUnregister(ctx context.Context, c *Client) {
	if _, exists := h.clients[c]; !exists {
		return
	}
	delete(h.clients, c)
	h.registry.Unregister(c)
	close(c.done)

	h.log.Info().
		Str("client_id", c.ID).
		Str("user_id", c.Identity.ID).
		Msg("client unregistered")

	if c.Identity.Role != RoleSupport {
		return
	}
	h.registry.ResolveRoom(PoolRecipient()).Broadcast(&Event{
		Kind:  EventSupportDisconnected,
		Actor: c.Identity,
	}, c)
	if h.presence != nil {
		go func() {
			if err := h.presence.SupportOffline(ctx, c.Identity.ID); err != nil {
				h.log.Warn().Err(err).Str("user_id", c.Identity.ID).Msg("presence offline update failed")
			}
		}()
	}
}

// pump forwards one client's commands into the shared dispatch channel,
// preserving per-connection ordering.
func (h *Hub) pump(c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			h.commands <- clientCommand{client: c, cmd: cmd}
		case <-c.done:
			return
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, c *Client, cmd *Command) {
	if _, exists := h.clients[c]; !exists {
		// Command raced with disconnect; drop it.
		return
	}

	switch cmd.Kind {
	case CommandSendMessage:
		h.handleSendMessage(ctx, c, cmd)
	case CommandTyping:
		h.handleTyping(c, cmd, EventTyping)
	case CommandStopTyping:
		h.handleTyping(c, cmd, EventStopTyping)
	case CommandTakeChat:
		h.handleTakeChat(ctx, c, cmd)
	case CommandResolveChat:
		h.handleResolveChat(ctx, c, cmd)
	default:
		h.emitError(c, coreError(ErrCodeBadRequest, "unknown command"))
	}
}

func (h *Hub) handleSendMessage(ctx context.Context, c *Client, cmd *Command) {
	record := &store.Message{
		ID:        utils.NewID(),
		ChatID:    cmd.ChatID,
		SenderID:  c.Identity.ID,
		Receiver:  cmd.To.Wire(),
		Content:   cmd.Content,
		Status:    store.StatusSent,
		CreatedAt: time.Now().UTC(),
	}
	msg := &Message{
		ID:        record.ID,
		ChatID:    record.ChatID,
		Sender:    c.Identity,
		Content:   record.Content,
		CreatedAt: record.CreatedAt,
	}

	go func() {
		err := h.messages.InsertMessage(ctx, record)
		h.complete(ctx, func() {
			if err != nil {
				h.log.Error().Err(err).Str("chat_id", cmd.ChatID).Msg("failed to persist message")
				h.emitError(c, coreError(ErrCodeStoreFailure, "Failed to send message"))
				return
			}

			h.registry.ResolveRoom(cmd.To).Broadcast(&Event{
				Kind:    EventMessageReceived,
				Message: msg,
			}, nil)

			// Customer traffic additionally fans out to the pool so any
			// free agent sees it without being pre-assigned.
			switch c.Identity.Role {
			case RoleCustomer:
				h.registry.ResolveRoom(PoolRecipient()).Broadcast(&Event{
					Kind:    EventSupportNeeded,
					Message: msg,
				}, c)
			case RoleSupport, RoleAdmin:
				// Staff messages go to their counterpart only.
			}
		})
	}()
}

func (h *Hub) handleTyping(c *Client, cmd *Command, kind EventKind) {
	h.registry.ResolveRoom(cmd.To).Broadcast(&Event{
		Kind:   kind,
		ChatID: cmd.ChatID,
		Actor:  c.Identity,
	}, c)
}

func (h *Hub) handleTakeChat(ctx context.Context, c *Client, cmd *Command) {
	go func() {
		err := h.messages.AssignChat(ctx, cmd.ChatID, c.Identity.ID)
		h.complete(ctx, func() {
			if err != nil {
				h.log.Error().Err(err).Str("chat_id", cmd.ChatID).Msg("failed to assign chat")
				h.emitError(c, coreError(ErrCodeStoreFailure, "Failed to assign support staff"))
				return
			}

			h.registry.ResolveRoom(UserRecipient(cmd.CustomerID)).Broadcast(&Event{
				Kind:   EventSupportJoined,
				ChatID: cmd.ChatID,
				Actor:  c.Identity,
			}, nil)
			h.registry.ResolveRoom(PoolRecipient()).Broadcast(&Event{
				Kind:       EventChatTaken,
				ChatID:     cmd.ChatID,
				CustomerID: cmd.CustomerID,
				Actor:      c.Identity,
			}, c)
		})
	}()
}

func (h *Hub) handleResolveChat(ctx context.Context, c *Client, cmd *Command) {
	go func() {
		err := h.messages.ResolveChat(ctx, cmd.ChatID)
		h.complete(ctx, func() {
			if err != nil {
				h.log.Error().Err(err).Str("chat_id", cmd.ChatID).Msg("failed to resolve chat")
				h.emitError(c, coreError(ErrCodeStoreFailure, "Failed to resolve chat"))
				return
			}

			resolved := &Event{
				Kind:       EventChatResolved,
				ChatID:     cmd.ChatID,
				CustomerID: cmd.CustomerID,
				Actor:      c.Identity,
			}
			h.registry.ResolveRoom(UserRecipient(cmd.CustomerID)).Broadcast(resolved, nil)
			// The resolver hears this too, unlike the take-chat announcement.
			h.registry.ResolveRoom(PoolRecipient()).Broadcast(resolved, nil)
		})
	}()
}

func (h *Hub) emitError(c *Client, cerr *CoreError) {
	select {
	case c.Events <- &Event{Kind: EventError, Error: cerr}:
	default:
	}
}

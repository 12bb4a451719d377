package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/supportline/supportline-server/internal/chat"
	"github.com/supportline/supportline-server/internal/core"
	"github.com/supportline/supportline-server/internal/presence"
	"github.com/supportline/supportline-server/internal/store"
)

// ChatHandlers provides HTTP handlers for the chat session endpoints.
type ChatHandlers struct {
	chats  *chat.Service
	roster *presence.Roster
	log    *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance. The roster may
// be nil when no redis is configured.
func NewChatHandlers(chats *chat.Service, roster *presence.Roster, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		chats:  chats,
		roster: roster,
		log:    logger,
	}
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID         string        `json:"id"`
	ChatID     string        `json:"chatId"`
	Sender     UserResponse  `json:"sender"`
	Receiver   string        `json:"receiver"`
	Content    string        `json:"content"`
	Status     string        `json:"status"`
	AssignedTo *UserResponse `json:"assignedTo"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// CreateSessionResponse represents the create-session response body.
type CreateSessionResponse struct {
	ChatID  string          `json:"chatId"`
	Message MessageResponse `json:"message"`
}

// ActiveSessionResponse summarizes one unresolved session.
type ActiveSessionResponse struct {
	ChatID      string          `json:"chatId"`
	LastMessage MessageResponse `json:"lastMessage"`
	Customer    UserResponse    `json:"customer"`
	AssignedTo  *UserResponse   `json:"assignedTo"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// HistoryEntryResponse summarizes one session in the caller's history.
type HistoryEntryResponse struct {
	ChatID      string          `json:"chatId"`
	LastMessage MessageResponse `json:"lastMessage"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// SupportOnlineResponse lists support agents currently on duty.
type SupportOnlineResponse struct {
	Agents []presence.Agent `json:"agents"`
}

func userRefResponse(ref store.UserRef) UserResponse {
	return UserResponse{
		ID:    ref.ID,
		Name:  ref.Name,
		Email: ref.Email,
	}
}

func optionalUserRef(ref *store.UserRef) *UserResponse {
	if ref == nil {
		return nil
	}
	resp := userRefResponse(*ref)
	return &resp
}

func messageResponse(v *store.MessageView) MessageResponse {
	return MessageResponse{
		ID:         v.ID,
		ChatID:     v.ChatID,
		Sender:     userRefResponse(v.Sender),
		Receiver:   v.Receiver,
		Content:    v.Content,
		Status:     string(v.Status),
		AssignedTo: optionalUserRef(v.AssignedTo),
		CreatedAt:  v.CreatedAt,
	}
}

// ListMessages returns a chat transcript, oldest first.
// GET /api/chat/messages/:chatId
func (h *ChatHandlers) ListMessages(c *gin.Context) {
	if _, ok := identityFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	chatID := c.Param("chatId")
	views, err := h.chats.ListMessages(c.Request.Context(), chatID)
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chatID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(views))
	for _, v := range views {
		response = append(response, messageResponse(v))
	}
	c.JSON(http.StatusOK, response)
}

// CreateSession opens a new chat session for the caller.
// POST /api/chat/create
func (h *ChatHandlers) CreateSession(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	chatID, opening, err := h.chats.CreateSession(c.Request.Context(), identity)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", identity.ID).Msg("failed to create chat session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("chat_id", chatID).Str("user_id", identity.ID).Msg("chat session created")
	c.JSON(http.StatusOK, CreateSessionResponse{
		ChatID:  chatID,
		Message: messageResponse(opening),
	})
}

// ActiveSessions lists unresolved sessions for the support dashboard.
// GET /api/chat/active
func (h *ChatHandlers) ActiveSessions(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	summaries, err := h.chats.ActiveSessions(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "not authorized"})
			return
		}
		h.log.Error().Err(err).Msg("failed to list active chats")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ActiveSessionResponse, 0, len(summaries))
	for _, s := range summaries {
		response = append(response, ActiveSessionResponse{
			ChatID:      s.ChatID,
			LastMessage: messageResponse(s.LastMessage),
			Customer:    userRefResponse(s.Customer),
			AssignedTo:  optionalUserRef(s.AssignedTo),
			CreatedAt:   s.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

// History lists the caller's own sessions.
// GET /api/chat/history
func (h *ChatHandlers) History(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	entries, err := h.chats.History(c.Request.Context(), identity)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", identity.ID).Msg("failed to list chat history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, HistoryEntryResponse{
			ChatID:      e.ChatID,
			LastMessage: messageResponse(e.LastMessage),
			Status:      string(e.Status),
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

// SupportOnline lists agents currently on duty. Staff only.
// GET /api/chat/support/online
func (h *ChatHandlers) SupportOnline(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	if !identity.Role.IsStaff() {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not authorized"})
		return
	}

	if h.roster == nil {
		c.JSON(http.StatusOK, SupportOnlineResponse{Agents: []presence.Agent{}})
		return
	}

	agents, err := h.roster.Online(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read support roster")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, SupportOnlineResponse{Agents: agents})
}

package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/supportline/supportline-server/internal/auth"
	"github.com/supportline/supportline-server/internal/chat"
	"github.com/supportline/supportline-server/internal/config"
	"github.com/supportline/supportline-server/internal/core"
	"github.com/supportline/supportline-server/internal/presence"
)

// NewServer builds the HTTP server: auth and chat REST endpoints plus
// the websocket upgrade route.
func NewServer(
	hub *core.Hub,
	authService *auth.Service,
	chats *chat.Service,
	roster *presence.Roster,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	apiHandlers := NewAPIHandlers(authService, logger)
	chatHandlers := NewChatHandlers(chats, roster, logger)

	api := router.Group("/api")
	api.POST("/auth/register", apiHandlers.Register)
	api.POST("/auth/login", apiHandlers.Login)

	chatGroup := api.Group("/chat", AuthMiddleware(authService, logger))
	chatGroup.GET("/messages/:chatId", chatHandlers.ListMessages)
	chatGroup.POST("/create", chatHandlers.CreateSession)
	chatGroup.GET("/active", chatHandlers.ActiveSessions)
	chatGroup.GET("/history", chatHandlers.History)
	chatGroup.GET("/support/online", chatHandlers.SupportOnline)

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, cfg, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

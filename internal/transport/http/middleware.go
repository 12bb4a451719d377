package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/supportline/supportline-server/internal/auth"
	"github.com/supportline/supportline-server/internal/core"
)

// ContextKeyIdentity is the gin context key for the caller's identity.
const ContextKeyIdentity = "identity"

// AuthMiddleware validates the bearer token and stores the resolved
// identity in the request context. Email is carried in the claims so
// REST handlers never need a user lookup.
func AuthMiddleware(authService *auth.Service, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug().Msg("missing authorization header")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Debug().Msg("invalid authorization header format")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			logger.Debug().Err(err).Msg("invalid token")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			c.Abort()
			return
		}

		role, err := core.ParseRole(claims.Role)
		if err != nil {
			logger.Debug().Err(err).Msg("token carries unknown role")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			c.Abort()
			return
		}

		c.Set(ContextKeyIdentity, core.Identity{
			ID:    claims.UserID,
			Name:  claims.Name,
			Email: claims.Email,
			Role:  role,
		})

		c.Next()
	}
}

// identityFromContext fetches the identity stored by AuthMiddleware.
func identityFromContext(c *gin.Context) (core.Identity, bool) {
	value, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return core.Identity{}, false
	}
	identity, ok := value.(core.Identity)
	return identity, ok
}

// LoggerMiddleware logs HTTP requests after they complete.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}

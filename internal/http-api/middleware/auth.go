package middleware

import (
	"net/http"
	"strings"

	"reviewhub/internal/http-api/service"
	"reviewhub/internal/policy"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// It checks for the presence and validity of a JWT token in the
// Authorization header and stores the explicit actor for downstream policy
// decisions.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(actorKey, policy.Actor{
			ID:            claims.UserID,
			Username:      claims.Username,
			Role:          claims.Role,
			Superuser:     claims.Superuser,
			Authenticated: true,
		})

		c.Next()
	}
}

// ActorFromContext returns the authenticated actor, or the zero (anonymous)
// actor on routes that allow unauthenticated access.
func ActorFromContext(c *gin.Context) policy.Actor {
	if v, exists := c.Get(actorKey); exists {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Actor{}
}

// Authorize runs the first-stage access decision for the resource kind.
// Object-level ownership stays with the handlers.
func Authorize(kind policy.ResourceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if !policy.CanAccess(actor, c.Request.Method, kind) {
			if !actor.Authenticated {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			} else {
				c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			}
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin gates routes that only admins (or superusers) may touch
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFromContext(c).IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

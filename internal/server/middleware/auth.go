// Package middleware provides gin middleware for the HTTP server: Bearer
// token authentication and client IP extraction for the audit log.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"workspace-control-plane/backend/internal/security"
)

const bearerPrefix = "bearer "

// Context keys set by RequireAuth.
const (
	ctxUserID = "user_id"
	ctxEmail  = "user_email"
)

// clientIPKey carries the client IP into request contexts for the audit log.
type clientIPKey struct{}

// RequireAuth validates the Bearer access token from the Authorization header
// and sets user_id and user_email in the gin context. Requests without a
// valid token are rejected with 401.
func RequireAuth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		userID, email, err := tokens.ValidateAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxEmail, email)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireAuth, or "".
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// Email returns the authenticated user's email set by RequireAuth, or "".
func Email(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

// ClientIP copies gin's client IP into the request context so that code
// holding only a context.Context (e.g. the audit logger) can read it.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), clientIPKey{}, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// IPFromContext returns the client IP stored by ClientIP, or "unknown".
func IPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

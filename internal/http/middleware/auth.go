package middleware

import (
	"net/http"
	"strings"

	"pickupcore/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	requestContextKey = "request_context"
	userRoleKey       = "userRole"
)

// TokenParser turns a bearer token into the caller's identity.
type TokenParser func(raw string) (domain.RequestContext, error)

// RequireAuth rejects requests without a valid staff token. Browsers cannot
// set headers on a websocket handshake, so ?token= is accepted as well.
func RequireAuth(parse TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			raw = strings.TrimSpace(raw[len("bearer "):])
		}
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			abortUnauthorized(c, "token tidak ditemukan")
			return
		}
		rc, err := parse(raw)
		if err != nil {
			abortUnauthorized(c, "token tidak valid")
			return
		}
		c.Set(requestContextKey, rc)
		c.Set(userRoleKey, rc.Role)
		c.Next()
	}
}

// RequireRoles only lets through callers whose role is in allowedRoles.
// It expects RequireAuth to have run first.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := strings.ToLower(strings.TrimSpace(c.GetString(userRoleKey)))
		if role == "" {
			abortUnauthorized(c, "role tidak ditemukan pada context")
			return
		}
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "forbidden: role tidak diizinkan",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

// GetRequestContext returns the authenticated caller, if any.
func GetRequestContext(c *gin.Context) (domain.RequestContext, bool) {
	v, ok := c.Get(requestContextKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      "unauthorized: " + msg,
		"request_id": GetRequestID(c),
	})
}

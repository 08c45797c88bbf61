package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "client_identity"

// IdentityExtractor derives the rate-limit identity from a request. Whether a
// forwarded-for header can be trusted is a deployment policy, so the
// derivation is pluggable rather than hard-wired into the handler.
type IdentityExtractor func(c *gin.Context) string

// ForwardedForIdentity takes the first X-Forwarded-For entry, falling back to
// the transport-level peer address.
func ForwardedForIdentity(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// ClientIdentity resolves and stores the client identity for the request.
func ClientIdentity(extract IdentityExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, extract(c))
		c.Next()
	}
}

// IdentityFrom returns the identity resolved for this request.
func IdentityFrom(c *gin.Context) string {
	if v, ok := c.Get(identityKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

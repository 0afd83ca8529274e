// Package requestid tags every request with an X-Request-ID, keeping a
// well-formed one sent by the client or a proxy.
package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	Header   = "X-Request-ID"
	ginKey   = "request_id"
	maxChars = 128
)

type ctxKey struct{}

func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !wellFormed(id) {
			id = uuid.NewString()
		}
		c.Set(ginKey, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKey{}, id))
		c.Header(Header, id)
		c.Next()
	}
}

// Value returns the ID of the request handled by c.
func Value(c *gin.Context) string {
	return c.GetString(ginKey)
}

// FromContext returns the ID carried by a request context, for code below the handlers.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// wellFormed accepts 1..128 characters of letters, digits, '-', '_', '.' and ':'.
func wellFormed(id string) bool {
	if id == "" || len(id) > maxChars {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}

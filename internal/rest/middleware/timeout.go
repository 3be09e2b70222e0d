package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// SetRequestContextWithTimeout bounds every request context so a slow
// dependency cannot hold an HTTP worker indefinitely.
func SetRequestContextWithTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/httputil"
)

// DefaultMaxBodySize caps JSON bodies; the largest request is a registration.
const DefaultMaxBodySize int64 = 64 << 10

// SecurityHeaders adds headers appropriate for a JSON API that is never
// rendered in a frame.
func SecurityHeaders(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hsts {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}

// BodyLimit rejects declared bodies over max bytes and caps undeclared ones.
func BodyLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		max = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				httputil.NewErrorResponse(fmt.Sprintf("request body exceeds %d bytes", max)))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

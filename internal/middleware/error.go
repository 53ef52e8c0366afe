package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/errors"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/httputil"
)

// ErrorHandler logs errors recorded on the context. Server-side failures are
// logged at error level, expected outcomes (not found, no bed) at debug. If
// the handler did not write a response the last error is rendered.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			event := log.Debug()
			var appErr *errors.AppError
			if !errors.As(e.Err, &appErr) || appErr.StatusCode() >= 500 {
				event = log.Error()
			}
			event.
				Err(e.Err).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request error")
		}

		if !c.Writer.Written() {
			httputil.RespondWithError(c, c.Errors.Last().Err)
		}
	}
}

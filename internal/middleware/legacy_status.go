package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type legacyStatusWriter struct {
	gin.ResponseWriter
}

func (w *legacyStatusWriter) WriteHeader(code int) {
	if code >= http.StatusBadRequest {
		code = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(code)
}

// LegacyStatus answers every failure with 200 and leaves the error envelope
// as the only failure signal, for clients that key off the body's code.
func LegacyStatus(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		w := &legacyStatusWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()
		c.Writer = w.ResponseWriter
	}
}

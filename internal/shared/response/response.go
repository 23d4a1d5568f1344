package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Success writes the payload fields (e.g. "employee", "employees") next to an
// optional message.
func Success(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{}
	for k, v := range payload {
		body[k] = v
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func Error(c *gin.Context, status int, errorCode string, message string, detail string, details any) {
	c.JSON(status, ErrorEnvelope{
		Message: message,
		Code:    errorCode,
		Error:   detail,
		Details: details,
	})
}

// Abort writes an error and stops the middleware chain.
func Abort(c *gin.Context, status int, errorCode string, message string) {
	Error(c, status, errorCode, message, "", nil)
	c.Abort()
}

package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(message string, data interface{}) *Response {
	return &Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  StatusError,
		Message: message,
	}
}

// RespondWithSuccess sends a 200 response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse("", data))
}

// RespondWithStatus sends a success response with an explicit status and message.
func RespondWithStatus(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, NewSuccessResponse(message, data))
}

// RespondWithError sends an error response. Errors that are not AppErrors
// become a 500 without leaking their text.
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "internal server error"

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		statusCode = appErr.StatusCode()
		message = appErr.Message
	}

	c.JSON(statusCode, NewErrorResponse(message))
}

// AbortWithError sends the error response, records err on the context for
// the error logging middleware and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	RespondWithError(c, err)
	c.Abort()
}

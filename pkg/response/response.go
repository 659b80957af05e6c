package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the only shape ever returned for a failed API call.
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MessageBody is a success with a human readable message.
type MessageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Fail writes {success:false, message} and aborts the chain.
func Fail(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, ErrorBody{Success: false, Message: message})
}

// OK writes body with status (200 when zero).
func OK(c *gin.Context, status int, body any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, body)
}

// Message writes {success:true, message}.
func Message(c *gin.Context, status int, message string) {
	OK(c, status, MessageBody{Success: true, Message: message})
}

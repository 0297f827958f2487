package http

import "github.com/gin-gonic/gin"

// Every response carries the same envelope: message, error, success, optional data.
type response struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	failed := status >= 400
	c.JSON(status, response{
		Message: message,
		Error:   failed,
		Success: !failed,
		Data:    data,
	})
}

func abort(c *gin.Context, status int, message string) {
	failed := status >= 400
	c.AbortWithStatusJSON(status, response{Message: message, Error: failed, Success: !failed})
}

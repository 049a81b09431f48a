package response

import (
	"github.com/gin-gonic/gin"
)

// Success writes the payload as-is with a 200.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

// Error writes {"detail": message} with the given HTTP status. The message
// must already be safe to show to the caller; internal detail belongs in
// the logs, not here.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}

package utils

import (
	"net/http"

	"opsdash/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message      string               `json:"message"`
	Details      string               `json:"details,omitempty"`
	Field        string               `json:"field,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.FullPath()))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// JSONNotification sends an error response carrying the notification shown to the user.
func JSONNotification(c *gin.Context, status int, n models.Notification) {
	Logger := GetLogger()
	Logger.Warn(n.Title, zap.String("message", n.Message), zap.String("kind", string(n.Kind)))
	c.JSON(status, ErrorResponse{
		Message:      n.Message,
		Details:      n.Title,
		Field:        n.Field,
		Notification: &n,
	})
}

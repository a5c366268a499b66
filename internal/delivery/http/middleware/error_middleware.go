package middleware

import (
	"errors"
	"net/http"

	"contact-mail-backend/internal/delivery/http/response"
	"contact-mail-backend/pkg/apperror"
	"contact-mail-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				if appErr.Err != nil {
					logger.Log.Error("request failed", "rid", response.RequestID(c), "status", appErr.Code, "error", appErr.Err)
				}
				response.Error(c, appErr.Code, appErr.Message)
			} else {
				// SECURITY: Never expose internal error details to clients.
				// Log the actual error server-side for debugging, but send a
				// generic message to the user to prevent information disclosure.
				logger.Log.Error("internal server error", "rid", response.RequestID(c), "error", err)
				response.Error(c, http.StatusInternalServerError, response.MsgSendFailed)
			}
		}
	}
}

// Recovery turns a panic into the generic 500 payload.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Error("panic recovered", "rid", response.RequestID(c), "panic", recovered)
		response.Error(c, http.StatusInternalServerError, response.MsgSendFailed)
		c.Abort()
	})
}

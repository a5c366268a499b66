package middleware

import (
	"fmt"

	"contact-mail-backend/internal/domain"
	"contact-mail-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestID assigns the correlation id of the request, exposes it in the
// X-Request-ID header and opens the request in the mail log.
func RequestID(log domain.RequestLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := logger.NewCorrelationID()
		c.Set(string(domain.KeyRequestID), rid)
		c.Header("X-Request-ID", rid)

		log.Log(rid, "=== New request ===")
		log.Log(rid, fmt.Sprintf("METHOD=%s URI=%s", c.Request.Method, c.Request.RequestURI))
		if origin := c.Request.Header.Get("Origin"); origin != "" {
			log.Log(rid, "Origin="+origin)
		}

		c.Next()
	}
}

package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const CorrelationHeader = "X-Correlation-Id"

// CorrelationMiddleware propagates the caller's correlation id or mints one.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get(CorrelationHeader)
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		c.Set("correlation_id", correlationId)
		c.Writer.Header().Set(CorrelationHeader, correlationId)
		c.Next()
	}
}

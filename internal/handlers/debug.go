package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chat-backend/internal/observability"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		requestID := requestIDFromContext(c)
		err := observability.PublishEvent(c.Request.Context(), "ws_events.debug", observability.AuditEvent{
			Kind:    "audit_log",
			Name:    "audit_test",
			Payload: gin.H{"request_id": requestID},
		}, observability.EventHeaders(requestID, ""))
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit publish failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "audit event published", "request_id": requestID})
	})
}

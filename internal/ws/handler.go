package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chat-backend/internal/auth"
	"chat-backend/internal/chat"
	"chat-backend/internal/models"
	"chat-backend/internal/observability"
	"chat-backend/internal/repositories"
)

// Handler performs the websocket handshake for every chat kind: parse the
// chat identifier, verify the credential, authorize membership, then upgrade
// and register. Any failure before the upgrade closes the connection without
// touching the registry.
type Handler struct {
	hub        *Hub
	dispatcher *Dispatcher
	verifier   *auth.Verifier
	authorizer *chat.Authorizer
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, dispatcher *Dispatcher, verifier *auth.Verifier, authorizer *chat.Authorizer) *Handler {
	return &Handler{hub: hub, dispatcher: dispatcher, verifier: verifier, authorizer: authorizer}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inboundEvent is what clients send over an open channel.
type inboundEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	ID      int    `json:"id"`
}

// Handle upgrades the connection and registers the client.
func (h *Handler) Handle(c *gin.Context) {
	chatID, err := models.ParseChatID(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	ctx, span := otel.Tracer("chat-backend/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	// The browser websocket API cannot set headers, so the token also
	// arrives as a query parameter during the handshake.
	token := bearerToken(c)
	user, err := h.verifier.Verify(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	allowed, err := h.authorizer.CanAccess(ctx, user.ID, chatID)
	if err != nil || !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for chat"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      user.ID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(chatID, conn, info)

	kind := chatID.Kind.String()
	observability.IncWSActive(kind)
	observability.IncWSEvent(kind, "ws_connect")
	publishLifecycleEvent(ctx, chatID, info, "ws_connect", "")

	// The request context dies when this handler returns, but the
	// connection outlives it.
	connCtx := context.WithoutCancel(ctx)

	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(chatID, conn)
			conn.Close()
			observability.DecWSActive(kind)
			observability.IncWSEvent(kind, "ws_disconnect")
			publishLifecycleEvent(connCtx, chatID, info, "ws_disconnect", closeReason)
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent(kind, "ws_error")
					publishLifecycleEvent(connCtx, chatID, info, "ws_error", closeReason)
				}
				return
			}

			var event inboundEvent
			if err := json.Unmarshal(data, &event); err != nil {
				log.Printf("ws: malformed event from user %d: %v", user.ID, err)
				continue
			}

			switch event.Type {
			case "message":
				if event.Content == "" {
					continue
				}
				if _, err := h.dispatcher.SendMessage(connCtx, chatID, user, event.Content); err != nil {
					log.Printf("ws: send dispatch failed for chat %s: %v", chatID, err)
				}
			case "delete":
				err := h.dispatcher.DeleteMessage(connCtx, chatID, user.ID, event.ID)
				if err != nil && !errors.Is(err, ErrNotSender) && !errors.Is(err, repositories.ErrMessageNotFound) {
					log.Printf("ws: delete dispatch failed for chat %s: %v", chatID, err)
				}
			}
		}
	}()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

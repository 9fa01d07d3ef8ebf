package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-backend/internal/chat"
	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
	"chat-backend/internal/ws"
)

// ChatHandler serves the chat list, history reads and REST deletions.
type ChatHandler struct {
	friends    repositories.FriendRepository
	groups     repositories.GroupRepository
	messages   repositories.MessageRepository
	authorizer *chat.Authorizer
	dispatcher *ws.Dispatcher
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(friends repositories.FriendRepository, groups repositories.GroupRepository, messages repositories.MessageRepository, authorizer *chat.Authorizer, dispatcher *ws.Dispatcher) *ChatHandler {
	return &ChatHandler{
		friends:    friends,
		groups:     groups,
		messages:   messages,
		authorizer: authorizer,
		dispatcher: dispatcher,
	}
}

// ListChats returns the general room, one private chat per accepted friend
// and the caller's group rooms.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	type chatEntry struct {
		ChatID  string `json:"chat_id"`
		Name    string `json:"name"`
		Type    string `json:"type"`
		UserID  int    `json:"user_id,omitempty"`
		GroupID int    `json:"group_id,omitempty"`
	}

	chats := []chatEntry{{ChatID: models.GeneralChatID().String(), Name: "General Chat", Type: "general"}}

	friends, err := h.friends.ListFriends(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load friends"})
		return
	}
	for _, friend := range friends {
		id, err := models.PrivateChatID(userID, friend.ID)
		if err != nil {
			continue
		}
		chats = append(chats, chatEntry{ChatID: id.String(), Name: friend.DisplayName, Type: "private", UserID: friend.ID})
	}

	groups, err := h.groups.ListGroupsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load groups"})
		return
	}
	for _, group := range groups {
		id, err := models.GroupChatID(group.ID)
		if err != nil {
			continue
		}
		chats = append(chats, chatEntry{ChatID: id.String(), Name: group.Name, Type: "group", GroupID: group.ID})
	}

	c.JSON(http.StatusOK, chats)
}

// GetMessages is the history read: re-authorize, then every message of the
// chat in timestamp order, deleted ones included with content intact.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	chatID, err := models.ParseChatID(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID := c.GetInt("userID")
	allowed, err := h.authorizer.CanAccess(c.Request.Context(), userID, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	msgs, err := h.messages.ListMessages(c.Request.Context(), chatID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, msgs)
}

// DeleteMessage soft-deletes a message over REST. The dispatcher broadcasts
// the deletion so live participants converge with history.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	var req struct {
		MessageID int `json:"message_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.messages.GetMessage(c.Request.Context(), req.MessageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}

	chatID, err := models.ParseChatID(msg.ChatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "corrupt chat id"})
		return
	}

	if err := h.dispatcher.DeleteMessage(c.Request.Context(), chatID, userID, req.MessageID); err != nil {
		switch {
		case errors.Is(err, ws.ErrNotSender):
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		case errors.Is(err, repositories.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "message deleted"})
}

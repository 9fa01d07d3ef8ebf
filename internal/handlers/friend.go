package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
)

// FriendHandler manages friend request endpoints.
type FriendHandler struct {
	friends repositories.FriendRepository
	users   repositories.UserRepository
}

// NewFriendHandler builds a FriendHandler.
func NewFriendHandler(friends repositories.FriendRepository, users repositories.UserRepository) *FriendHandler {
	return &FriendHandler{friends: friends, users: users}
}

// AddFriend records a pending request toward another user.
func (h *FriendHandler) AddFriend(c *gin.Context) {
	var req struct {
		FriendID int `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if req.FriendID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot befriend yourself"})
		return
	}

	if _, err := h.users.GetUserByID(c.Request.Context(), req.FriendID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}

	if err := h.friends.CreateRequest(c.Request.Context(), userID, req.FriendID); err != nil {
		if errors.Is(err, repositories.ErrFriendRequestExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "already friends or request pending"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "friend request sent"})
}

// AcceptFriend flips a pending request from friend_id toward the caller to
// accepted.
func (h *FriendHandler) AcceptFriend(c *gin.Context) {
	var req struct {
		FriendID int `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.friends.AcceptRequest(c.Request.Context(), req.FriendID, userID); err != nil {
		if errors.Is(err, repositories.ErrFriendRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no pending request from that user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not accept request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "friend request accepted"})
}

// ListFriends returns the caller's accepted friends.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID := c.GetInt("userID")
	friends, err := h.friends.ListFriends(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load friends"})
		return
	}
	if friends == nil {
		friends = []models.UserSummary{}
	}

	c.JSON(http.StatusOK, friends)
}

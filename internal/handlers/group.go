package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
)

// GroupHandler manages group endpoints.
type GroupHandler struct {
	groups repositories.GroupRepository
	users  repositories.UserRepository
}

// NewGroupHandler builds a GroupHandler.
func NewGroupHandler(groups repositories.GroupRepository, users repositories.UserRepository) *GroupHandler {
	return &GroupHandler{groups: groups, users: users}
}

// CreateGroup creates a group owned by the caller, who always becomes a
// member.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		MemberIDs []int  `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	group, err := h.groups.CreateGroup(c.Request.Context(), userID, req.Name, req.MemberIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group_id": group.ID, "name": group.Name})
}

// AddMember adds a user to a group; owner only.
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req struct {
		GroupID  int `json:"group_id" binding:"required"`
		MemberID int `json:"member_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	group, err := h.groups.GetGroup(c.Request.Context(), req.GroupID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGroupNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "group not found"})
		return
	}
	if group.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only group owner can add members"})
		return
	}

	if _, err := h.users.GetUserByID(c.Request.Context(), req.MemberID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}

	if err := h.groups.AddMember(c.Request.Context(), req.GroupID, req.MemberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "member added"})
}

// ListGroups returns the groups that include the caller.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID := c.GetInt("userID")
	groups, err := h.groups.ListGroupsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load groups"})
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}

	c.JSON(http.StatusOK, groups)
}

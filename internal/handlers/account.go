package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-backend/internal/auth"
	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
)

// AccountHandler manages registration, login and profile endpoints.
type AccountHandler struct {
	users    repositories.UserRepository
	verifier *auth.Verifier
}

// NewAccountHandler builds an AccountHandler.
func NewAccountHandler(users repositories.UserRepository, verifier *auth.Verifier) *AccountHandler {
	return &AccountHandler{users: users, verifier: verifier}
}

// Register creates an account. The display name starts as the username.
func (h *AccountHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	if _, err := h.users.CreateUser(c.Request.Context(), req.Username, hash); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "user registered successfully"})
}

// Login checks credentials and issues a bearer token.
func (h *AccountHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" form:"username" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "incorrect username or password"})
		return
	}

	token, err := h.verifier.Issue(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// Me returns the authenticated user's profile.
func (h *AccountHandler) Me(c *gin.Context) {
	user := c.MustGet("user").(models.User)
	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"bio":          user.Bio,
		"avatar":       user.Avatar,
	})
}

// UpdateProfile overwrites the mutable profile fields.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		DisplayName string `json:"display_name" binding:"required"`
		Bio         string `json:"bio"`
		Avatar      string `json:"avatar"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if err := h.users.UpdateProfile(c.Request.Context(), userID, req.DisplayName, req.Bio, req.Avatar); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "profile updated"})
}

// SearchUsers matches usernames by substring, excluding the caller.
func (h *AccountHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
		return
	}

	userID := c.GetInt("userID")
	users, err := h.users.SearchUsers(c.Request.Context(), query, userID, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	if users == nil {
		users = []models.UserSummary{}
	}

	c.JSON(http.StatusOK, users)
}

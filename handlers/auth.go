package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MRaysa/AI-chatbot-server/middleware"
	"github.com/MRaysa/AI-chatbot-server/models"
	"github.com/MRaysa/AI-chatbot-server/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type verifyTokenRequest struct {
	IDToken string `json:"idToken"`
}

// VerifyToken signs a user in (or up) from a Firebase ID token.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	var req verifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		BadRequest(c, "ID token is required")
		return
	}

	user, err := h.auth.VerifyAndSyncUser(c.Request.Context(), req.IDToken)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, "Authentication successful", gin.H{"user": userJSON(user, false)})
}

// GetCurrentUser returns the authenticated user's record.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.auth.GetUserByUID(c.Request.Context(), authUser.UID)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, "User retrieved successfully", gin.H{"user": userJSON(user, true)})
}

// SignOut exists for symmetry; Firebase sign-out happens client-side.
func (h *AuthHandler) SignOut(c *gin.Context) {
	Success(c, "Signed out successfully", nil)
}

func userJSON(user *models.User, withTimestamps bool) gin.H {
	out := gin.H{
		"uid":         user.UID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"photoURL":    user.PhotoURL,
		"provider":    user.Provider,
	}
	if withTimestamps {
		out["createdAt"] = user.CreatedAt
		out["lastLoginAt"] = user.LastLoginAt
	}
	return out
}

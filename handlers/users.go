package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MRaysa/AI-chatbot-server/middleware"
	"github.com/MRaysa/AI-chatbot-server/services"
)

type UserHandler struct {
	auth *services.AuthService
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// GetProfile returns the caller's profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	record, err := h.auth.GetUserByUID(c.Request.Context(), user.UID)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, "Profile retrieved successfully", gin.H{"user": userJSON(record, true)})
}

// UpdateProfile changes the display name and/or avatar URL.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		Unauthorized(c, "User not authenticated")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.auth.UpdateProfile(c.Request.Context(), user.UID, req.DisplayName, req.PhotoURL)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, "Profile updated successfully", gin.H{"user": userJSON(record, false)})
}

package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/models"
	"github.com/enlapet/backend/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type updateProfileRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

// UpdateMe updates the current user's profile fields. Only fields present in
// the body are changed.
// PUT /api/v1/users/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name_cannot_be_empty"})
			return
		}
		updates["name"] = *req.Name
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if len(updates) > 0 {
		if err := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			logger.ErrorWithFields("Profile update failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile_update_failed"})
			return
		}
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		logger.ErrorWithFields("Profile reload failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile_update_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UploadProfilePicture uploads a new avatar for the current user
// POST /api/v1/users/me/profile-picture
func (h *Handlers) UploadProfilePicture(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	url, ok := h.uploadImage(c, "profile-pictures")
	if !ok {
		return
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).
		Update("profile_picture_url", url).Error; err != nil {
		logger.ErrorWithFields("Profile picture update failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile_picture_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile_picture_url": url})
}

// uploadImage reads the multipart "image" field and stores it under prefix.
// On failure it writes the error response and returns ok=false.
func (h *Handlers) uploadImage(c *gin.Context, prefix string) (string, bool) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_required"})
		return "", false
	}
	defer file.Close()

	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage_unavailable"})
		return "", false
	}

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), filepath.Ext(header.Filename))
	url, err := h.storage.Upload(c.Request.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		logger.ErrorWithFields("Image upload failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed"})
		return "", false
	}
	return url, true
}

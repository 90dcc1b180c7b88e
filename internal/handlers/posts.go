package handlers

import (
	"errors"
	"net/http"

	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/metrics"
	"github.com/enlapet/backend/internal/models"
	"github.com/enlapet/backend/internal/social"
	"github.com/enlapet/backend/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreatePost uploads a photo and creates a post, authored either by the
// user themselves or by one of their pets
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	caption := c.PostForm("caption")
	authorID := c.DefaultPostForm("author_id", userID)
	authorType := models.ProfileType(c.DefaultPostForm("author_type", string(models.ProfileTypeUser)))
	if !models.ValidProfileType(string(authorType)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_author_type"})
		return
	}

	// A pet author must belong to the uploading user
	if authorType == models.ProfileTypePet {
		var pet models.Pet
		if err := h.db.First(&pet, "id = ?", authorID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "pet_not_found"})
			return
		}
		if pet.OwnerID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not_pet_owner"})
			return
		}
	} else if authorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot_post_as_other_user"})
		return
	}

	imageURL, ok := h.uploadImage(c, "posts")
	if !ok {
		return
	}

	post := models.Post{
		AuthorID:   authorID,
		AuthorType: authorType,
		ImageURL:   imageURL,
		Caption:    caption,
	}
	if err := h.db.Create(&post).Error; err != nil {
		logger.ErrorWithFields("Post creation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "post_creation_failed"})
		return
	}

	metrics.GetApplication().PostsCreated.WithLabelValues(string(authorType)).Inc()
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// GetPost returns a single post
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	var post models.Post
	if err := h.db.First(&post, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return
		}
		logger.ErrorWithFields("Post lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "post_lookup_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// LikePost likes a post for the current user. Liking twice is a no-op.
// POST /api/v1/posts/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := h.engagement.LikePost(c.Request.Context(), userID, c.Param("id"))
	switch {
	case errors.Is(err, social.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
	case err != nil:
		logger.ErrorWithFields("Like failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "like_failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "post liked"})
	}
}

// UnlikePost removes the current user's like. Unliking an unliked post is a
// no-op.
// DELETE /api/v1/posts/:id/unlike
func (h *Handlers) UnlikePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.engagement.UnlikePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		logger.ErrorWithFields("Unlike failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unlike_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post unliked"})
}

type likeStatusesRequest struct {
	PostIDs []string `json:"post_ids" binding:"required"`
}

// GetLikeStatuses returns liked state for a batch of posts
// POST /api/v1/posts/like-statuses
func (h *Handlers) GetLikeStatuses(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req likeStatusesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post_ids_required"})
		return
	}

	statuses, err := h.engagement.LikeStatuses(c.Request.Context(), userID, req.PostIDs)
	if err != nil {
		logger.ErrorWithFields("Like statuses lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "like_statuses_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// GetSaveStatuses returns saved state for a batch of posts
// POST /api/v1/posts/save-statuses
func (h *Handlers) GetSaveStatuses(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req likeStatusesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post_ids_required"})
		return
	}

	statuses, err := h.engagement.SaveStatuses(c.Request.Context(), userID, req.PostIDs)
	if err != nil {
		logger.ErrorWithFields("Save statuses lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_statuses_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/social"
	"github.com/enlapet/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// SavePost bookmarks a post for the current user. Saving twice is a no-op.
// POST /api/v1/posts/:id/save
func (h *Handlers) SavePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := h.engagement.SavePost(c.Request.Context(), userID, c.Param("id"))
	switch {
	case errors.Is(err, social.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
	case err != nil:
		logger.ErrorWithFields("Save failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"saved": true})
	}
}

// UnsavePost removes the bookmark for the current user
// DELETE /api/v1/posts/:id/save
func (h *Handlers) UnsavePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.engagement.UnsavePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		logger.ErrorWithFields("Unsave failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unsave_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": false})
}

// GetSavedPosts returns the current user's bookmarked posts
// GET /api/v1/users/me/saved
func (h *Handlers) GetSavedPosts(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ClampPageSize(util.ParseInt(c.Query("limit"), 20), 20, 100)
	offset := util.ParseInt(c.Query("offset"), 0)

	posts, err := h.engagement.ListSavedPosts(c.Request.Context(), userID, limit, offset)
	if err != nil {
		logger.ErrorWithFields("Saved posts lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saved_posts_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"meta":  gin.H{"limit": limit, "offset": offset, "count": len(posts)},
	})
}

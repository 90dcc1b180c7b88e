package handlers

import (
	"errors"
	"net/http"

	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/social"
	"github.com/enlapet/backend/internal/util"
	"github.com/gin-gonic/gin"
)

type createCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreateComment adds a comment to a post
// POST /api/v1/posts/:id/comment
func (h *Handlers) CreateComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text_required"})
		return
	}

	comment, err := h.engagement.AddComment(c.Request.Context(), userID, c.Param("id"), req.Text)
	switch {
	case errors.Is(err, social.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": "text_required"})
	case errors.Is(err, social.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
	case err != nil:
		logger.ErrorWithFields("Comment creation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "comment_failed"})
	default:
		c.JSON(http.StatusCreated, gin.H{"comment": comment})
	}
}

// GetComments returns a post's comments, newest first
// GET /api/v1/posts/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	limit := util.ClampPageSize(util.ParseInt(c.Query("limit"), 20), 20, 100)
	offset := util.ParseInt(c.Query("offset"), 0)

	comments, err := h.engagement.ListComments(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		logger.ErrorWithFields("Comments lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "comments_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"meta":     gin.H{"limit": limit, "offset": offset, "count": len(comments)},
	})
}

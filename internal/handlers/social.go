package handlers

import (
	"errors"
	"net/http"

	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/models"
	"github.com/enlapet/backend/internal/social"
	"github.com/enlapet/backend/internal/telemetry"
	"github.com/enlapet/backend/internal/util"
	"github.com/gin-gonic/gin"
)

type followRequest struct {
	ProfileType string `json:"profile_type"`
}

// targetTypeFrom reads the profile kind from the request body. The field is
// required: a missing or unknown kind is invalid input, never a silent
// default, because the kind decides which table's counters move.
func targetTypeFrom(c *gin.Context) (models.ProfileType, bool) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProfileType == "" {
		util.RespondValidationError(c, "profile_type", "is required")
		return "", false
	}
	if !models.ValidProfileType(req.ProfileType) {
		util.RespondValidationError(c, "profile_type", "must be user or pet")
		return "", false
	}
	return models.ProfileType(req.ProfileType), true
}

// FollowProfile makes the current user follow the profile
// POST /api/v1/profiles/:id/follow
func (h *Handlers) FollowProfile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	targetType, ok := targetTypeFrom(c)
	if !ok {
		return
	}

	ctx, span := h.spans.TraceFollow(c.Request.Context(), "follow", string(targetType))
	err := h.graph.Follow(ctx, userID, targetID, targetType)
	telemetry.EndSpan(span, err)
	switch {
	case errors.Is(err, social.ErrSelfFollow):
		util.RespondInvalidOperation(c, "cannot follow your own profile")
	case errors.Is(err, social.ErrProfileNotFound):
		util.RespondNotFound(c, "profile")
	case err != nil:
		logger.ErrorWithFields("Follow failed", err)
		util.RespondInternalError(c, "failed to follow profile")
	default:
		c.JSON(http.StatusOK, gin.H{"message": "profile followed"})
	}
}

// UnfollowProfile removes the current user's follow of the profile
// DELETE /api/v1/profiles/:id/unfollow
func (h *Handlers) UnfollowProfile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	targetType, ok := targetTypeFrom(c)
	if !ok {
		return
	}

	ctx, span := h.spans.TraceFollow(c.Request.Context(), "unfollow", string(targetType))
	err := h.graph.Unfollow(ctx, userID, targetID)
	telemetry.EndSpan(span, err)
	if err != nil {
		logger.ErrorWithFields("Unfollow failed", err)
		util.RespondInternalError(c, "failed to unfollow profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile unfollowed"})
}

// GetFollowStatus reports whether the current user follows the profile
// GET /api/v1/profiles/:id/follow-status
func (h *Handlers) GetFollowStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	following, err := h.graph.FollowStatus(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		logger.ErrorWithFields("Follow status lookup failed", err)
		util.RespondInternalError(c, "failed to check follow status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_following": following})
}

// GetFollowers lists the profile's followers, newest first
// GET /api/v1/profiles/:id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	limit := util.ClampPageSize(util.ParseInt(c.Query("limit"), 20), 20, 100)
	offset := util.ParseInt(c.Query("offset"), 0)

	followers, err := h.graph.Followers(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		logger.ErrorWithFields("Followers lookup failed", err)
		util.RespondInternalError(c, "failed to list followers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"followers": followers,
		"meta":      gin.H{"limit": limit, "offset": offset, "count": len(followers)},
	})
}

// GetFollowing lists who the profile follows, newest first
// GET /api/v1/profiles/:id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	limit := util.ClampPageSize(util.ParseInt(c.Query("limit"), 20), 20, 100)
	offset := util.ParseInt(c.Query("offset"), 0)

	following, err := h.graph.Following(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		logger.ErrorWithFields("Following lookup failed", err)
		util.RespondInternalError(c, "failed to list following")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following": following,
		"meta":      gin.H{"limit": limit, "offset": offset, "count": len(following)},
	})
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/enlapet/backend/internal/feed"
	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/middleware"
	"github.com/enlapet/backend/internal/telemetry"
	"github.com/enlapet/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetFeed returns the next page of the viewer's home feed
// GET /api/v1/feed?cursor=<postId>&page_size=
func (h *Handlers) GetFeed(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	cursor := c.Query("cursor")
	pageSize := util.ClampPageSize(util.ParseInt(c.Query("page_size"), feed.DefaultPageSize), feed.DefaultPageSize, feed.MaxPageSize)

	start := time.Now()
	ctx, span := h.spans.TraceFeed(c.Request.Context(), userID, pageSize)
	page, err := h.feed.Feed(ctx, userID, cursor, pageSize)
	telemetry.EndSpan(span, err)
	if err != nil {
		if errors.Is(err, feed.ErrBadCursor) {
			util.RespondBadRequest(c, "cursor does not name a known post")
			return
		}
		logger.ErrorWithFields("Feed assembly failed", err)
		util.RespondInternalError(c, "failed to assemble feed")
		return
	}
	middleware.RecordFeedGeneration("home", time.Since(start))

	// Exhausted feeds report an explicit null cursor
	var nextCursor interface{}
	if page.NextCursor != "" {
		nextCursor = page.NextCursor
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":       page.Posts,
		"next_cursor": nextCursor,
	})
}

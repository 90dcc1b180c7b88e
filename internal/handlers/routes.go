package handlers

import (
	"net/http"

	"github.com/enlapet/backend/internal/database"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes attaches all API routes to the router. authMW guards the
// endpoints that need an authenticated user.
func (h *Handlers) RegisterRoutes(r *gin.Engine, authMW gin.HandlerFunc) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	v1.POST("/auth/register", h.Register)
	v1.POST("/auth/login", h.Login)

	authed := v1.Group("")
	authed.Use(authMW)
	{
		authed.GET("/users/me", h.GetMe)
		authed.PUT("/users/me", h.UpdateMe)
		authed.POST("/users/me/profile-picture", h.UploadProfilePicture)
		authed.GET("/users/me/saved", h.GetSavedPosts)
		authed.GET("/users/me/pets", h.GetMyPets)

		authed.GET("/feed", h.GetFeed)

		authed.POST("/posts", h.CreatePost)
		authed.GET("/posts/:id", h.GetPost)
		authed.POST("/posts/like-statuses", h.GetLikeStatuses)
		authed.POST("/posts/save-statuses", h.GetSaveStatuses)
		authed.POST("/posts/:id/like", h.LikePost)
		authed.DELETE("/posts/:id/unlike", h.UnlikePost)
		authed.POST("/posts/:id/save", h.SavePost)
		authed.DELETE("/posts/:id/save", h.UnsavePost)
		authed.POST("/posts/:id/comment", h.CreateComment)
		authed.GET("/posts/:id/comments", h.GetComments)

		authed.POST("/profiles/:id/follow", h.FollowProfile)
		authed.DELETE("/profiles/:id/unfollow", h.UnfollowProfile)
		authed.GET("/profiles/:id/follow-status", h.GetFollowStatus)
		authed.GET("/profiles/:id/followers", h.GetFollowers)
		authed.GET("/profiles/:id/following", h.GetFollowing)

		authed.POST("/pets", h.CreatePet)
		authed.GET("/pets/:id", h.GetPet)
		authed.POST("/pets/:id/picture", h.UploadPetPicture)

		authed.GET("/notifications", h.GetNotifications)
		authed.GET("/notifications/counts", h.GetNotificationCounts)
		authed.POST("/notifications/read", h.MarkNotificationsRead)
	}
}

// Health reports service and database health
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	if err := database.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

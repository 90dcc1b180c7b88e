package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ApplicationMetrics tracks domain-specific metrics (social engagement, feed)
type ApplicationMetrics struct {
	// Social engagement
	FollowsTotal   prometheus.CounterVec
	UnfollowsTotal prometheus.CounterVec
	LikesTotal     prometheus.CounterVec
	CommentsTotal  prometheus.CounterVec
	PostsCreated   prometheus.CounterVec

	// Feed
	FeedDiscoveryFills prometheus.CounterVec

	// Notifications
	NotificationsEmitted prometheus.CounterVec
}

var (
	appInstance *ApplicationMetrics
	appOnce     sync.Once
)

// InitializeApplicationMetrics creates and registers all application metrics
func InitializeApplicationMetrics() *ApplicationMetrics {
	appOnce.Do(func() {
		appInstance = &ApplicationMetrics{
			// Social metrics
			FollowsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "follows_total",
					Help: "Total number of follows",
				},
				[]string{"target_type"},
			),
			UnfollowsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "unfollows_total",
					Help: "Total number of unfollows",
				},
				[]string{"target_type"},
			),
			LikesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "likes_total",
					Help: "Total number of likes",
				},
				[]string{},
			),
			CommentsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "comments_total",
					Help: "Total number of comments",
				},
				[]string{},
			),
			PostsCreated: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "posts_created_total",
					Help: "Total number of posts created",
				},
				[]string{"author_type"},
			),

			// Feed metrics
			FeedDiscoveryFills: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_discovery_fills_total",
					Help: "Feed pages topped up from the discovery source",
				},
				[]string{},
			),

			// Notification metrics
			NotificationsEmitted: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_emitted_total",
					Help: "Total notifications emitted",
				},
				[]string{"type"},
			),
		}
	})
	return appInstance
}

// GetApplication returns the global application metrics instance
func GetApplication() *ApplicationMetrics {
	if appInstance == nil {
		return InitializeApplicationMetrics()
	}
	return appInstance
}

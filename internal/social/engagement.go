package social

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/enlapet/backend/internal/database"
	"github.com/enlapet/backend/internal/metrics"
	"github.com/enlapet/backend/internal/models"
	"github.com/enlapet/backend/internal/notifications"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// statusLookupConcurrency caps how many status chunks are queried at once,
// so a huge id batch cannot monopolize the connection pool.
const statusLookupConcurrency = 4

// Engagement maintains per-post like/save state and the likes/comments
// counters. Like and save are idempotent toggles: the relation row is the
// sole source of truth, and a counter only moves in the same transaction
// that created or deleted the row.
type Engagement struct {
	db      *gorm.DB
	emitter *notifications.Emitter
}

// NewEngagement creates an engagement manager.
func NewEngagement(db *gorm.DB, emitter *notifications.Emitter) *Engagement {
	return &Engagement{db: db, emitter: emitter}
}

// LikePost records that actor likes the post. Liking twice never
// double-counts: the conditional insert is a no-op when the relation
// already exists and the counter stays put.
func (e *Engagement) LikePost(ctx context.Context, actorID, postID string) error {
	var (
		recipientID string
		created     bool
	)

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "author_id", "author_type").First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		like := models.Like{PostID: postID, UserID: actorID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true

		recipient, err := recipientFor(tx, post.AuthorID, post.AuthorType)
		if err != nil {
			return err
		}
		recipientID = recipient

		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		return err
	}

	if created {
		metrics.GetApplication().LikesTotal.WithLabelValues().Inc()
		e.emitter.Emit(notifications.Event{
			RecipientID: recipientID,
			ActorID:     actorID,
			Type:        models.NotificationNewLike,
			EntityID:    postID,
			EntityType:  "post",
		})
	}
	return nil
}

// UnlikePost removes the actor's like. Unliking a post that was never liked
// is a no-op with no decrement, so likes_count never goes negative.
func (e *Engagement) UnlikePost(ctx context.Context, actorID, postID string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, actorID).
			Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		return tx.Model(&models.Post{}).
			Where("id = ? AND likes_count > 0", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
	})
}

// SavePost bookmarks the post for the actor. Saves keep no counter; the
// relation row alone carries the state.
func (e *Engagement) SavePost(ctx context.Context, actorID, postID string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		saved := models.SavedPost{UserID: actorID, PostID: postID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&saved).Error
	})
}

// UnsavePost removes the bookmark; absent bookmarks are a no-op.
func (e *Engagement) UnsavePost(ctx context.Context, actorID, postID string) error {
	return e.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", actorID, postID).
		Delete(&models.SavedPost{}).Error
}

// LikeStatuses returns postID→liked for the actor across postIDs. The id
// list is sharded into 30-element chunks and the chunks are queried
// concurrently before merging.
func (e *Engagement) LikeStatuses(ctx context.Context, actorID string, postIDs []string) (map[string]bool, error) {
	return e.relationStatuses(ctx, postIDs, func(chunk []string) ([]string, error) {
		var found []string
		err := e.db.WithContext(ctx).
			Model(&models.Like{}).
			Where("user_id = ? AND post_id IN ?", actorID, chunk).
			Pluck("post_id", &found).Error
		return found, err
	})
}

// SaveStatuses returns postID→saved for the actor across postIDs.
func (e *Engagement) SaveStatuses(ctx context.Context, actorID string, postIDs []string) (map[string]bool, error) {
	return e.relationStatuses(ctx, postIDs, func(chunk []string) ([]string, error) {
		var found []string
		err := e.db.WithContext(ctx).
			Model(&models.SavedPost{}).
			Where("user_id = ? AND post_id IN ?", actorID, chunk).
			Pluck("post_id", &found).Error
		return found, err
	})
}

// relationStatuses fans the chunked lookups out with bounded concurrency and
// folds the hits back into a full map with every requested id present.
func (e *Engagement) relationStatuses(ctx context.Context, postIDs []string, lookup func(chunk []string) ([]string, error)) (map[string]bool, error) {
	statuses := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		statuses[id] = false
	}

	chunks := database.ChunkIDs(postIDs, database.MaxInOperands)
	if len(chunks) == 0 {
		return statuses, nil
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(statusLookupConcurrency)
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			found, err := lookup(chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, id := range found {
				statuses[id] = true
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}

// AddComment appends a comment to the post and bumps comments_count in the
// same transaction. Comments are append-only; there is no edit or delete.
func (e *Engagement) AddComment(ctx context.Context, actorID, postID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	var (
		comment     models.Comment
		recipientID string
	)

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "author_id", "author_type").First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		recipient, err := recipientFor(tx, post.AuthorID, post.AuthorType)
		if err != nil {
			return err
		}
		recipientID = recipient

		comment = models.Comment{PostID: postID, UserID: actorID, Text: text}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.GetApplication().CommentsTotal.WithLabelValues().Inc()
	e.emitter.Emit(notifications.Event{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        models.NotificationNewComment,
		EntityID:    postID,
		EntityType:  "post",
	})

	// Load the commenter for the response shape
	if err := e.db.WithContext(ctx).Preload("User").First(&comment, "id = ?", comment.ID).Error; err == nil {
		comment.User.PasswordHash = nil
	}
	return &comment, nil
}

// ListComments returns a page of comments for the post, newest first.
func (e *Engagement) ListComments(ctx context.Context, postID string, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	err := e.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

// ListSavedPosts returns the actor's bookmarked posts, most recently saved
// first.
func (e *Engagement) ListSavedPosts(ctx context.Context, actorID string, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := e.db.WithContext(ctx).
		Joins("JOIN saved_posts ON saved_posts.post_id = posts.id").
		Where("saved_posts.user_id = ?", actorID).
		Order("saved_posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

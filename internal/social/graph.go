package social

import (
	"context"
	"errors"

	"github.com/enlapet/backend/internal/metrics"
	"github.com/enlapet/backend/internal/models"
	"github.com/enlapet/backend/internal/notifications"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Graph maintains the directed follow relationship between profiles and the
// denormalized follower/following counters on both ends.
//
// An edge is stored as a mirrored pair: a Follow row in the actor's following
// list and a Follower row in the target's follower list. The pair is created
// and deleted inside one transaction, so the two lists can never disagree.
type Graph struct {
	db      *gorm.DB
	emitter *notifications.Emitter
}

// NewGraph creates a follow graph manager.
func NewGraph(db *gorm.DB, emitter *notifications.Emitter) *Graph {
	return &Graph{db: db, emitter: emitter}
}

// Follow creates the edge actor→target. Following a profile that is already
// followed is a no-op: the conditional insert detects the existing edge and
// no counter moves. Self-follow is rejected before any write.
func (g *Graph) Follow(ctx context.Context, actorID, targetID string, targetType models.ProfileType) error {
	if actorID == targetID {
		return ErrSelfFollow
	}

	var (
		recipientID string
		created     bool
	)

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipient, err := recipientFor(tx, targetID, targetType)
		if err != nil {
			return err
		}
		recipientID = recipient

		edge := models.Follow{FollowerID: actorID, TargetID: targetID, TargetType: targetType}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Edge already exists, leave the counters alone.
			return nil
		}
		created = true

		mirror := models.Follower{ProfileID: targetID, ProfileType: targetType, FollowerID: actorID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mirror).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", actorID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
		return incrementFollowers(tx, targetID, targetType, +1)
	})
	if err != nil {
		return err
	}

	if created {
		metrics.GetApplication().FollowsTotal.WithLabelValues(string(targetType)).Inc()
		g.emitter.Emit(notifications.Event{
			RecipientID: recipientID,
			ActorID:     actorID,
			Type:        models.NotificationNewFollower,
			EntityID:    targetID,
			EntityType:  string(targetType),
		})
	}
	return nil
}

// Unfollow removes the edge actor→target. Unfollowing a profile that was
// never followed is a no-op; the counters only move when an edge row was
// actually deleted, so they can never go negative. The profile kind is read
// from the stored edge, never from the caller, so the decrement always lands
// on the table the original follow incremented.
func (g *Graph) Unfollow(ctx context.Context, actorID, targetID string) error {
	var (
		removed bool
		kind    models.ProfileType
	)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var edge models.Follow
		err := tx.Select("id", "target_type").
			First(&edge, "follower_id = ? AND target_id = ?", actorID, targetID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		kind = edge.TargetType

		if err := tx.Delete(&models.Follow{}, "id = ?", edge.ID).Error; err != nil {
			return err
		}
		removed = true

		if err := tx.Where("profile_id = ? AND follower_id = ?", targetID, actorID).
			Delete(&models.Follower{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("id = ? AND following_count > 0", actorID).
			UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
			return err
		}
		return incrementFollowers(tx, targetID, kind, -1)
	})
	if err != nil {
		return err
	}

	if removed {
		metrics.GetApplication().UnfollowsTotal.WithLabelValues(string(kind)).Inc()
	}
	return nil
}

// FollowStatus reports whether actor currently follows target. Read-only.
func (g *Graph) FollowStatus(ctx context.Context, actorID, targetID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND target_id = ?", actorID, targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowingIDs returns every profile id the user follows.
func (g *Graph) FollowingIDs(ctx context.Context, actorID string) ([]string, error) {
	var ids []string
	err := g.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", actorID).
		Pluck("target_id", &ids).Error
	return ids, err
}

// Following returns a page of follow edges for the actor, newest first.
func (g *Graph) Following(ctx context.Context, actorID string, limit, offset int) ([]models.Follow, error) {
	var edges []models.Follow
	err := g.db.WithContext(ctx).
		Where("follower_id = ?", actorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&edges).Error
	return edges, err
}

// Followers returns a page of follower entries for the profile, newest first.
func (g *Graph) Followers(ctx context.Context, profileID string, limit, offset int) ([]models.Follower, error) {
	var entries []models.Follower
	err := g.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

// incrementFollowers adjusts the followers_count on whichever table the
// profile kind lives in. Decrements are floor-guarded at zero.
func incrementFollowers(tx *gorm.DB, profileID string, kind models.ProfileType, delta int) error {
	var model interface{}
	switch kind {
	case models.ProfileTypeUser:
		model = &models.User{}
	case models.ProfileTypePet:
		model = &models.Pet{}
	default:
		return ErrInvalidProfileType
	}

	q := tx.Model(model)
	if delta > 0 {
		q = q.Where("id = ?", profileID)
		return q.UpdateColumn("followers_count", gorm.Expr("followers_count + ?", delta)).Error
	}
	q = q.Where("id = ? AND followers_count > 0", profileID)
	return q.UpdateColumn("followers_count", gorm.Expr("followers_count - ?", -delta)).Error
}

// IsNotFound reports whether err means a referenced entity was missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

// Package social implements the follow graph and post engagement logic.
//
// Every denormalized counter in the data model (followers_count,
// following_count, likes_count, comments_count) is mutated inside the same
// database transaction as the relation row it accounts for. Relation rows
// carry composite unique indexes, so a conditional insert (ON CONFLICT DO
// NOTHING) tells us whether the state actually changed and therefore whether
// the counter moves. That is the whole consistency protocol: state change and
// counter change commit or abort together, and repeated calls are no-ops.
package social

import (
	"errors"

	"github.com/enlapet/backend/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrSelfFollow is returned when a user tries to follow their own profile.
	ErrSelfFollow = errors.New("cannot follow your own profile")

	// ErrProfileNotFound is returned when the referenced profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrPostNotFound is returned when the referenced post does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidProfileType is returned for a profile kind outside {user, pet}.
	ErrInvalidProfileType = errors.New("invalid profile type")

	// ErrEmptyComment is returned for a comment with no text.
	ErrEmptyComment = errors.New("comment text is required")
)

// recipientFor resolves the user who should receive notifications about a
// profile: a user profile receives its own, a pet's go to its owner.
func recipientFor(tx *gorm.DB, profileID string, kind models.ProfileType) (string, error) {
	switch kind {
	case models.ProfileTypeUser:
		var user models.User
		if err := tx.Select("id").First(&user, "id = ?", profileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrProfileNotFound
			}
			return "", err
		}
		return user.ID, nil
	case models.ProfileTypePet:
		var pet models.Pet
		if err := tx.Select("id", "owner_id").First(&pet, "id = ?", profileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrProfileNotFound
			}
			return "", err
		}
		return pet.OwnerID, nil
	default:
		return "", ErrInvalidProfileType
	}
}

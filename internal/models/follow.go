package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is the "actor follows target" half of the mirrored edge pair.
// It lives in the actor's following list. TargetType records whether the
// target is a user or a pet.
type Follow struct {
	ID         string      `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID string      `gorm:"not null;index;uniqueIndex:idx_follows_pair,priority:1" json:"follower_id"`
	TargetID   string      `gorm:"not null;uniqueIndex:idx_follows_pair,priority:2" json:"target_id"`
	TargetType ProfileType `gorm:"not null" json:"target_type"`

	CreatedAt time.Time `json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// Follower is the mirror half: it lives in the target's follower list.
// A Follow row exists iff the matching Follower row exists; both are
// written and deleted inside the same transaction.
type Follower struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	ProfileID   string      `gorm:"not null;index;uniqueIndex:idx_followers_pair,priority:1" json:"profile_id"`
	ProfileType ProfileType `gorm:"not null" json:"profile_type"`
	FollowerID  string      `gorm:"not null;uniqueIndex:idx_followers_pair,priority:2" json:"follower_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (f *Follower) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

func (Follower) TableName() string { return "followers" }

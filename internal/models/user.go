package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileType discriminates the two followable profile kinds.
type ProfileType string

const (
	ProfileTypeUser ProfileType = "user"
	ProfileTypePet  ProfileType = "pet"
)

// ValidProfileType reports whether s names a known profile kind.
func ValidProfileType(s string) bool {
	return s == string(ProfileTypeUser) || s == string(ProfileTypePet)
}

// User represents an EnlaPet account
type User struct {
	ID    string `gorm:"primaryKey;type:uuid" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Name  string `gorm:"not null" json:"name"`
	Bio   string `gorm:"type:text" json:"bio"`

	PasswordHash *string `gorm:"type:text" json:"-"`

	ProfilePictureURL string `json:"profile_picture_url"`

	// Denormalized social counters. Mutated only inside the same transaction
	// as the follow edge change they account for.
	FollowersCount int `gorm:"default:0" json:"followers_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Pet represents a pet profile. Pets are followable and postable; they are
// owned by a user and never follow anyone themselves.
type Pet struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID string `gorm:"not null;index" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Name    string `gorm:"not null" json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
	Bio     string `gorm:"type:text" json:"bio"`

	ProfilePictureURL string `json:"profile_picture_url"`

	FollowersCount int `gorm:"default:0" json:"followers_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Pet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// AuthorProjection is the slim author shape attached to feed items and
// comments in API responses.
type AuthorProjection struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

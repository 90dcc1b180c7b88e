package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a shared photo with a caption. AuthorType is stored
// reliably at write time so author lookups dispatch directly by kind.
type Post struct {
	ID         string      `gorm:"primaryKey;type:uuid" json:"id"`
	AuthorID   string      `gorm:"not null;index:idx_posts_author_created,priority:1" json:"author_id"`
	AuthorType ProfileType `gorm:"not null;default:user" json:"author_type"`

	ImageURL string `gorm:"not null" json:"image_url"`
	Caption  string `gorm:"type:text" json:"caption"`

	// Denormalized engagement counters, only ever mutated in the same
	// transaction as the like/comment row they count.
	LikesCount    int `gorm:"default:0" json:"likes_count"`
	CommentsCount int `gorm:"default:0" json:"comments_count"`

	CreatedAt time.Time      `gorm:"index:idx_posts_author_created,priority:2;index:idx_posts_created" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Like is an existence-as-state relation: one row per (user, post) pair.
// The unique index is what makes the like toggle idempotent.
type Like struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"not null;uniqueIndex:idx_likes_post_user,priority:1" json:"post_id"`
	UserID string `gorm:"not null;uniqueIndex:idx_likes_post_user,priority:2;index" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// SavedPost bookmarks a post for a user. No counter is kept for saves;
// the relation row alone is the state.
type SavedPost struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;uniqueIndex:idx_saved_user_post,priority:1" json:"user_id"`
	PostID string `gorm:"not null;uniqueIndex:idx_saved_user_post,priority:2;index" json:"post_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *SavedPost) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// Comment is an append-only comment on a post.
type Comment struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"not null;index:idx_comments_post_created,priority:1" json:"post_id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Text string `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `gorm:"index:idx_comments_post_created,priority:2" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

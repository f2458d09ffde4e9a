package models

import (
	"time"

	"gorm.io/gorm"
)

// AuthorFollow subscribes a user to everything a contributor publishes
type AuthorFollow struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string `gorm:"not null;index:idx_author_follow,unique;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AuthorID string `gorm:"not null;index:idx_author_follow,unique" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// CategoryFollow subscribes a user to an editorial section
type CategoryFollow struct {
	ID         string   `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID     string   `gorm:"not null;index:idx_category_follow,unique;index" json:"user_id"`
	User       User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CategoryID string   `gorm:"not null;index:idx_category_follow,unique" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TagFollow subscribes a user to a topic
type TagFollow struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index:idx_tag_follow,unique;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TagID  string `gorm:"not null;index:idx_tag_follow,unique" json:"tag_id"`
	Tag    Tag    `gorm:"foreignKey:TagID" json:"tag,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// PostRead records that a user finished a post; feeds the read-history set
type PostRead struct {
	ID     string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string    `gorm:"not null;index:idx_post_read,unique;index" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID string    `gorm:"not null;index:idx_post_read,unique;index" json:"post_id"`
	Post   Post      `gorm:"foreignKey:PostID" json:"post,omitempty"`
	ReadAt time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (f *AuthorFollow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

func (f *CategoryFollow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

func (f *TagFollow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

func (r *PostRead) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	if r.ReadAt.IsZero() {
		r.ReadAt = time.Now().UTC()
	}
	return nil
}

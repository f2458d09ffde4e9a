package models

import (
	"time"

	"gorm.io/gorm"
)

// Impression/click sources
const (
	SourceFeed     = "feed"
	SourceTrending = "trending"
	SourceSearch   = "search"
)

// FeedImpression records that a post was served to a user in a ranked page.
// One row per post per serve, for CTR analytics granularity.
type FeedImpression struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string `gorm:"index:idx_impression_user" json:"user_id"`
	PostID   string `gorm:"not null;index:idx_impression_post" json:"post_id"`
	Source   string `gorm:"index" json:"source,omitempty"` // "feed", "trending", "search"
	Position int    `gorm:"default:0" json:"position"`     // 0-based slot within the served page

	ServedAt  time.Time `gorm:"index" json:"served_at"`
	CreatedAt time.Time `json:"created_at"`
}

// PostClick records that a user opened a post from a surfaced placement
type PostClick struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"index:idx_click_user" json:"user_id"`
	PostID string `gorm:"not null;index:idx_click_post" json:"post_id"`
	Source string `gorm:"index" json:"source,omitempty"`

	ClickedAt time.Time `gorm:"index" json:"clicked_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *FeedImpression) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = generateUUID()
	}
	if i.ServedAt.IsZero() {
		i.ServedAt = time.Now().UTC()
	}
	return nil
}

func (p *PostClick) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.ClickedAt.IsZero() {
		p.ClickedAt = time.Now().UTC()
	}
	return nil
}

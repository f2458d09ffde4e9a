package models

import (
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Post status values
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// Words-per-minute assumed when deriving a post's reading time from its body
const readingWordsPerMinute = 200

// Category groups posts into a single editorial section
type Category struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is a free-form topic label attached to posts via post_tags
type Tag struct {
	ID   string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`
	Name string `gorm:"not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post is an article written by a contributor
type Post struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	CategoryID *string   `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Title   string `gorm:"not null" json:"title"`
	Slug    string `gorm:"uniqueIndex;not null" json:"slug"`
	Summary string `gorm:"type:text" json:"summary"`
	Body    string `gorm:"type:text" json:"body,omitempty"`

	Tags []Tag `gorm:"many2many:post_tags;" json:"tags,omitempty"`

	// Estimated minutes to read, derived from the body; null when bodyless
	ReadingTime *int `json:"reading_time,omitempty"`

	// Engagement counters, maintained on write paths
	ViewCount     int `gorm:"default:0" json:"view_count"`
	ReactionCount int `gorm:"default:0" json:"reaction_count"`
	CommentCount  int `gorm:"default:0" json:"comment_count"`

	Status      string     `gorm:"default:draft;index" json:"status"` // draft, published, archived
	PublishedAt *time.Time `gorm:"index" json:"published_at,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostTag joins posts to tags
type PostTag struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PostID string `gorm:"not null;index:idx_post_tag,unique" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"post,omitempty"`
	TagID  string `gorm:"not null;index:idx_post_tag,unique;index" json:"tag_id"`
	Tag    Tag    `gorm:"foreignKey:TagID" json:"tag,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = generateUUID()
	}
	return nil
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

// BeforeSave derives ReadingTime from the body word count (~200 wpm).
// Bodyless posts keep whatever value is already set, usually null.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(p.Body) != "" {
		minutes := int(math.Ceil(float64(len(strings.Fields(p.Body))) / readingWordsPerMinute))
		if minutes < 1 {
			minutes = 1
		}
		p.ReadingTime = &minutes
	}
	return nil
}

func (pt *PostTag) BeforeCreate(tx *gorm.DB) error {
	if pt.ID == "" {
		pt.ID = generateUUID()
	}
	return nil
}

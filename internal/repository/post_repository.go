package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell/backend/internal/models"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrPostNotFound     = errors.New("post not found")
	ErrNotPostAuthor    = errors.New("user is not the post author")
	ErrAlreadyPublished = errors.New("post is not a draft")
	ErrCategoryNotFound = errors.New("category not found")
)

// BrowseOptions narrows the published-post listing
type BrowseOptions struct {
	Category string
	Author   string
	Tags     []string
	Page     int
	Limit    int
}

// PostRepository handles all database operations for posts and taxonomy
type PostRepository interface {
	// Post CRUD
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	PublishPost(ctx context.Context, postID, authorID string) (*models.Post, error)
	DeletePost(ctx context.Context, postID, authorID string) error

	// Post queries
	BrowsePosts(ctx context.Context, opts BrowseOptions) ([]*models.Post, int64, error)
	SearchPostsFallback(ctx context.Context, query string, limit int) ([]*models.Post, error)

	// Counters
	IncrementViewCount(ctx context.Context, postID string) error

	// Taxonomy
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListTags(ctx context.Context) ([]*models.Tag, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetOrCreateTags(ctx context.Context, slugs []string) ([]models.Tag, error)
}

// postRepository implements PostRepository interface
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// CreatePost creates a new post; attached tags get join rows in the same
// insert
func (r *postRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post == nil || post.Title == "" {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Create(post).Error
}

// GetPost gets a post by ID with author, category, and tags loaded
func (r *postRepository) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Where("id = ?", postID).
		First(&post).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}

	return &post, err
}

// GetPostBySlug gets a post by its URL slug
func (r *postRepository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Where("slug = ?", slug).
		First(&post).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}

	return &post, err
}

// PublishPost moves an author's draft to published, stamping published_at.
// Reading time is derived on save from the body.
func (r *postRepository) PublishPost(ctx context.Context, postID, authorID string) (*models.Post, error) {
	post, err := r.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != authorID {
		return nil, ErrNotPostAuthor
	}
	if post.Status != models.PostStatusDraft {
		return nil, ErrAlreadyPublished
	}

	now := time.Now().UTC()
	post.Status = models.PostStatusPublished
	post.PublishedAt = &now

	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return nil, err
	}

	return post, nil
}

// DeletePost soft deletes an author's own post
func (r *postRepository) DeletePost(ctx context.Context, postID, authorID string) error {
	post, err := r.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != authorID {
		return ErrNotPostAuthor
	}

	return r.db.WithContext(ctx).Delete(post).Error
}

// BrowsePosts lists published posts, newest first, with optional category,
// author, and tag-slug filters. Tag filtering matches posts carrying ANY of
// the given slugs.
func (r *postRepository) BrowsePosts(ctx context.Context, opts BrowseOptions) ([]*models.Post, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.status = ?", models.PostStatusPublished)

	if opts.Category != "" {
		query = query.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", opts.Category)
	}
	if opts.Author != "" {
		query = query.
			Joins("JOIN users ON users.id = posts.author_id").
			Where("users.username = ?", opts.Author)
	}
	if len(opts.Tags) > 0 {
		query = query.Where(
			"posts.id IN (SELECT post_tags.post_id FROM post_tags JOIN tags ON tags.id = post_tags.tag_id WHERE tags.slug = ANY(?))",
			pq.Array(opts.Tags),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (opts.Page - 1) * opts.Limit
	if offset < 0 {
		offset = 0
	}

	var posts []*models.Post
	err := query.
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Order("posts.published_at DESC").
		Limit(opts.Limit).
		Offset(offset).
		Find(&posts).Error

	return posts, total, err
}

// SearchPostsFallback is the Postgres-only search used when Elasticsearch is
// unavailable: case-insensitive match on title and summary, newest first
func (r *postRepository) SearchPostsFallback(ctx context.Context, query string, limit int) ([]*models.Post, error) {
	var posts []*models.Post

	searchPattern := "%" + query + "%"

	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Where("posts.status = ?", models.PostStatusPublished).
		Where("posts.title ILIKE ? OR posts.summary ILIKE ?", searchPattern, searchPattern).
		Order("posts.published_at DESC").
		Limit(limit).
		Find(&posts).Error

	return posts, err
}

// IncrementViewCount bumps the cached view counter in place
func (r *postRepository) IncrementViewCount(ctx context.Context, postID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// ListCategories lists every category, alphabetically
func (r *postRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

// ListTags lists every tag, alphabetically
func (r *postRepository) ListTags(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&tags).Error
	return tags, err
}

// GetCategoryBySlug gets a category by slug
func (r *postRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&category).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}

	return &category, err
}

// GetOrCreateTags resolves tag slugs to rows, creating any that are new
func (r *postRepository) GetOrCreateTags(ctx context.Context, slugs []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(slugs))

	for _, slug := range slugs {
		if slug == "" {
			continue
		}

		var tag models.Tag
		err := r.db.WithContext(ctx).
			Where("slug = ?", slug).
			FirstOrCreate(&tag, models.Tag{Slug: slug, Name: slug}).Error
		if err != nil {
			return nil, err
		}

		tags = append(tags, tag)
	}

	return tags, nil
}

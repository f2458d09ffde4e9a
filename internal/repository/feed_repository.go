package repository

import (
	"context"
	"time"

	"github.com/inkwellhq/inkwell/backend/internal/feed"
	"github.com/inkwellhq/inkwell/backend/internal/models"
	"gorm.io/gorm"
)

// FeedRepository answers the queries the ranking engine needs: the caller's
// preference sets, the candidate pool, and the trending window. It satisfies
// feed.DataSource.
type FeedRepository struct {
	db *gorm.DB
}

// NewFeedRepository creates a feed repository backed by gorm
func NewFeedRepository(db *gorm.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

var _ feed.DataSource = (*FeedRepository)(nil)

// FollowedAuthorIDs gets the ids of every author the user follows
func (r *FeedRepository) FollowedAuthorIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.AuthorFollow{}).
		Where("user_id = ?", userID).
		Pluck("author_id", &ids).Error
	return ids, err
}

// FollowedCategoryIDs gets the ids of every category the user follows
func (r *FeedRepository) FollowedCategoryIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.CategoryFollow{}).
		Where("user_id = ?", userID).
		Pluck("category_id", &ids).Error
	return ids, err
}

// FollowedTagIDs gets the ids of every tag the user follows
func (r *FeedRepository) FollowedTagIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.TagFollow{}).
		Where("user_id = ?", userID).
		Pluck("tag_id", &ids).Error
	return ids, err
}

// ReadPostIDs gets the ids of every post the user has marked read
func (r *FeedRepository) ReadPostIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.PostRead{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error
	return ids, err
}

// FetchCandidates returns the newest published posts matching the query
// filters plus the uncapped count behind the same filters. Category and
// author narrow the pool in SQL; tag and read-history filtering happen in
// the engine.
func (r *FeedRepository) FetchCandidates(ctx context.Context, q feed.CandidateQuery) ([]feed.Candidate, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.status = ?", models.PostStatusPublished)

	if q.Category != "" {
		query = query.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", q.Category)
	}
	if q.Author != "" {
		query = query.
			Joins("JOIN users ON users.id = posts.author_id").
			Where("users.username = ?", q.Author)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := query.
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Order("posts.published_at DESC").
		Limit(q.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return toCandidates(posts), total, nil
}

// FetchTrending returns published posts newer than the cutoff, ordered by
// raw engagement counters
func (r *FeedRepository) FetchTrending(ctx context.Context, since time.Time, limit int) ([]feed.Candidate, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PostStatusPublished).
		Where("published_at >= ?", since).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Order("reaction_count DESC, comment_count DESC, view_count DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return toCandidates(posts), nil
}

func toCandidates(posts []models.Post) []feed.Candidate {
	candidates := make([]feed.Candidate, 0, len(posts))
	for i := range posts {
		candidates = append(candidates, toCandidate(&posts[i]))
	}
	return candidates
}

// toCandidate flattens a post row into the engine's transient shape
func toCandidate(p *models.Post) feed.Candidate {
	c := feed.Candidate{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Summary:       p.Summary,
		AuthorID:      p.AuthorID,
		AuthorName:    p.Author.DisplayName,
		CategoryID:    p.CategoryID,
		ReadingTime:   p.ReadingTime,
		ViewCount:     p.ViewCount,
		ReactionCount: p.ReactionCount,
		CommentCount:  p.CommentCount,
	}
	if p.PublishedAt != nil {
		c.PublishedAt = *p.PublishedAt
	}
	if p.Category != nil {
		c.CategorySlug = p.Category.Slug
	}
	for _, tag := range p.Tags {
		c.TagIDs = append(c.TagIDs, tag.ID)
		c.TagSlugs = append(c.TagSlugs, tag.Slug)
	}
	return c
}

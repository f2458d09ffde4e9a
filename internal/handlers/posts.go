package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwellhq/inkwell/backend/internal/logger"
	"github.com/inkwellhq/inkwell/backend/internal/models"
	"github.com/inkwellhq/inkwell/backend/internal/repository"
	"github.com/inkwellhq/inkwell/backend/internal/search"
	"github.com/inkwellhq/inkwell/backend/internal/util"
)

// Words kept when deriving a summary excerpt from a post body
const summaryExcerptWords = 40

// CreatePost creates a draft post for the calling author
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Title    string   `json:"title" binding:"required,min=1,max=200"`
		Summary  string   `json:"summary,omitempty"`
		Body     string   `json:"body,omitempty"`
		Category string   `json:"category,omitempty"`
		Tags     []string `json:"tags,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	post := &models.Post{
		AuthorID: userID,
		Title:    req.Title,
		Slug:     h.uniqueSlug(c.Request.Context(), req.Title),
		Summary:  req.Summary,
		Body:     req.Body,
		Status:   models.PostStatusDraft,
	}

	// Posts submitted without a summary get an excerpt from the body
	if post.Summary == "" && post.Body != "" {
		post.Summary = util.TruncateWords(post.Body, summaryExcerptWords)
	}

	if req.Category != "" {
		category, err := h.posts.GetCategoryBySlug(c.Request.Context(), req.Category)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				util.RespondValidationError(c, "category", "Category not found")
				return
			}
			util.RespondInternalError(c, "Failed to resolve category")
			return
		}
		post.CategoryID = &category.ID
	}

	if len(req.Tags) > 0 {
		tags, err := h.posts.GetOrCreateTags(c.Request.Context(), req.Tags)
		if err != nil {
			util.RespondInternalError(c, "Failed to resolve tags")
			return
		}
		post.Tags = tags
	}

	if err := h.posts.CreatePost(c.Request.Context(), post); err != nil {
		logger.Log.Error("Post creation failed",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		util.RespondInternalError(c, "Failed to create post")
		return
	}

	c.JSON(http.StatusCreated, post)
}

// uniqueSlug derives a URL slug from the title, suffixing it when an
// earlier post already claimed it
func (h *Handlers) uniqueSlug(ctx context.Context, title string) string {
	slug := util.Slugify(title)
	if slug == "" {
		slug = "post"
	}

	if _, err := h.posts.GetPostBySlug(ctx, slug); errors.Is(err, repository.ErrPostNotFound) {
		return slug
	}
	return slug + "-" + strings.Split(uuid.New().String(), "-")[0]
}

// PublishPost moves a draft to published and indexes it for search
// POST /api/v1/posts/:id/publish
func (h *Handlers) PublishPost(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	post, err := h.posts.PublishPost(c.Request.Context(), postID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPostNotFound):
			util.RespondNotFound(c, "post")
		case errors.Is(err, repository.ErrNotPostAuthor):
			util.RespondForbidden(c, "Only the author can publish this post")
		case errors.Is(err, repository.ErrAlreadyPublished):
			util.RespondBadRequest(c, "Post is not a draft")
		default:
			logger.Log.Error("Post publish failed",
				logger.WithPostID(postID),
				zap.Error(err),
			)
			util.RespondInternalError(c, "Failed to publish post")
		}
		return
	}

	h.indexPostAsync(post)

	c.JSON(http.StatusOK, post)
}

// GetPost returns one post with author, category, and tags
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			util.RespondNotFound(c, "post")
			return
		}
		util.RespondInternalError(c, "Failed to load post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// BrowsePosts lists published posts with optional filters
// GET /api/v1/posts
func (h *Handlers) BrowsePosts(c *gin.Context) {
	opts := repository.BrowseOptions{
		Category: c.Query("category"),
		Author:   c.Query("author"),
		Tags:     util.ParseSlugArray(c.Query("tag")),
		Page:     util.ParseInt(c.DefaultQuery("page", "1"), 1),
		Limit:    util.ParseInt(c.DefaultQuery("limit", "20"), 20),
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	if opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}

	posts, total, err := h.posts.BrowsePosts(c.Request.Context(), opts)
	if err != nil {
		logger.Log.Error("Post browse failed", zap.Error(err))
		util.RespondInternalError(c, "Failed to list posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"meta": gin.H{
			"total": total,
			"page":  opts.Page,
			"limit": opts.Limit,
		},
	})
}

// DeletePost soft deletes the caller's post and removes it from search
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), postID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrPostNotFound):
			util.RespondNotFound(c, "post")
		case errors.Is(err, repository.ErrNotPostAuthor):
			util.RespondForbidden(c, "Only the author can delete this post")
		default:
			logger.Log.Error("Post delete failed",
				logger.WithPostID(postID),
				zap.Error(err),
			)
			util.RespondInternalError(c, "Failed to delete post")
		}
		return
	}

	h.deindexPostAsync(postID)

	c.JSON(http.StatusOK, gin.H{
		"status":  "deleted",
		"post_id": postID,
	})
}

// GetCategories lists every category
// GET /api/v1/categories
func (h *Handlers) GetCategories(c *gin.Context) {
	categories, err := h.posts.ListCategories(c.Request.Context())
	if err != nil {
		util.RespondInternalError(c, "Failed to list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetTags lists every tag
// GET /api/v1/tags
func (h *Handlers) GetTags(c *gin.Context) {
	tags, err := h.posts.ListTags(c.Request.Context())
	if err != nil {
		util.RespondInternalError(c, "Failed to list tags")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// indexPostAsync pushes a published post into Elasticsearch off the request
// path; search lags rather than the publish failing
func (h *Handlers) indexPostAsync(post *models.Post) {
	if h.search == nil {
		return
	}

	doc := search.PostToSearchDoc(post)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := h.search.IndexPost(ctx, post.ID, doc); err != nil {
			logger.Log.Warn("Failed to index post for search",
				logger.WithPostID(post.ID),
				zap.Error(err),
			)
		}
	}()
}

// deindexPostAsync removes a deleted post from Elasticsearch, best effort
func (h *Handlers) deindexPostAsync(postID string) {
	if h.search == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := h.search.DeletePost(ctx, postID); err != nil {
			logger.Log.Warn("Failed to remove post from search index",
				logger.WithPostID(postID),
				zap.Error(err),
			)
		}
	}()
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwellhq/inkwell/backend/internal/logger"
	"github.com/inkwellhq/inkwell/backend/internal/search"
	"github.com/inkwellhq/inkwell/backend/internal/util"
)

// SearchPosts runs a full-text post search. Elasticsearch serves the query
// when it is configured and reachable; otherwise the handler degrades to a
// Postgres ILIKE scan over titles and summaries.
// GET /api/v1/search/posts
func (h *Handlers) SearchPosts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		util.RespondValidationError(c, "q", "Search query is required")
		return
	}

	category := c.Query("category")
	tags := util.ParseSlugArray(c.Query("tags"))
	page := util.ParseInt(c.DefaultQuery("page", "1"), 1)
	if page < 1 {
		page = 1
	}
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	if limit < 1 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := (page - 1) * limit

	if h.search != nil {
		result, err := h.search.SearchPosts(c.Request.Context(), search.SearchPostsParams{
			Query:    query,
			Category: category,
			Tags:     tags,
			Limit:    limit,
			Offset:   offset,
		})
		if err == nil {
			c.JSON(http.StatusOK, gin.H{
				"results": result.Posts,
				"meta": gin.H{
					"total":  result.Total,
					"page":   page,
					"limit":  limit,
					"source": "elasticsearch",
				},
			})
			return
		}
		logger.Log.Warn("Search fell back to database",
			zap.String("query", query),
			zap.Error(err),
		)
	}

	posts, err := h.posts.SearchPostsFallback(c.Request.Context(), query, limit)
	if err != nil {
		logger.Log.Error("Database search failed",
			zap.String("query", query),
			zap.Error(err),
		)
		util.RespondInternalError(c, "Search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": posts,
		"meta": gin.H{
			"total":  len(posts),
			"page":   page,
			"limit":  limit,
			"source": "database",
		},
	})
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwellhq/inkwell/backend/internal/feed"
	"github.com/inkwellhq/inkwell/backend/internal/logger"
	"github.com/inkwellhq/inkwell/backend/internal/models"
	"github.com/inkwellhq/inkwell/backend/internal/util"
)

const maxPageSize = 100

// GetFeed returns the caller's personalized ranked feed
// GET /api/v1/feed
func (h *Handlers) GetFeed(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	query := feed.Query{
		UserID:      userID,
		Page:        util.ParseInt(c.DefaultQuery("page", "1"), 1),
		Limit:       util.ParseInt(c.DefaultQuery("limit", "20"), feed.DefaultPageSize),
		ExcludeRead: util.ParseBool(c.DefaultQuery("exclude_read", "false"), false),
		Category:    c.Query("category"),
		Author:      c.Query("author"),
		Tag:         c.Query("tag"),
	}
	if query.Limit > maxPageSize {
		query.Limit = maxPageSize
	}

	page, err := h.feed.GetFeedPosts(c.Request.Context(), query)
	if err != nil {
		logger.Log.Error("Feed generation failed",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		util.RespondInternalError(c, "Failed to generate feed")
		return
	}

	postIDs := make([]string, 0, len(page.Posts))
	for _, post := range page.Posts {
		postIDs = append(postIDs, post.ID)
	}
	h.recordImpressions(userID, models.SourceFeed, postIDs)

	c.JSON(http.StatusOK, page)
}

// GetTrendingFeed returns recent posts ranked purely by engagement counters.
// Anonymous callers are allowed; impressions are only recorded for known
// users.
// GET /api/v1/feed/trending
func (h *Handlers) GetTrendingFeed(c *gin.Context) {
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	if limit < 1 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	posts, err := h.feed.GetTrendingPosts(c.Request.Context(), limit)
	if err != nil {
		logger.Log.Error("Trending feed failed", zap.Error(err))
		util.RespondInternalError(c, "Failed to load trending posts")
		return
	}

	if userID := util.OptionalUserID(c); userID != "" {
		postIDs := make([]string, 0, len(posts))
		for _, post := range posts {
			postIDs = append(postIDs, post.ID)
		}
		h.recordImpressions(userID, models.SourceTrending, postIDs)
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"total": len(posts),
	})
}

// recordImpressions persists served-post analytics off the request path;
// a failure never affects the response
func (h *Handlers) recordImpressions(userID, source string, postIDs []string) {
	if h.analytics == nil || len(postIDs) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.analytics.RecordImpressions(ctx, userID, source, postIDs); err != nil {
			logger.Log.Warn("Failed to record impressions",
				logger.WithUserID(userID),
				logger.WithSource(source),
				zap.Error(err),
			)
		}
	}()
}

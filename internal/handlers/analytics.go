package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwellhq/inkwell/backend/internal/logger"
	"github.com/inkwellhq/inkwell/backend/internal/models"
	"github.com/inkwellhq/inkwell/backend/internal/util"
)

// TrackPostClick records that the caller opened a post from a surfaced
// placement. The click row is what CTR aggregation joins against
// impressions.
// POST /api/v1/posts/:id/click
func (h *Handlers) TrackPostClick(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	req := struct {
		Source string `json:"source,omitempty"`
	}{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondBadRequest(c, err.Error())
			return
		}
	}
	if req.Source == "" {
		req.Source = models.SourceFeed
	}

	if h.analytics == nil {
		util.RespondInternalError(c, "Analytics is not configured")
		return
	}

	if err := h.analytics.RecordClick(c.Request.Context(), userID, postID, req.Source); err != nil {
		logger.Log.Error("Failed to record click",
			logger.WithUserID(userID),
			logger.WithPostID(postID),
			zap.Error(err),
		)
		util.RespondInternalError(c, "Failed to record click")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "click_recorded",
		"post_id": postID,
	})
}

// GetCTR returns per-post impression/click counts and click-through rates
// over a trailing window, busiest posts first
// GET /api/v1/analytics/ctr
func (h *Handlers) GetCTR(c *gin.Context) {
	days := util.ParseInt(c.DefaultQuery("days", "7"), 7)
	if days < 1 {
		days = 1
	}
	if days > 90 {
		days = 90
	}
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	if limit < 1 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if h.analytics == nil {
		util.RespondInternalError(c, "Analytics is not configured")
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	ctrMetrics, err := h.analytics.CalculateCTR(c.Request.Context(), since, limit)
	if err != nil {
		logger.Log.Error("Failed to aggregate CTR", zap.Error(err))
		util.RespondInternalError(c, "Failed to aggregate click-through rates")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics": ctrMetrics,
		"meta": gin.H{
			"window_days": days,
			"since":       since,
		},
	})
}

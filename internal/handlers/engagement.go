package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell/backend/internal/database"
	"github.com/inkwellhq/inkwell/backend/internal/logger"
	"github.com/inkwellhq/inkwell/backend/internal/models"
	"github.com/inkwellhq/inkwell/backend/internal/repository"
	"github.com/inkwellhq/inkwell/backend/internal/util"
)

// RecordView increments a post's view counter
// POST /api/v1/posts/:id/view
func (h *Handlers) RecordView(c *gin.Context) {
	postID := c.Param("id")

	if err := h.posts.IncrementViewCount(c.Request.Context(), postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			util.RespondNotFound(c, "post")
			return
		}
		util.RespondInternalError(c, "Failed to record view")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "view_recorded",
		"post_id": postID,
	})
}

// MarkRead records that the caller finished a post. Marking twice is a
// no-op, not an error.
// POST /api/v1/posts/:id/read
func (h *Handlers) MarkRead(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	// Verify the post exists
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	read := models.PostRead{UserID: userID, PostID: postID}
	err := database.DB.
		Where("user_id = ? AND post_id = ?", userID, postID).
		FirstOrCreate(&read).Error
	if err != nil {
		logger.Log.Error("Failed to mark post read",
			logger.WithUserID(userID),
			logger.WithPostID(postID),
			zap.Error(err),
		)
		util.RespondInternalError(c, "Failed to mark post read")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "marked_read",
		"post_id": postID,
	})
}

// React adds the caller's reaction to a post. One reaction per user per
// post; repeats keep the original and leave the counter alone.
// POST /api/v1/posts/:id/reactions
func (h *Handlers) React(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	req := struct {
		Kind string `json:"kind,omitempty"`
	}{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondBadRequest(c, err.Error())
			return
		}
	}
	if req.Kind == "" {
		req.Kind = "like"
	}

	// Verify the post exists
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	reaction := models.Reaction{UserID: userID, PostID: postID, Kind: req.Kind}
	result := database.DB.
		Where("user_id = ? AND post_id = ?", userID, postID).
		FirstOrCreate(&reaction)
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to save reaction")
		return
	}

	// Only a fresh reaction moves the counter
	if result.RowsAffected > 0 {
		if err := database.DB.Model(&post).
			UpdateColumn("reaction_count", gorm.Expr("reaction_count + 1")).Error; err != nil {
			logger.Log.Warn("Failed to bump reaction count",
				logger.WithPostID(postID),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "reacted",
		"post_id": postID,
		"kind":    reaction.Kind,
	})
}

// Unreact removes the caller's reaction, if any
// DELETE /api/v1/posts/:id/reactions
func (h *Handlers) Unreact(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Reaction{})
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to remove reaction")
		return
	}

	if result.RowsAffected > 0 {
		if err := database.DB.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("reaction_count", gorm.Expr("reaction_count - 1")).Error; err != nil {
			logger.Log.Warn("Failed to drop reaction count",
				logger.WithPostID(postID),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "unreacted",
		"post_id": postID,
	})
}

// CreateComment creates a new comment on a post
// POST /api/v1/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	// Verify the post exists
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	comment := models.Comment{
		PostID: postID,
		UserID: userID,
		Body:   req.Body,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		util.RespondInternalError(c, "Failed to create comment")
		return
	}

	if err := database.DB.Model(&post).
		UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
		logger.Log.Warn("Failed to bump comment count",
			logger.WithPostID(postID),
			zap.Error(err),
		)
	}

	if err := database.DB.Preload("User").First(&comment, "id = ?", comment.ID).Error; err != nil {
		logger.Log.Warn("Failed to reload comment with user",
			zap.String("comment_id", comment.ID),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusCreated, comment)
}

// GetComments retrieves comments for a post, newest first
// GET /api/v1/posts/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	postID := c.Param("id")
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	if limit < 1 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if offset < 0 {
		offset = 0
	}

	// Verify the post exists
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	var comments []models.Comment
	err := database.DB.
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to get comments")
		return
	}

	var total int64
	if err := database.DB.Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&total).Error; err != nil {
		logger.Log.Warn("Failed to count comments",
			logger.WithPostID(postID),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"meta": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

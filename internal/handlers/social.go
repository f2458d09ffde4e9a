package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwellhq/inkwell/backend/internal/database"
	"github.com/inkwellhq/inkwell/backend/internal/logger"
	"github.com/inkwellhq/inkwell/backend/internal/models"
	"github.com/inkwellhq/inkwell/backend/internal/util"
)

// FollowAuthor subscribes the caller to an author's posts. Following twice
// is a no-op.
// POST /api/v1/follows/authors/:id
func (h *Handlers) FollowAuthor(c *gin.Context) {
	authorID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var author models.User
	if err := database.DB.First(&author, "id = ?", authorID).Error; err != nil {
		util.RespondNotFound(c, "author")
		return
	}

	follow := models.AuthorFollow{UserID: userID, AuthorID: authorID}
	err := database.DB.
		Where("user_id = ? AND author_id = ?", userID, authorID).
		FirstOrCreate(&follow).Error
	if err != nil {
		logger.Log.Error("Failed to follow author",
			logger.WithUserID(userID),
			zap.String("author_id", authorID),
			zap.Error(err),
		)
		util.RespondInternalError(c, "Failed to follow author")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "following",
		"author_id": authorID,
	})
}

// UnfollowAuthor removes the caller's author follow, if any
// DELETE /api/v1/follows/authors/:id
func (h *Handlers) UnfollowAuthor(c *gin.Context) {
	authorID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := database.DB.
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.AuthorFollow{}).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to unfollow author")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "unfollowed",
		"author_id": authorID,
	})
}

// FollowCategory subscribes the caller to an editorial section
// POST /api/v1/follows/categories/:id
func (h *Handlers) FollowCategory(c *gin.Context) {
	categoryID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var category models.Category
	if err := database.DB.First(&category, "id = ?", categoryID).Error; err != nil {
		util.RespondNotFound(c, "category")
		return
	}

	follow := models.CategoryFollow{UserID: userID, CategoryID: categoryID}
	err := database.DB.
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		FirstOrCreate(&follow).Error
	if err != nil {
		logger.Log.Error("Failed to follow category",
			logger.WithUserID(userID),
			zap.String("category_id", categoryID),
			zap.Error(err),
		)
		util.RespondInternalError(c, "Failed to follow category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "following",
		"category_id": categoryID,
	})
}

// UnfollowCategory removes the caller's category follow, if any
// DELETE /api/v1/follows/categories/:id
func (h *Handlers) UnfollowCategory(c *gin.Context) {
	categoryID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := database.DB.
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Delete(&models.CategoryFollow{}).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to unfollow category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "unfollowed",
		"category_id": categoryID,
	})
}

// FollowTag subscribes the caller to a topic
// POST /api/v1/follows/tags/:id
func (h *Handlers) FollowTag(c *gin.Context) {
	tagID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var tag models.Tag
	if err := database.DB.First(&tag, "id = ?", tagID).Error; err != nil {
		util.RespondNotFound(c, "tag")
		return
	}

	follow := models.TagFollow{UserID: userID, TagID: tagID}
	err := database.DB.
		Where("user_id = ? AND tag_id = ?", userID, tagID).
		FirstOrCreate(&follow).Error
	if err != nil {
		logger.Log.Error("Failed to follow tag",
			logger.WithUserID(userID),
			zap.String("tag_id", tagID),
			zap.Error(err),
		)
		util.RespondInternalError(c, "Failed to follow tag")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "following",
		"tag_id": tagID,
	})
}

// UnfollowTag removes the caller's tag follow, if any
// DELETE /api/v1/follows/tags/:id
func (h *Handlers) UnfollowTag(c *gin.Context) {
	tagID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := database.DB.
		Where("user_id = ? AND tag_id = ?", userID, tagID).
		Delete(&models.TagFollow{}).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to unfollow tag")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "unfollowed",
		"tag_id": tagID,
	})
}

// GetFollows returns the caller's three follow sets with their targets
// preloaded
// GET /api/v1/follows
func (h *Handlers) GetFollows(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var authors []models.AuthorFollow
	if err := database.DB.Preload("Author").
		Where("user_id = ?", userID).
		Find(&authors).Error; err != nil {
		util.RespondInternalError(c, "Failed to get follows")
		return
	}

	var categories []models.CategoryFollow
	if err := database.DB.Preload("Category").
		Where("user_id = ?", userID).
		Find(&categories).Error; err != nil {
		util.RespondInternalError(c, "Failed to get follows")
		return
	}

	var tags []models.TagFollow
	if err := database.DB.Preload("Tag").
		Where("user_id = ?", userID).
		Find(&tags).Error; err != nil {
		util.RespondInternalError(c, "Failed to get follows")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authors":    authors,
		"categories": categories,
		"tags":       tags,
	})
}

package search

import (
	"github.com/inkwellhq/inkwell/backend/internal/models"
)

// PostToSearchDoc converts a Post model (with Author, Category, and Tags
// loaded) to a search document. Draft posts should never be passed here;
// only published posts are indexed.
func PostToSearchDoc(post *models.Post) map[string]interface{} {
	doc := map[string]interface{}{
		"id":             post.ID,
		"author_id":      post.AuthorID,
		"author_name":    post.Author.DisplayName,
		"title":          post.Title,
		"summary":        post.Summary,
		"body":           post.Body,
		"view_count":     post.ViewCount,
		"reaction_count": post.ReactionCount,
		"comment_count":  post.CommentCount,
		"published_at":   post.PublishedAt,
	}

	if post.Category != nil {
		doc["category"] = post.Category.Slug
	}
	if post.ReadingTime != nil {
		doc["reading_time"] = *post.ReadingTime
	}
	if len(post.Tags) > 0 {
		tags := make([]string, 0, len(post.Tags))
		for _, tag := range post.Tags {
			tags = append(tags, tag.Slug)
		}
		doc["tags"] = tags
	}

	return doc
}

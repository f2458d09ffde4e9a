package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/inkwellhq/inkwell/backend/internal/database"
	"github.com/inkwellhq/inkwell/backend/internal/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Initialize database connection
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	fmt.Println("Verifying seed data...")
	fmt.Println()

	// Count records
	var userCount, categoryCount, tagCount, postCount, publishedCount int64
	var commentCount, reactionCount, readCount int64
	var authorFollowCount, categoryFollowCount, tagFollowCount int64

	database.DB.Model(&models.User{}).Count(&userCount)
	database.DB.Model(&models.Category{}).Count(&categoryCount)
	database.DB.Model(&models.Tag{}).Count(&tagCount)
	database.DB.Model(&models.Post{}).Count(&postCount)
	database.DB.Model(&models.Post{}).Where("status = ?", models.PostStatusPublished).Count(&publishedCount)
	database.DB.Model(&models.Comment{}).Count(&commentCount)
	database.DB.Model(&models.Reaction{}).Count(&reactionCount)
	database.DB.Model(&models.PostRead{}).Count(&readCount)
	database.DB.Model(&models.AuthorFollow{}).Count(&authorFollowCount)
	database.DB.Model(&models.CategoryFollow{}).Count(&categoryFollowCount)
	database.DB.Model(&models.TagFollow{}).Count(&tagFollowCount)

	fmt.Println("Record Counts:")
	fmt.Printf("  Users:            %d\n", userCount)
	fmt.Printf("  Categories:       %d\n", categoryCount)
	fmt.Printf("  Tags:             %d\n", tagCount)
	fmt.Printf("  Posts:            %d (%d published)\n", postCount, publishedCount)
	fmt.Printf("  Comments:         %d\n", commentCount)
	fmt.Printf("  Reactions:        %d\n", reactionCount)
	fmt.Printf("  Post Reads:       %d\n", readCount)
	fmt.Printf("  Author Follows:   %d\n", authorFollowCount)
	fmt.Printf("  Category Follows: %d\n", categoryFollowCount)
	fmt.Printf("  Tag Follows:      %d\n", tagFollowCount)
	fmt.Println()

	// Engagement counters on posts must match the rows behind them,
	// otherwise feed scoring works off stale numbers.
	fmt.Println("Counter Consistency:")
	var reactionDrift, commentDrift int64
	database.DB.Raw(`
		SELECT COUNT(*) FROM posts p
		WHERE p.deleted_at IS NULL
		  AND p.reaction_count <> (SELECT COUNT(*) FROM reactions r WHERE r.post_id = p.id)
	`).Scan(&reactionDrift)
	database.DB.Raw(`
		SELECT COUNT(*) FROM posts p
		WHERE p.deleted_at IS NULL
		  AND p.comment_count <> (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id AND c.deleted_at IS NULL)
	`).Scan(&commentDrift)
	if reactionDrift == 0 {
		fmt.Println("  reaction_count matches reactions rows")
	} else {
		fmt.Printf("  WARNING: %d posts have drifted reaction_count\n", reactionDrift)
	}
	if commentDrift == 0 {
		fmt.Println("  comment_count matches comments rows")
	} else {
		fmt.Printf("  WARNING: %d posts have drifted comment_count\n", commentDrift)
	}
	fmt.Println()

	// Sample data
	fmt.Println("Sample Data:")
	fmt.Println()

	var users []models.User
	database.DB.Limit(3).Find(&users)
	fmt.Println("  Sample Users:")
	for _, u := range users {
		var authored int64
		database.DB.Model(&models.Post{}).Where("author_id = ?", u.ID).Count(&authored)
		fmt.Printf("    - %s (@%s) - %s, %d posts\n", u.DisplayName, u.Username, u.Role, authored)
	}
	fmt.Println()

	var posts []models.Post
	database.DB.Where("status = ?", models.PostStatusPublished).Limit(3).Find(&posts)
	fmt.Println("  Sample Posts:")
	for _, p := range posts {
		minutes := 0
		if p.ReadingTime != nil {
			minutes = *p.ReadingTime
		}
		fmt.Printf("    - %q - %d min read, %d views, %d reactions, %d comments\n",
			p.Title, minutes, p.ViewCount, p.ReactionCount, p.CommentCount)
	}
	fmt.Println()

	var comments []models.Comment
	database.DB.Limit(3).Find(&comments)
	fmt.Println("  Sample Comments:")
	for _, c := range comments {
		body := c.Body
		if len(body) > 50 {
			body = body[:50] + "..."
		}
		fmt.Printf("    - %s\n", body)
	}
	fmt.Println()

	type tagUsage struct {
		Slug  string
		Posts int64
	}
	var topTags []tagUsage
	database.DB.Raw(`
		SELECT t.slug AS slug, COUNT(pt.id) AS posts
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.slug
		ORDER BY posts DESC
		LIMIT 5
	`).Scan(&topTags)
	fmt.Println("  Top Tags:")
	for _, t := range topTags {
		fmt.Printf("    - %s (%d posts)\n", t.Slug, t.Posts)
	}
	fmt.Println()

	// Verify relationships
	fmt.Println("Relationship Verification:")
	var postWithAuthor models.Post
	database.DB.Preload("Author").First(&postWithAuthor)
	if postWithAuthor.Author.ID != "" {
		fmt.Println("  Posts have author relationships")
	}

	var commentWithPost models.Comment
	database.DB.Preload("Post").First(&commentWithPost)
	if commentWithPost.Post.ID != "" {
		fmt.Println("  Comments have post relationships")
	}

	var postWithTags models.Post
	database.DB.Preload("Tags").
		Where("id IN (SELECT post_id FROM post_tags)").
		First(&postWithTags)
	if len(postWithTags.Tags) > 0 {
		fmt.Println("  Posts have tag relationships")
	}
	fmt.Println()

	// Export sample IDs as JSON for API testing
	if len(os.Args) > 1 && os.Args[1] == "--json" && len(users) > 0 && len(posts) > 0 {
		sampleData := map[string]interface{}{
			"user_id":  users[0].ID,
			"username": users[0].Username,
			"post_id":  posts[0].ID,
		}
		jsonData, _ := json.MarshalIndent(sampleData, "", "  ")
		fmt.Println("Sample IDs for API testing:")
		fmt.Println(string(jsonData))
	}

	fmt.Println("Seed data verification complete")
}

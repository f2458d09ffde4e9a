package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show your personalized ranked feed",
	Long: `Fetch the ranked feed for a user: followed authors and topics first,
engagement and freshness breaking ties.

Examples:
  inkwell feed --user 4f9d2c
  inkwell feed --user 4f9d2c --category essays --limit 10
  inkwell feed --user 4f9d2c --exclude-read`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cliUser == "" {
			return fmt.Errorf("a user is required: pass --user or set INKWELL_USER")
		}

		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		category, _ := cmd.Flags().GetString("category")
		tag, _ := cmd.Flags().GetString("tag")
		author, _ := cmd.Flags().GetString("author")
		excludeRead, _ := cmd.Flags().GetBool("exclude-read")

		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(limit))
		if category != "" {
			params.Set("category", category)
		}
		if tag != "" {
			params.Set("tag", tag)
		}
		if author != "" {
			params.Set("author", author)
		}
		if excludeRead {
			params.Set("exclude_read", "true")
		}

		body, err := apiGet("/api/v1/feed", params)
		if err != nil {
			return err
		}

		var result map[string]interface{}
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		if output == "json" {
			fmt.Println(string(body))
			return nil
		}

		fmt.Printf("\nYour Feed\n")
		fmt.Printf("%s\n", strings.Repeat("-", 60))
		printPostList(result, true)

		if total, ok := result["total"].(float64); ok {
			page, _ := result["page"].(float64)
			totalPages, _ := result["total_pages"].(float64)
			fmt.Printf("page %d of %d (%d posts)\n\n", int(page), int(totalPages), int(total))
		}

		return nil
	},
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show posts trending over the last week",
	Long: `List recent posts ranked purely by engagement. No user required.

Examples:
  inkwell trending
  inkwell trending --limit 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		params := url.Values{}
		params.Set("limit", strconv.Itoa(limit))

		body, err := apiGet("/api/v1/feed/trending", params)
		if err != nil {
			return err
		}

		var result map[string]interface{}
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		if output == "json" {
			fmt.Println(string(body))
			return nil
		}

		fmt.Printf("\nTrending This Week\n")
		fmt.Printf("%s\n", strings.Repeat("-", 60))
		printPostList(result, false)

		return nil
	},
}

func init() {
	feedCmd.Flags().IntP("page", "p", 1, "Page number")
	feedCmd.Flags().IntP("limit", "l", 20, "Posts per page")
	feedCmd.Flags().String("category", "", "Only posts from this category slug")
	feedCmd.Flags().String("tag", "", "Only posts carrying this tag slug")
	feedCmd.Flags().String("author", "", "Only posts by this author ID")
	feedCmd.Flags().Bool("exclude-read", false, "Hide posts you have already read")

	trendingCmd.Flags().IntP("limit", "l", 20, "Maximum number of results")
}

// printPostList renders a feed or trending payload as a numbered list
func printPostList(result map[string]interface{}, showScore bool) {
	posts, ok := result["posts"].([]interface{})
	if !ok || len(posts) == 0 {
		fmt.Printf("No posts found\n\n")
		return
	}

	for i, p := range posts {
		post, ok := p.(map[string]interface{})
		if !ok {
			continue
		}

		fmt.Printf("\n%d. ", i+1)
		if title, ok := post["title"].(string); ok {
			fmt.Printf("%s", title)
		}
		if author, ok := post["author_name"].(string); ok && author != "" {
			fmt.Printf(" by %s", author)
		}
		fmt.Printf("\n")

		var meta []string
		if category, ok := post["category_slug"].(string); ok && category != "" {
			meta = append(meta, category)
		}
		if tags, ok := post["tags"].([]interface{}); ok && len(tags) > 0 {
			tagSlugs := make([]string, 0, len(tags))
			for _, t := range tags {
				if slug, ok := t.(string); ok {
					tagSlugs = append(tagSlugs, slug)
				}
			}
			meta = append(meta, strings.Join(tagSlugs, ", "))
		}
		if minutes, ok := post["reading_time"].(float64); ok && minutes > 0 {
			meta = append(meta, fmt.Sprintf("%d min read", int(minutes)))
		}
		if len(meta) > 0 {
			fmt.Printf("   %s\n", strings.Join(meta, " | "))
		}

		var stats []string
		if reactions, ok := post["reaction_count"].(float64); ok && reactions > 0 {
			stats = append(stats, fmt.Sprintf("%d reactions", int(reactions)))
		}
		if comments, ok := post["comment_count"].(float64); ok && comments > 0 {
			stats = append(stats, fmt.Sprintf("%d comments", int(comments)))
		}
		if views, ok := post["view_count"].(float64); ok && views > 0 {
			stats = append(stats, fmt.Sprintf("%d views", int(views)))
		}
		if showScore {
			if score, ok := post["relevance_score"].(float64); ok {
				stats = append(stats, fmt.Sprintf("score %.1f", score))
			}
		}
		if len(stats) > 0 {
			fmt.Printf("   %s\n", strings.Join(stats, " | "))
		}
	}

	fmt.Printf("\n")
}

package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search published posts",
	Long: `Full-text search over published posts, served by Elasticsearch when
available and the database otherwise.

Examples:
  inkwell search "winter light"
  inkwell search rivers --category essays --tags travel,nature --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		page, _ := cmd.Flags().GetInt("page")
		category, _ := cmd.Flags().GetString("category")
		tags, _ := cmd.Flags().GetStringSlice("tags")
		return searchPosts(args[0], limit, page, category, tags)
	},
}

func init() {
	searchCmd.Flags().IntP("limit", "l", 20, "Maximum number of results")
	searchCmd.Flags().IntP("page", "p", 1, "Result page")
	searchCmd.Flags().String("category", "", "Only posts from this category slug")
	searchCmd.Flags().StringSlice("tags", []string{}, "Tag slug filters (comma-separated or repeated)")
}

func searchPosts(query string, limit, page int, category string, tags []string) error {
	if query == "" {
		return fmt.Errorf("search query cannot be empty")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	if category != "" {
		params.Set("category", category)
	}
	if len(tags) > 0 {
		params.Set("tags", strings.Join(tags, ","))
	}

	body, err := apiGet("/api/v1/search/posts", params)
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

	printSearchResults(result)
	return nil
}

func printSearchResults(result map[string]interface{}) {
	fmt.Printf("\nSearch Results\n")
	fmt.Printf("%s\n", strings.Repeat("-", 60))

	results, ok := result["results"].([]interface{})
	if !ok || len(results) == 0 {
		fmt.Printf("No posts found\n\n")
		return
	}

	for i, r := range results {
		post, ok := r.(map[string]interface{})
		if !ok {
			continue
		}

		fmt.Printf("\n%d. ", i+1)
		if title, ok := post["title"].(string); ok {
			fmt.Printf("%s", title)
		}
		if author, ok := post["author_name"].(string); ok && author != "" {
			fmt.Printf(" by %s", author)
		} else if author, ok := post["author"].(map[string]interface{}); ok {
			if name, ok := author["display_name"].(string); ok {
				fmt.Printf(" by %s", name)
			}
		}
		fmt.Printf("\n")

		if summary, ok := post["summary"].(string); ok && summary != "" {
			fmt.Printf("   %s\n", summary)
		}

		var meta []string
		if category, ok := post["category"].(string); ok && category != "" {
			meta = append(meta, category)
		}
		if minutes, ok := post["reading_time"].(float64); ok && minutes > 0 {
			meta = append(meta, fmt.Sprintf("%d min read", int(minutes)))
		}
		if len(meta) > 0 {
			fmt.Printf("   %s\n", strings.Join(meta, " | "))
		}
	}

	if meta, ok := result["meta"].(map[string]interface{}); ok {
		if total, ok := meta["total"].(float64); ok {
			source, _ := meta["source"].(string)
			fmt.Printf("\n%d results (via %s)\n", int(total), source)
		}
	}

	fmt.Printf("\n")
}

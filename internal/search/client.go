package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/elastic/go-elasticsearch/v9"
)

// IndexPosts is the single search index; posts are the only searchable
// surface
const IndexPosts = "posts"

// Client wraps the Elasticsearch client with Inkwell-specific functionality
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates a new Elasticsearch client
func NewClient() (*Client, error) {
	// Get Elasticsearch URL from environment, default to localhost
	esURL := os.Getenv("ELASTICSEARCH_URL")
	if esURL == "" {
		esURL = "http://localhost:9200"
	}

	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &Client{es: es}

	// Verify connection
	_, err = es.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}

	return client, nil
}

// InitializeIndices creates the search indices with proper mappings
func (c *Client) InitializeIndices(ctx context.Context) error {
	if err := c.createPostsIndex(ctx); err != nil {
		return fmt.Errorf("failed to create posts index: %w", err)
	}
	return nil
}

// createPostsIndex creates the posts search index with mapping
func (c *Client) createPostsIndex(ctx context.Context) error {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type": "keyword",
				},
				"author_id": map[string]interface{}{
					"type": "keyword",
				},
				"author_name": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{
							"type": "keyword",
						},
					},
				},
				"category": map[string]interface{}{
					"type": "keyword",
				},
				"tags": map[string]interface{}{
					"type": "keyword",
				},
				"title": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"summary": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"body": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"reading_time": map[string]interface{}{
					"type": "integer",
				},
				"view_count": map[string]interface{}{
					"type": "integer",
				},
				"reaction_count": map[string]interface{}{
					"type": "integer",
				},
				"comment_count": map[string]interface{}{
					"type": "integer",
				},
				"published_at": map[string]interface{}{
					"type": "date",
				},
			},
		},
	}

	return c.createIndex(ctx, IndexPosts, mapping)
}

// createIndex creates an Elasticsearch index with the given mapping
func (c *Client) createIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	// Check if index exists
	res, err := c.es.Indices.Exists([]string{indexName})
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	res.Body.Close()

	// If index exists (status 200), skip creation
	if res.StatusCode == 200 {
		return nil
	}

	// Create index with mapping
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = c.es.Indices.Create(indexName,
		c.es.Indices.Create.WithBody(bytes.NewReader(mappingJSON)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("error response [%s]", res.Status())
		}
		return fmt.Errorf("error creating index: [%s] %v", res.Status(), errResp["error"])
	}

	return nil
}

// IndexPost indexes a post document for search
func (c *Client) IndexPost(ctx context.Context, postID string, doc map[string]interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal post document: %w", err)
	}

	res, err := c.es.Index(IndexPosts, bytes.NewReader(body),
		c.es.Index.WithDocumentID(postID),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index post: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("error response [%s]", res.Status())
		}
		return fmt.Errorf("error indexing post: [%s] %v", res.Status(), errResp["error"])
	}

	return nil
}

// DeletePost deletes a post document from the search index
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	res, err := c.es.Delete(IndexPosts, postID,
		c.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	defer res.Body.Close()

	// 404 is OK - document doesn't exist
	if res.IsError() && res.StatusCode != 404 {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("error response [%s]", res.Status())
		}
		return fmt.Errorf("error deleting post: [%s] %v", res.Status(), errResp["error"])
	}

	return nil
}

// SearchPostsResult represents a post search result
type SearchPostsResult struct {
	Posts []PostSearchHit `json:"posts"`
	Total int             `json:"total"`
}

// PostSearchHit represents a single post search hit
type PostSearchHit struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	AuthorID      string   `json:"author_id"`
	AuthorName    string   `json:"author_name"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	ReadingTime   int      `json:"reading_time,omitempty"`
	ViewCount     int      `json:"view_count"`
	ReactionCount int      `json:"reaction_count"`
	CommentCount  int      `json:"comment_count"`
	PublishedAt   string   `json:"published_at"`
	Score         float64  `json:"score"`
}

// SearchPostsParams contains parameters for post search
type SearchPostsParams struct {
	Query    string
	Category string
	Tags     []string
	Limit    int
	Offset   int
}

// SearchPosts searches published posts with filters. Text relevance is
// multiplied by an engagement-and-recency function score so a well-read
// recent post outranks an equally matching stale one.
func (c *Client) SearchPosts(ctx context.Context, params SearchPostsParams) (*SearchPostsResult, error) {
	mustClauses := []map[string]interface{}{}
	shouldClauses := []map[string]interface{}{}

	// Text search on title, summary, body, author name
	if params.Query != "" {
		shouldClauses = append(shouldClauses,
			map[string]interface{}{
				"match": map[string]interface{}{
					"title": map[string]interface{}{
						"query":     params.Query,
						"boost":     3.0,
						"fuzziness": "AUTO",
					},
				},
			},
			map[string]interface{}{
				"match": map[string]interface{}{
					"summary": map[string]interface{}{
						"query":     params.Query,
						"boost":     2.0,
						"fuzziness": "AUTO",
					},
				},
			},
			map[string]interface{}{
				"match": map[string]interface{}{
					"author_name": map[string]interface{}{
						"query":     params.Query,
						"boost":     1.5,
						"fuzziness": "AUTO",
					},
				},
			},
			map[string]interface{}{
				"match": map[string]interface{}{
					"body": map[string]interface{}{
						"query": params.Query,
						"boost": 1.0,
					},
				},
			},
		)
	}

	// Category filter
	if params.Category != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"term": map[string]interface{}{
				"category": params.Category,
			},
		})
	}

	// Tag filter
	if len(params.Tags) > 0 {
		mustClauses = append(mustClauses, map[string]interface{}{
			"terms": map[string]interface{}{
				"tags": params.Tags,
			},
		})
	}

	// Build base query
	var baseQuery map[string]interface{}

	if len(shouldClauses) > 0 || len(mustClauses) > 0 {
		boolQuery := map[string]interface{}{}
		if len(mustClauses) > 0 {
			boolQuery["must"] = mustClauses
		}
		if len(shouldClauses) > 0 {
			boolQuery["should"] = shouldClauses
			boolQuery["minimum_should_match"] = 1
		}
		baseQuery = map[string]interface{}{
			"bool": boolQuery,
		}
	} else {
		// No query text and no filters - match all
		baseQuery = map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}

	// Combine text relevance with engagement counters and publish recency
	scoredQuery := map[string]interface{}{
		"function_score": map[string]interface{}{
			"query": baseQuery,
			"functions": []map[string]interface{}{
				{
					"field_value_factor": map[string]interface{}{
						"field":    "reaction_count",
						"factor":   3.0,
						"modifier": "log1p",
					},
				},
				{
					"field_value_factor": map[string]interface{}{
						"field":    "comment_count",
						"factor":   2.0,
						"modifier": "log1p",
					},
				},
				{
					"field_value_factor": map[string]interface{}{
						"field":    "view_count",
						"factor":   1.0,
						"modifier": "log1p",
					},
				},
				{
					"exp": map[string]interface{}{
						"published_at": map[string]interface{}{
							"origin": "now",
							"scale":  "30d",
							"decay":  0.5,
						},
					},
					"weight": 0.5,
				},
			},
			"score_mode": "sum",
			"boost_mode": "multiply",
		},
	}

	// Build final query with pagination and sorting
	query := map[string]interface{}{
		"query": scoredQuery,
		"from":  params.Offset,
		"size":  params.Limit,
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"published_at": map[string]interface{}{"order": "desc"}},
		},
	}

	return c.executePostSearch(ctx, query)
}

// executePostSearch executes a post search query
func (c *Client) executePostSearch(ctx context.Context, query map[string]interface{}) (*SearchPostsResult, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(IndexPosts),
		c.es.Search.WithBody(bytes.NewReader(queryJSON)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return nil, fmt.Errorf("error response [%s]", res.Status())
		}
		return nil, fmt.Errorf("error searching posts: [%s] %v", res.Status(), errResp["error"])
	}

	var searchResp struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string                 `json:"_id"`
				Score  float64                `json:"_score"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	posts := make([]PostSearchHit, 0, len(searchResp.Hits.Hits))
	for _, hit := range searchResp.Hits.Hits {
		post := PostSearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if title, ok := hit.Source["title"].(string); ok {
			post.Title = title
		}
		if summary, ok := hit.Source["summary"].(string); ok {
			post.Summary = summary
		}
		if authorID, ok := hit.Source["author_id"].(string); ok {
			post.AuthorID = authorID
		}
		if authorName, ok := hit.Source["author_name"].(string); ok {
			post.AuthorName = authorName
		}
		if category, ok := hit.Source["category"].(string); ok {
			post.Category = category
		}
		if tags, ok := hit.Source["tags"].([]interface{}); ok {
			post.Tags = make([]string, 0, len(tags))
			for _, t := range tags {
				if ts, ok := t.(string); ok {
					post.Tags = append(post.Tags, ts)
				}
			}
		}
		if readingTime, ok := hit.Source["reading_time"].(float64); ok {
			post.ReadingTime = int(readingTime)
		}
		if viewCount, ok := hit.Source["view_count"].(float64); ok {
			post.ViewCount = int(viewCount)
		}
		if reactionCount, ok := hit.Source["reaction_count"].(float64); ok {
			post.ReactionCount = int(reactionCount)
		}
		if commentCount, ok := hit.Source["comment_count"].(float64); ok {
			post.CommentCount = int(commentCount)
		}
		if publishedAt, ok := hit.Source["published_at"].(string); ok {
			post.PublishedAt = publishedAt
		}

		posts = append(posts, post)
	}

	return &SearchPostsResult{
		Posts: posts,
		Total: searchResp.Hits.Total.Value,
	}, nil
}

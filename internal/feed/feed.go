// Package feed computes personalized, diversity-filtered post rankings and
// the counter-ordered trending list. Every personalized page is recomputed
// from a fresh candidate pool; only the trending path is cached.
package feed

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/inkwellhq/inkwell/backend/internal/cache"
	"github.com/inkwellhq/inkwell/backend/internal/logger"
	"github.com/inkwellhq/inkwell/backend/internal/metrics"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the page size when the caller does not send one.
	DefaultPageSize = 20

	// Candidate pools are pageSize × candidatePoolMultiple, capped at
	// maxCandidatePool regardless of the requested page. Deep pages may
	// therefore see fewer results than the database holds.
	candidatePoolMultiple = 3
	maxCandidatePool      = 100

	trendingWindowDays = 7
	trendingCacheTTL   = 5 * time.Minute
)

// Query is one ranked-feed request.
type Query struct {
	UserID      string
	Page        int
	Limit       int
	ExcludeRead bool
	Category    string
	Author      string
	Tag         string
}

// ScoredCandidate pairs a candidate with its relevance score.
type ScoredCandidate struct {
	Candidate
	RelevanceScore float64 `json:"relevance_score"`
}

// Page is one serving of the ranked feed.
type Page struct {
	Posts      []ScoredCandidate `json:"posts"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	HasMore    bool              `json:"has_more"`
}

// Service ranks published posts for a user. All storage access goes
// through the DataSource so tests can substitute an in-memory fake.
type Service struct {
	source  DataSource
	cache   *cache.Client
	weights Weights
	now     func() time.Time
}

// NewService creates a feed service with the production scoring weights.
func NewService(source DataSource) *Service {
	return &Service{
		source:  source,
		weights: DefaultWeights(),
		now:     time.Now,
	}
}

// SetCache wires the Redis client used by the trending path.
func (s *Service) SetCache(c *cache.Client) {
	s.cache = c
}

// GetFeedPosts builds one personalized page: load preferences, fetch the
// candidate pool, filter, score, sort, diversify, paginate. Preference
// failures degrade to empty sets; a candidate-fetch failure is fatal to the
// request.
func (s *Service) GetFeedPosts(ctx context.Context, q Query) (*Page, error) {
	start := time.Now()
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}

	prefs := s.loadPreferences(ctx, q.UserID)

	poolLimit := q.Limit * candidatePoolMultiple
	if poolLimit > maxCandidatePool {
		poolLimit = maxCandidatePool
	}

	candidates, backendTotal, err := s.source.FetchCandidates(ctx, CandidateQuery{
		Category: q.Category,
		Author:   q.Author,
		Limit:    poolLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed candidates: %w", err)
	}

	m := metrics.Get()
	m.FeedCandidateCount.WithLabelValues("fetched").Observe(float64(len(candidates)))

	candidates = filterPool(candidates, prefs, q)

	if len(candidates) == 0 {
		return &Page{
			Posts:      []ScoredCandidate{},
			Total:      0,
			Page:       q.Page,
			TotalPages: 0,
			HasMore:    false,
		}, nil
	}

	now := s.now()
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, ScoredCandidate{
			Candidate:      candidate,
			RelevanceScore: Score(candidate, prefs, now, s.weights),
		})
	}

	// Stable sort keeps the fetcher's publish-desc order between ties
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	diversified := s.applyAuthorDiversity(scored, q.Page*q.Limit)
	m.FeedCandidateCount.WithLabelValues("diversified").Observe(float64(len(diversified)))

	page := paginate(diversified, backendTotal, q.Page, q.Limit)

	m.FeedGenerationDuration.WithLabelValues("personalized").Observe(time.Since(start).Seconds())
	logger.Log.Debug("Served ranked feed page",
		logger.WithUserID(q.UserID),
		zap.Int("page", q.Page),
		zap.Int("pool_size", len(candidates)),
		zap.Int("served", len(page.Posts)),
	)

	return page, nil
}

// GetTrendingPosts returns recently published posts ordered purely by
// engagement counters. No scoring runs and the results carry no relevance
// score; they are shared across users, so a short-lived Redis cache fronts
// the query.
func (s *Service) GetTrendingPosts(ctx context.Context, limit int) ([]Candidate, error) {
	start := time.Now()
	if limit < 1 {
		limit = DefaultPageSize
	}

	m := metrics.Get()
	cacheKey := fmt.Sprintf("trending:%d", limit)

	if s.cache != nil {
		var cached []Candidate
		if found, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && found {
			m.CacheHitsTotal.WithLabelValues("trending").Inc()
			return cached, nil
		}
		m.CacheMissesTotal.WithLabelValues("trending").Inc()
	}

	since := s.now().AddDate(0, 0, -trendingWindowDays)
	posts, err := s.source.FetchTrending(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending posts: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, posts, trendingCacheTTL); err != nil {
			logger.Log.Debug("Failed to cache trending posts", zap.Error(err))
		}
	}

	m.FeedGenerationDuration.WithLabelValues("trending").Observe(time.Since(start).Seconds())
	return posts, nil
}

// preferenceResult carries one preference set back from its fetch goroutine.
type preferenceResult struct {
	set string
	ids []string
	err error
}

// loadPreferences issues the four preference fetches concurrently and joins
// them. A failed fetch degrades that one set to empty with a warning; it
// never fails the request.
func (s *Service) loadPreferences(ctx context.Context, userID string) Preferences {
	resultsChan := make(chan preferenceResult, 4)

	go func() {
		ids, err := s.source.FollowedAuthorIDs(ctx, userID)
		resultsChan <- preferenceResult{set: "authors", ids: ids, err: err}
	}()
	go func() {
		ids, err := s.source.FollowedCategoryIDs(ctx, userID)
		resultsChan <- preferenceResult{set: "categories", ids: ids, err: err}
	}()
	go func() {
		ids, err := s.source.FollowedTagIDs(ctx, userID)
		resultsChan <- preferenceResult{set: "tags", ids: ids, err: err}
	}()
	go func() {
		ids, err := s.source.ReadPostIDs(ctx, userID)
		resultsChan <- preferenceResult{set: "reads", ids: ids, err: err}
	}()

	prefs := NewPreferences()
	for i := 0; i < 4; i++ {
		result := <-resultsChan
		if result.err != nil {
			logger.Log.Warn("Preference fetch failed, using empty set",
				zap.String("set", result.set),
				logger.WithUserID(userID),
				zap.Error(result.err),
			)
			metrics.Get().PreferenceFetchFailures.WithLabelValues(result.set).Inc()
			continue
		}

		var target map[string]bool
		switch result.set {
		case "authors":
			target = prefs.Authors
		case "categories":
			target = prefs.Categories
		case "tags":
			target = prefs.Tags
		case "reads":
			target = prefs.ReadPosts
		}
		for _, id := range result.ids {
			target[id] = true
		}
	}

	return prefs
}

// filterPool applies the filters the candidate query cannot express: the tag
// filter matches the fetched tag slugs, and excludeRead drops posts in the
// user's read history. Both operate inside the already-capped pool; the
// backend's announced total does not reflect them.
func filterPool(candidates []Candidate, prefs Preferences, q Query) []Candidate {
	if q.Tag == "" && !q.ExcludeRead {
		return candidates
	}

	filtered := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if q.Tag != "" && !hasTagSlug(candidate, q.Tag) {
			continue
		}
		if q.ExcludeRead && prefs.ReadPosts[candidate.ID] {
			continue
		}
		filtered = append(filtered, candidate)
	}
	return filtered
}

func hasTagSlug(c Candidate, slug string) bool {
	for _, s := range c.TagSlugs {
		if s == slug {
			return true
		}
	}
	return false
}

// paginate slices the diversified list for a 1-based page. The reported
// total is the smaller of the backend's announced count and the diversified
// length, so a capped pool reports what a reader can actually page through.
func paginate(diversified []ScoredCandidate, backendTotal int64, page, limit int) *Page {
	total := len(diversified)
	if int(backendTotal) < total {
		total = int(backendTotal)
	}

	start := (page - 1) * limit
	end := page * limit
	if start > len(diversified) {
		start = len(diversified)
	}
	if end > len(diversified) {
		end = len(diversified)
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return &Page{
		Posts:      diversified[start:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

package feed

import (
	"context"
	"time"
)

// Candidate is one published post under consideration for a ranked page.
// Counter and taxonomy fields drive scoring; the presentation fields are
// carried through untouched for the API response. A candidate is immutable
// for the duration of one ranking pass.
type Candidate struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Summary      string  `json:"summary,omitempty"`
	AuthorID     string  `json:"author_id"`
	AuthorName   string  `json:"author_name,omitempty"`
	CategoryID   *string `json:"category_id,omitempty"`
	CategorySlug string  `json:"category_slug,omitempty"`

	// TagIDs participate in scoring; TagSlugs are presentation only.
	TagIDs   []string `json:"-"`
	TagSlugs []string `json:"tags,omitempty"`

	PublishedAt   time.Time `json:"published_at"`
	ReadingTime   *int      `json:"reading_time,omitempty"`
	ViewCount     int       `json:"view_count"`
	ReactionCount int       `json:"reaction_count"`
	CommentCount  int       `json:"comment_count"`
}

// Preferences holds a user's follow graph and read history as membership
// sets. A brand-new user legitimately has four empty sets.
type Preferences struct {
	Authors    map[string]bool
	Categories map[string]bool
	Tags       map[string]bool
	ReadPosts  map[string]bool
}

// NewPreferences returns an empty preference set ready for membership adds.
func NewPreferences() Preferences {
	return Preferences{
		Authors:    make(map[string]bool),
		Categories: make(map[string]bool),
		Tags:       make(map[string]bool),
		ReadPosts:  make(map[string]bool),
	}
}

// CandidateQuery narrows the candidate fetch. Category and Author are slugs
// applied in the backend query; Limit caps the pool size.
type CandidateQuery struct {
	Category string
	Author   string
	Limit    int
}

// DataSource is everything the ranking engine needs from storage. The
// production implementation lives in internal/repository; tests substitute
// an in-memory fake.
type DataSource interface {
	// Preference sets. Absence of rows yields an empty slice, not an error.
	FollowedAuthorIDs(ctx context.Context, userID string) ([]string, error)
	FollowedCategoryIDs(ctx context.Context, userID string) ([]string, error)
	FollowedTagIDs(ctx context.Context, userID string) ([]string, error)
	ReadPostIDs(ctx context.Context, userID string) ([]string, error)

	// FetchCandidates returns the capped candidate pool (publish-desc) plus
	// the backend's uncapped total for the same status/category/author
	// filters.
	FetchCandidates(ctx context.Context, q CandidateQuery) ([]Candidate, int64, error)

	// FetchTrending returns published posts since the cutoff, ordered by
	// reactions, then comments, then views.
	FetchTrending(ctx context.Context, since time.Time, limit int) ([]Candidate, error)
}

package handlers

import (
	"github.com/inkwellhq/inkwell/backend/internal/analytics"
	"github.com/inkwellhq/inkwell/backend/internal/feed"
	"github.com/inkwellhq/inkwell/backend/internal/repository"
	"github.com/inkwellhq/inkwell/backend/internal/search"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	feed      *feed.Service
	posts     repository.PostRepository
	analytics *analytics.Tracker
	search    *search.Client
}

// NewHandlers creates a new handlers instance
func NewHandlers(feedService *feed.Service, posts repository.PostRepository, tracker *analytics.Tracker) *Handlers {
	return &Handlers{
		feed:      feedService,
		posts:     posts,
		analytics: tracker,
	}
}

// SetSearchClient sets the Elasticsearch search client. Without one, post
// search serves from the database instead.
func (h *Handlers) SetSearchClient(searchClient *search.Client) {
	h.search = searchClient
}

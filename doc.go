// Package backend provides the Inkwell API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/feed: Feed ranking, diversity filtering, and trending
// - internal/repository: Database query layer for feed candidates and posts
// - internal/search: Elasticsearch indexing and full-text search
// - internal/analytics: Impression and click tracking
// - internal/cache: Redis connection and caching helpers
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (rate limiting, metrics, etc.)
// - internal/metrics: Prometheus metric definitions
// - internal/telemetry: OpenTelemetry tracing setup
// - internal/seed: Development and test data seeding

// See the individual package documentation for detailed API reference.
package backend

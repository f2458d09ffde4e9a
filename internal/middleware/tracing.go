package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanEnrichmentMiddleware tags the active request span with caller identity
// and feed parameters, and records handler errors as span events.
//
// It must sit after otelgin (which opens the span) and IdentityMiddleware
// (which resolves the user) in the chain.
func SpanEnrichmentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if userID, exists := c.Get("user_id"); exists {
				if userIDStr, ok := userID.(string); ok {
					span.SetAttributes(attribute.String("user.id", userIDStr))
				}
			}

			if category := c.Query("category"); category != "" {
				span.SetAttributes(attribute.String("feed.category", category))
			}

			if page := c.Query("page"); page != "" {
				span.SetAttributes(attribute.String("query.page", page))
			}

			if limit := c.Query("limit"); limit != "" {
				span.SetAttributes(attribute.String("query.limit", limit))
			}
		}

		c.Next()

		// Gin handlers surface failures via c.Error; attach them to the span
		if span.IsRecording() && len(c.Errors) > 0 {
			for _, ginErr := range c.Errors {
				if ginErr.Err != nil {
					span.RecordError(ginErr.Err, trace.WithStackTrace(true))
					span.SetStatus(codes.Error, ginErr.Error())
				}
			}
		}
	}
}

// Package analytics records which posts were served and which were opened,
// and turns those rows into click-through rates.
package analytics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell/backend/internal/models"
)

const impressionBatchSize = 100

// CTRMetric represents click-through performance for one post
type CTRMetric struct {
	PostID      string  `json:"post_id"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	CTR         float64 `json:"ctr"` // clicks/impressions * 100
}

// Tracker persists impressions and clicks and aggregates them into CTR
type Tracker struct {
	db *gorm.DB
}

// NewTracker creates a tracker backed by gorm
func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db}
}

// RecordImpressions writes one row per served post, preserving page position
func (t *Tracker) RecordImpressions(ctx context.Context, userID, source string, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}

	servedAt := time.Now().UTC()
	impressions := make([]models.FeedImpression, 0, len(postIDs))
	for i, postID := range postIDs {
		impressions = append(impressions, models.FeedImpression{
			UserID:   userID,
			PostID:   postID,
			Source:   source,
			Position: i,
			ServedAt: servedAt,
		})
	}

	return t.db.WithContext(ctx).CreateInBatches(impressions, impressionBatchSize).Error
}

// RecordClick writes a single click row
func (t *Tracker) RecordClick(ctx context.Context, userID, postID, source string) error {
	click := models.PostClick{
		UserID: userID,
		PostID: postID,
		Source: source,
	}
	return t.db.WithContext(ctx).Create(&click).Error
}

type ctrRow struct {
	PostID      string
	Impressions int64
	Clicks      int64
}

// CalculateCTR aggregates per-post impressions and clicks since the cutoff,
// most-served posts first. Posts with zero impressions in the window do not
// appear even if they collected clicks.
func (t *Tracker) CalculateCTR(ctx context.Context, since time.Time, limit int) ([]CTRMetric, error) {
	var rows []ctrRow

	err := t.db.WithContext(ctx).Raw(`
		SELECT i.post_id AS post_id,
		       i.impressions AS impressions,
		       COALESCE(c.clicks, 0) AS clicks
		FROM (
			SELECT post_id, COUNT(*) AS impressions
			FROM feed_impressions
			WHERE served_at >= ?
			GROUP BY post_id
		) i
		LEFT JOIN (
			SELECT post_id, COUNT(*) AS clicks
			FROM post_clicks
			WHERE clicked_at >= ?
			GROUP BY post_id
		) c ON c.post_id = i.post_id
		ORDER BY i.impressions DESC
		LIMIT ?
	`, since, since, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate click-through rates: %w", err)
	}

	metrics := make([]CTRMetric, 0, len(rows))
	for _, row := range rows {
		ctr := 0.0
		if row.Impressions > 0 {
			ctr = (float64(row.Clicks) / float64(row.Impressions)) * 100
		}
		metrics = append(metrics, CTRMetric{
			PostID:      row.PostID,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			CTR:         ctr,
		})
	}

	return metrics, nil
}
